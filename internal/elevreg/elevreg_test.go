package elevreg_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"treenav/internal/backend/ownvalue"
	"treenav/internal/cell"
	. "treenav/internal/elevreg"
	"treenav/internal/value"

	_ "treenav/internal/backend/json"
)

func TestAutoInterpretationSniffsHTTPPrefix(t *testing.T) {
	c := ownvalue.New(value.OwnString("https://example.com/a"), cell.NoAutoWrite)
	target, ok := AutoInterpretation(c)
	require.True(t, ok)
	require.Equal(t, "http", target)
}

func TestAutoInterpretationSniffsPathPrefix(t *testing.T) {
	c := ownvalue.New(value.OwnString("./data/a.json"), cell.NoAutoWrite)
	target, ok := AutoInterpretation(c)
	require.True(t, ok)
	require.Equal(t, "fs", target)
}

func TestAutoInterpretationRejectsUnrecognizedScalar(t *testing.T) {
	c := ownvalue.New(value.OwnString("plain text"), cell.NoAutoWrite)
	_, ok := AutoInterpretation(c)
	require.False(t, ok)
}

func TestElevateExplicitTargetUsesRegisteredConstructor(t *testing.T) {
	c := ownvalue.New(value.OwnString(`{"a":1}`), cell.NoAutoWrite)
	root, err := Elevate(c, "json", Params{})
	require.NoError(t, err)
	require.Equal(t, "json", root.Interpretation())
}

func TestElevateUnknownTargetFails(t *testing.T) {
	c := ownvalue.New(value.OwnString("x"), cell.NoAutoWrite)
	_, err := Elevate(c, "no-such-target", Params{})
	require.Error(t, err)
}

func TestParamsNamedAndPositionalLookup(t *testing.T) {
	p := Params{
		Named:      map[string]value.OwnValue{"pattern": value.OwnString("a.*b")},
		Positional: []value.OwnValue{value.OwnString("first")},
	}
	v, ok := p.Named_("pattern")
	require.True(t, ok)
	s, _ := v.AsValue().AsStr()
	require.Equal(t, "a.*b", s)

	_, ok = p.Named_("missing")
	require.False(t, ok)

	v, ok = p.At(0)
	require.True(t, ok)
	s, _ = v.AsValue().AsStr()
	require.Equal(t, "first", s)

	_, ok = p.At(5)
	require.False(t, ok)
}
