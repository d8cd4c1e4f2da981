package cell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDomainHasNoOrigin(t *testing.T) {
	d := NewDomain(NoAutoWrite)
	_, ok := d.Origin()
	require.False(t, ok)
	require.False(t, d.Dirty())
}

func TestSetRootIsIdempotent(t *testing.T) {
	d := NewDomain(NoAutoWrite)
	first := &stubBackend{interp: "first"}
	second := &stubBackend{interp: "second"}
	d.SetRoot(first)
	d.SetRoot(second)
	root, ok := d.Root()
	require.True(t, ok)
	require.Equal(t, "first", root.(*stubBackend).interp)
}

func TestSaveNoopWhenNotDirty(t *testing.T) {
	d := NewDomain(NoAutoWrite)
	d.SetRoot(&stubBackend{interp: "root"})
	require.NoError(t, d.Save())
}

func TestCloseOnlySavesUnderWriteBackOnDropPolicy(t *testing.T) {
	d := NewDomain(NoAutoWrite)
	d.MarkDirty()
	require.NoError(t, d.Close())
	require.True(t, d.Dirty(), "NoAutoWrite must not write back on Close")
}

type stubBackend struct {
	interp string
}

func (s *stubBackend) Interpretation() string          { return s.interp }
func (s *stubBackend) Read() (Reader, error)            { return nil, nil }
func (s *stubBackend) Write() (Writer, error)           { return nil, nil }
func (s *stubBackend) Sub() (Group, error)              { return nil, nil }
func (s *stubBackend) Attr() (Group, error)             { return nil, nil }
func (s *stubBackend) Head() (Cell, Relation, error)    { return Cell{}, 0, nil }
