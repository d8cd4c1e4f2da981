package herr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNoneDistinguishesAbsenceFromFailure(t *testing.T) {
	assert.True(t, IsNone(NoRes("not found")))
	assert.False(t, IsNone(UserErr("bad input")))
	assert.False(t, IsNone(nil))
}

func TestKindOfDefaultsToInternalForForeignErrors(t *testing.T) {
	assert.Equal(t, KindUser, KindOf(UserErr("x")))
	assert.Equal(t, KindInternal, KindOf(errors.New("not ours")))
}

func TestWithPathSetsOnceOnly(t *testing.T) {
	e := UserErr("broken")
	e.WithPath("/a/b")
	e.WithPath("/c/d")
	assert.Equal(t, "/a/b", e.Path)
}

func TestWrapPreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	e := IOErr("write failed", cause)
	assert.ErrorIs(t, e, cause)
	assert.Equal(t, KindIO, e.Kind)
}

func TestErrorStringIncludesPathWhenSet(t *testing.T) {
	e := ReadOnlyErr("cannot write")
	assert.NotContains(t, e.Error(), "at ")
	e.WithPath("/x")
	assert.Contains(t, e.Error(), "(at /x)")
}
