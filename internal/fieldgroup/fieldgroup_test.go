package fieldgroup

import (
	"testing"

	"github.com/stretchr/testify/require"

	"treenav/internal/backend/ownvalue"
	"treenav/internal/cell"
	"treenav/internal/herr"
	"treenav/internal/value"
)

func TestGroupLenIsAlwaysFive(t *testing.T) {
	parent := ownvalue.New(value.OwnString("x"), cell.NoAutoWrite)
	g := Group(parent)
	n, err := g.Len()
	require.NoError(t, err)
	require.Equal(t, 5, n)
}

func TestValueFieldMirrorsParentValue(t *testing.T) {
	parent := ownvalue.New(value.OwnString("hello"), cell.NoAutoWrite)
	g := Group(parent)
	c, err := g.At(int(cell.FieldValue))
	require.NoError(t, err)
	reader, err := c.Read()
	require.NoError(t, err)
	v, err := reader.Value()
	require.NoError(t, err)
	s, ok := v.AsStr()
	require.True(t, ok)
	require.Equal(t, "hello", s)
}

func TestLabelFieldAbsentReportsNoRes(t *testing.T) {
	parent := ownvalue.New(value.OwnString("x"), cell.NoAutoWrite)
	g := Group(parent)
	_, err := g.At(int(cell.FieldLabel))
	require.Error(t, err)
	require.True(t, herr.IsNone(err))
}

func TestGetAllUnknownLabelReturnsEmptyIterator(t *testing.T) {
	parent := ownvalue.New(value.OwnString("x"), cell.NoAutoWrite)
	g := Group(parent)
	it, err := g.GetAll("nope")
	require.NoError(t, err)
	_, ok := it.Next()
	require.False(t, ok)
}

func TestTypeFieldIsReadOnly(t *testing.T) {
	parent := ownvalue.New(value.OwnString("x"), cell.NoAutoWrite)
	g := Group(parent)
	c, err := g.At(int(cell.FieldType))
	require.NoError(t, err)
	w, err := c.Write()
	require.NoError(t, err)
	err = w.SetValue(value.OwnString("anything"))
	require.Error(t, err)
}
