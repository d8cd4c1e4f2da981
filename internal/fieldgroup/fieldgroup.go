// Package fieldgroup implements the field pseudo-group (relation '#'):
// every cell, regardless of interpretation, exposes its own
// {value, label, type, index, serial} as five indexed children. A field
// that is semantically absent for a given cell (e.g. an unlabeled JSON
// array element has no label) reports absence rather than an empty
// string, mirroring internal/api/internal/field.rs from the original.
package fieldgroup

import (
	"fmt"

	"treenav/internal/cell"
	"treenav/internal/herr"
	"treenav/internal/value"
)

// Group returns the field pseudo-group of parent.
func Group(parent cell.Cell) cell.Group { return &group{parent: parent} }

type group struct {
	parent cell.Cell
}

func (g *group) LabelType() cell.LabelType {
	return cell.LabelType{Indexed: true, UniqueLabels: true}
}

func (g *group) Len() (int, error) { return 5, nil }

func (g *group) At(i int) (cell.Cell, error) {
	if i < 0 {
		i += 5
	}
	if i < 0 || i >= 5 {
		return cell.Cell{}, herr.NoRes("field index out of range")
	}
	fk := cell.FieldKind(i)
	present, err := g.present(fk)
	if err != nil {
		return cell.Cell{}, err
	}
	if !present {
		return cell.Cell{}, herr.NoRes(fmt.Sprintf("field %q is absent on this cell", fk))
	}
	return cell.New(&fieldBackend{parent: g.parent, kind: fk}, g.parent.Domain()), nil
}

func (g *group) GetAll(label string) (cell.CellIterator, error) {
	fk, ok := fieldKindByLabel(label)
	if !ok {
		return &sliceIter{}, nil
	}
	c, err := g.At(int(fk))
	if err != nil {
		if herr.IsNone(err) {
			return &sliceIter{}, nil
		}
		return nil, err
	}
	return &sliceIter{cells: []cell.Cell{c}}, nil
}

func (g *group) Create(label *string, v *value.OwnValue) (cell.Cell, error) {
	return cell.Cell{}, herr.UserErr("the field pseudo-group does not support creating new fields")
}

func fieldKindByLabel(label string) (cell.FieldKind, bool) {
	switch label {
	case "value":
		return cell.FieldValue, true
	case "label":
		return cell.FieldLabel, true
	case "type":
		return cell.FieldType, true
	case "index":
		return cell.FieldIndex, true
	case "serial":
		return cell.FieldSerial, true
	default:
		return 0, false
	}
}

func (g *group) present(fk cell.FieldKind) (bool, error) {
	reader, err := g.parent.Read()
	if err != nil {
		return false, err
	}
	var fieldErr error
	switch fk {
	case cell.FieldValue:
		_, fieldErr = reader.Value()
	case cell.FieldLabel:
		_, fieldErr = reader.Label()
	case cell.FieldType:
		_, fieldErr = reader.Type()
	case cell.FieldIndex:
		_, fieldErr = reader.Index()
	case cell.FieldSerial:
		_, fieldErr = reader.Serial()
	}
	if fieldErr == nil {
		return true, nil
	}
	if herr.IsNone(fieldErr) {
		return false, nil
	}
	return false, fieldErr
}

type sliceIter struct {
	cells []cell.Cell
	pos   int
}

func (s *sliceIter) Next() (cell.Cell, bool) {
	if s.pos >= len(s.cells) {
		return cell.Cell{}, false
	}
	c := s.cells[s.pos]
	s.pos++
	return c, true
}

// fieldBackend is the backend of one of the five field cells.
type fieldBackend struct {
	parent cell.Cell
	kind   cell.FieldKind
}

func (f *fieldBackend) Interpretation() string { return "field" }

func (f *fieldBackend) Read() (cell.Reader, error) {
	return &fieldReader{parent: f.parent, kind: f.kind}, nil
}

func (f *fieldBackend) Write() (cell.Writer, error) {
	return &fieldWriter{parent: f.parent, kind: f.kind}, nil
}

func (f *fieldBackend) Sub() (cell.Group, error) {
	return nil, herr.NoRes("field cells have no sub children")
}

func (f *fieldBackend) Attr() (cell.Group, error) {
	return nil, herr.NoRes("field cells have no attributes")
}

func (f *fieldBackend) Head() (cell.Cell, cell.Relation, error) {
	return f.parent, cell.Field, nil
}

type fieldReader struct {
	parent cell.Cell
	kind   cell.FieldKind
}

func (r *fieldReader) Type() (string, error)  { return "field", nil }
func (r *fieldReader) Index() (uint64, error) { return 0, herr.NoRes("field cells have no index") }
func (r *fieldReader) Label() (string, error) { return r.kind.String(), nil }
func (r *fieldReader) Serial() (value.Value, error) {
	return value.Value{}, herr.NoRes("field cells do not serialize")
}

func (r *fieldReader) Value() (value.Value, error) {
	pr, err := r.parent.Read()
	if err != nil {
		return value.Value{}, err
	}
	switch r.kind {
	case cell.FieldValue:
		return pr.Value()
	case cell.FieldLabel:
		s, err := pr.Label()
		if err != nil {
			return value.Value{}, err
		}
		return value.Str(s), nil
	case cell.FieldType:
		t, err := pr.Type()
		if err != nil {
			return value.Value{}, err
		}
		return value.Str(t), nil
	case cell.FieldIndex:
		i, err := pr.Index()
		if err != nil {
			return value.Value{}, err
		}
		return value.Uint(i, value.U64), nil
	case cell.FieldSerial:
		return pr.Serial()
	default:
		return value.Value{}, herr.Internal("unknown field kind")
	}
}

type fieldWriter struct {
	parent cell.Cell
	kind   cell.FieldKind
}

func (w *fieldWriter) SetValue(v value.OwnValue) error {
	pw, err := w.parent.Write()
	if err != nil {
		return err
	}
	switch w.kind {
	case cell.FieldValue:
		return pw.SetValue(v)
	case cell.FieldLabel:
		s, ok := v.AsValue().AsStr()
		if !ok {
			return herr.UserErr("field #label requires a string value")
		}
		return pw.SetLabel(s)
	case cell.FieldIndex:
		i, _, ok := v.AsValue().AsInt()
		if !ok {
			return herr.UserErr("field #index requires an integer value")
		}
		return pw.SetIndex(uint64(i))
	case cell.FieldType:
		return herr.ReadOnlyErr("field #type is read-only")
	case cell.FieldSerial:
		return herr.ReadOnlyErr("field #serial is read-only")
	default:
		return herr.Internal("unknown field kind")
	}
}

func (w *fieldWriter) SetLabel(s string) error {
	return herr.ReadOnlyErr("field cells do not themselves carry a label to rename")
}

func (w *fieldWriter) SetIndex(i uint64) error {
	return herr.ReadOnlyErr("field cells do not themselves carry an index to rename")
}
