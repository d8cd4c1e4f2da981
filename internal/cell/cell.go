// Package cell defines the backend contract and the front-facing Cell
// handle that every interpretation (json, yaml, fs, http, ...) plugs
// into. A Cell pairs a Backend variant with a Domain: the backend knows
// how to read/write/enumerate a single node of some tree, the domain
// knows the write policy, origin and dirty state of the subtree the
// backend belongs to.
package cell

import (
	"treenav/internal/herr"
	"treenav/internal/value"
)

// Relation names the four ways a cell can be reached from its parent.
type Relation byte

const (
	Sub   Relation = '/'
	Attr  Relation = '@'
	Field Relation = '#'
	Interp Relation = '^'
)

func (r Relation) String() string { return string(r) }

// FieldKind enumerates the five slots of a cell's field pseudo-group.
type FieldKind int

const (
	FieldValue FieldKind = iota
	FieldLabel
	FieldType
	FieldIndex
	FieldSerial
)

func (f FieldKind) String() string {
	switch f {
	case FieldValue:
		return "value"
	case FieldLabel:
		return "label"
	case FieldType:
		return "type"
	case FieldIndex:
		return "index"
	case FieldSerial:
		return "serial"
	default:
		return "?"
	}
}

// LabelType describes whether a group's members are positionally indexed
// and whether labels within it are guaranteed unique (a JSON object is
// unique-labeled; an XML element's children are not).
type LabelType struct {
	Indexed      bool
	UniqueLabels bool
}

// Reader is the read-borrow surface a backend's current node exposes.
// Each method returns a KindNone *herr.Err when the field is semantically
// absent rather than failed.
type Reader interface {
	Type() (string, error)
	Index() (uint64, error)
	Label() (string, error)
	Value() (value.Value, error)
	// Serial returns the canonical serialized form of this node's
	// subtree, used by write-back. A KindNone error means this backend
	// does not support serialization (e.g. http); write-back treats that
	// as a no-op, not a failure.
	Serial() (value.Value, error)
}

// Writer is the write-borrow surface. Every setter may fail with
// KindReadOnly if the owning domain forbids writes.
type Writer interface {
	SetValue(v value.OwnValue) error
	SetLabel(s string) error
	SetIndex(i uint64) error
}

// CellIterator walks the members of a Group produced by GetAll.
type CellIterator interface {
	Next() (Cell, bool)
}

// Group is a lazy, polymorphic ordered collection of cells reached under
// one relation from a parent.
type Group interface {
	Len() (int, error)
	At(i int) (Cell, error)
	GetAll(label string) (CellIterator, error)
	LabelType() LabelType
	// Create appends a new child, used by writable backends; label may be
	// nil for positional groups, v may be nil for an empty-valued child.
	Create(label *string, v *value.OwnValue) (Cell, error)
}

// Backend is implemented once per interpretation (json, fs, http, ...).
type Backend interface {
	Interpretation() string
	Read() (Reader, error)
	Write() (Writer, error)
	Sub() (Group, error)
	Attr() (Group, error)
	// Head reports the parent cell this one was reached from and the
	// relation used to reach it. A domain root with no elevation origin
	// returns a KindNone error.
	Head() (Cell, Relation, error)
}

// Cell is the front-facing handle: a backend variant plus the domain
// that owns its write policy and dirty tracking.
type Cell struct {
	backend Backend
	dom     *Domain
}

// New builds a cell from a backend implementation and the domain it
// belongs to. dom may be nil only for ephemeral, domain-less scratch
// cells (e.g. rvalue literals never written back).
func New(b Backend, dom *Domain) Cell { return Cell{backend: b, dom: dom} }

func (c Cell) Interpretation() string {
	if c.backend == nil {
		return ""
	}
	return c.backend.Interpretation()
}

func (c Cell) Read() (Reader, error) {
	if c.backend == nil {
		return nil, herr.Internal("read on a zero-value cell")
	}
	return c.backend.Read()
}

// Write opens a write borrow, rejecting it up front with KindReadOnly if
// the cell's domain policy forbids writes. Successful setters mark the
// domain dirty.
func (c Cell) Write() (Writer, error) {
	if c.backend == nil {
		return nil, herr.Internal("write on a zero-value cell")
	}
	if c.dom != nil && c.dom.Policy() == ReadOnly {
		return nil, herr.ReadOnlyErr("cell's domain is read-only")
	}
	w, err := c.backend.Write()
	if err != nil {
		return nil, err
	}
	return &dirtyingWriter{inner: w, dom: c.dom}, nil
}

func (c Cell) Sub() (Group, error) {
	if c.backend == nil {
		return nil, herr.Internal("sub on a zero-value cell")
	}
	return c.backend.Sub()
}

func (c Cell) Attr() (Group, error) {
	if c.backend == nil {
		return nil, herr.Internal("attr on a zero-value cell")
	}
	return c.backend.Attr()
}

func (c Cell) Head() (Cell, Relation, error) {
	if c.backend == nil {
		return Cell{}, 0, herr.Internal("head on a zero-value cell")
	}
	return c.backend.Head()
}

func (c Cell) Domain() *Domain { return c.dom }
func (c Cell) Backend() Backend { return c.backend }
func (c Cell) IsZero() bool     { return c.backend == nil }

type dirtyingWriter struct {
	inner Writer
	dom   *Domain
}

func (w *dirtyingWriter) SetValue(v value.OwnValue) error {
	if err := w.inner.SetValue(v); err != nil {
		return err
	}
	if w.dom != nil {
		w.dom.MarkDirty()
	}
	return nil
}

func (w *dirtyingWriter) SetLabel(s string) error {
	if err := w.inner.SetLabel(s); err != nil {
		return err
	}
	if w.dom != nil {
		w.dom.MarkDirty()
	}
	return nil
}

func (w *dirtyingWriter) SetIndex(i uint64) error {
	if err := w.inner.SetIndex(i); err != nil {
		return err
	}
	if w.dom != nil {
		w.dom.MarkDirty()
	}
	return nil
}
