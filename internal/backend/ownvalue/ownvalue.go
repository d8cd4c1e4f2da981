// Package ownvalue implements the bare scalar cell: a value with no
// children, used as the root of a "quoted string" path starter and as
// the literal cell behind a program assignment's rvalue. It also serves
// as the generic elevation source interpretation named "value": any
// backend whose reader returns a non-none Value() can elevate through a
// constructor registered for source "value", without needing its own
// interpretation name wired into every target backend.
package ownvalue

import (
	"sync"

	"treenav/internal/cell"
	"treenav/internal/herr"
	"treenav/internal/value"
)

// New builds a scalar cell holding v, the domain root of a fresh domain
// with no origin.
func New(v value.OwnValue, policy cell.WritePolicy) cell.Cell {
	b := &backend{v: v}
	dom := cell.NewDomain(policy)
	dom.SetRoot(b)
	return cell.New(b, dom)
}

type backend struct {
	mu sync.Mutex
	v  value.OwnValue
}

func (b *backend) Interpretation() string { return "value" }

func (b *backend) Read() (cell.Reader, error) { return &reader{b: b}, nil }

func (b *backend) Write() (cell.Writer, error) { return &writer{b: b}, nil }

func (b *backend) Sub() (cell.Group, error) {
	return nil, herr.NoRes("scalar value cells have no sub children")
}

func (b *backend) Attr() (cell.Group, error) {
	return nil, herr.NoRes("scalar value cells have no attributes")
}

func (b *backend) Head() (cell.Cell, cell.Relation, error) {
	return cell.Cell{}, 0, herr.NoRes("a scalar value root has no parent")
}

type reader struct{ b *backend }

func (r *reader) Type() (string, error)  { return "value", nil }
func (r *reader) Index() (uint64, error) { return 0, herr.NoRes("scalar value cells have no index") }
func (r *reader) Label() (string, error) { return "", herr.NoRes("scalar value cells have no label") }

func (r *reader) Value() (value.Value, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	if r.b.v.IsNone() {
		return value.Value{}, herr.NoRes("value is none")
	}
	return r.b.v.AsValue(), nil
}

func (r *reader) Serial() (value.Value, error) { return r.Value() }

type writer struct{ b *backend }

func (w *writer) SetValue(v value.OwnValue) error {
	w.b.mu.Lock()
	defer w.b.mu.Unlock()
	w.b.v = v
	return nil
}

func (w *writer) SetLabel(s string) error {
	return herr.ReadOnlyErr("scalar value cells have no label to set")
}

func (w *writer) SetIndex(i uint64) error {
	return herr.ReadOnlyErr("scalar value cells have no index to set")
}
