// Package split implements the split interpretation: a string elevates,
// given a "separator" parameter, into an indexed group of substrings.
// Grounded on original_source's split.rs interpretation, reachable only
// through an explicit elevation since no extension or prefix implies it.
package split

import (
	"strings"

	"treenav/internal/cell"
	"treenav/internal/elevreg"
	"treenav/internal/herr"
	"treenav/internal/value"
)

func init() {
	elevreg.Register([]string{"value"}, []string{"split"}, construct)
}

func construct(source cell.Cell, target string, params elevreg.Params) (cell.Cell, error) {
	reader, err := source.Read()
	if err != nil {
		return cell.Cell{}, err
	}
	v, err := reader.Value()
	if err != nil {
		return cell.Cell{}, err
	}
	s, ok := v.AsStr()
	if !ok {
		return cell.Cell{}, herr.UserErr("split elevation requires a string value")
	}
	sep, ok := separatorParam(params)
	if !ok {
		return cell.Cell{}, herr.UserErr(`split elevation requires a "separator" parameter`)
	}
	var parts []string
	if sep == "" {
		return cell.Cell{}, herr.UserErr("split separator must not be empty")
	}
	parts = strings.Split(s, sep)
	b := &backend{parts: parts}
	dom := cell.NewElevatedDomain(cell.ReadOnly, source)
	dom.SetRoot(b)
	b.dom = dom
	return cell.New(b, dom), nil
}

func separatorParam(params elevreg.Params) (string, bool) {
	if v, ok := params.Named["separator"]; ok {
		if s, ok := v.AsValue().AsStr(); ok {
			return s, true
		}
	}
	if len(params.Positional) > 0 {
		if s, ok := params.Positional[0].AsValue().AsStr(); ok {
			return s, true
		}
	}
	return "", false
}

type backend struct {
	parts []string
	dom   *cell.Domain
}

func (b *backend) Interpretation() string { return "split" }

func (b *backend) Read() (cell.Reader, error) { return &reader{b: b}, nil }

func (b *backend) Write() (cell.Writer, error) {
	return nil, herr.ReadOnlyErr("split cells are read-only")
}

func (b *backend) Sub() (cell.Group, error) { return &group{b: b}, nil }

func (b *backend) Attr() (cell.Group, error) {
	return nil, herr.NoRes("split has no attribute relation")
}

func (b *backend) Head() (cell.Cell, cell.Relation, error) {
	return cell.Cell{}, 0, herr.NoRes("split result is a domain root")
}

type reader struct{ b *backend }

func (r *reader) Type() (string, error)  { return "split", nil }
func (r *reader) Index() (uint64, error) { return 0, herr.NoRes("split root has no index") }
func (r *reader) Label() (string, error) { return "", herr.NoRes("split root has no label") }
func (r *reader) Value() (value.Value, error) {
	return value.Str(strings.Join(r.b.parts, "")), nil
}
func (r *reader) Serial() (value.Value, error) {
	return value.Value{}, herr.NoRes("split results do not support write-back")
}

type group struct{ b *backend }

func (g *group) LabelType() cell.LabelType {
	return cell.LabelType{Indexed: true, UniqueLabels: false}
}

func (g *group) Len() (int, error) { return len(g.b.parts), nil }

func (g *group) At(i int) (cell.Cell, error) {
	if i < 0 {
		i += len(g.b.parts)
	}
	if i < 0 || i >= len(g.b.parts) {
		return cell.Cell{}, herr.NoRes("split index out of range")
	}
	return cell.New(&partBackend{b: g.b, idx: i}, g.b.dom), nil
}

func (g *group) GetAll(label string) (cell.CellIterator, error) {
	return &emptyIter{}, nil
}

func (g *group) Create(label *string, v *value.OwnValue) (cell.Cell, error) {
	return cell.Cell{}, herr.ReadOnlyErr("split cells do not support creating new parts")
}

type partBackend struct {
	b   *backend
	idx int
}

func (p *partBackend) Interpretation() string { return "split" }
func (p *partBackend) Read() (cell.Reader, error) { return &partReader{p: p}, nil }
func (p *partBackend) Write() (cell.Writer, error) {
	return nil, herr.ReadOnlyErr("split parts are read-only")
}
func (p *partBackend) Sub() (cell.Group, error) {
	return nil, herr.NoRes("split parts have no sub children")
}
func (p *partBackend) Attr() (cell.Group, error) {
	return nil, herr.NoRes("split parts have no attributes")
}
func (p *partBackend) Head() (cell.Cell, cell.Relation, error) {
	return cell.New(p.b, p.b.dom), cell.Sub, nil
}

type partReader struct{ p *partBackend }

func (r *partReader) Type() (string, error)  { return "string", nil }
func (r *partReader) Index() (uint64, error) { return uint64(r.p.idx), nil }
func (r *partReader) Label() (string, error) { return "", herr.NoRes("split parts have no label") }
func (r *partReader) Value() (value.Value, error) {
	return value.Str(r.p.b.parts[r.p.idx]), nil
}
func (r *partReader) Serial() (value.Value, error) { return r.Value() }

type emptyIter struct{}

func (e *emptyIter) Next() (cell.Cell, bool) { return cell.Cell{}, false }
