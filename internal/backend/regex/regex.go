// Package regex implements the regex interpretation: elevating a string
// value with a "pattern" parameter exposes the first match as a group of
// capture groups, stdlib regexp since no repo in the corpus pulls in a
// third-party regex engine for simple capture-group extraction.
package regex

import (
	"regexp"

	"treenav/internal/cell"
	"treenav/internal/elevreg"
	"treenav/internal/herr"
	"treenav/internal/value"
)

func init() {
	elevreg.Register([]string{"value"}, []string{"regex"}, construct)
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
		return cell.Cell{}, herr.UserErr("regex elevation requires a string value")
	}
	pattern, ok := patternParam(params)
	if !ok {
		return cell.Cell{}, herr.UserErr(`regex elevation requires a "pattern" parameter`)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return cell.Cell{}, herr.InvalidFormatErr("invalid regex pattern "+pattern, err)
	}
	groups := re.FindStringSubmatch(s)
	if groups == nil {
		return cell.Cell{}, herr.NoRes("regex pattern did not match")
	}
	names := re.SubexpNames()
	b := &backend{groups: groups, names: names}
	dom := cell.NewElevatedDomain(cell.ReadOnly, source)
	dom.SetRoot(b)
	b.dom = dom
	return cell.New(b, dom), nil
}

func patternParam(params elevreg.Params) (string, bool) {
	if v, ok := params.Named["pattern"]; ok {
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
	groups []string
	names  []string
	dom    *cell.Domain
}

func (b *backend) Interpretation() string { return "regex" }

func (b *backend) Read() (cell.Reader, error) { return &reader{b: b}, nil }

func (b *backend) Write() (cell.Writer, error) {
	return nil, herr.ReadOnlyErr("regex matches are read-only")
}

func (b *backend) Sub() (cell.Group, error) { return &group{b: b}, nil }

func (b *backend) Attr() (cell.Group, error) {
	return nil, herr.NoRes("regex has no attribute relation")
}

func (b *backend) Head() (cell.Cell, cell.Relation, error) {
	return cell.Cell{}, 0, herr.NoRes("regex match is a domain root")
}

type reader struct{ b *backend }

func (r *reader) Type() (string, error)  { return "regex", nil }
func (r *reader) Index() (uint64, error) { return 0, herr.NoRes("regex root has no index") }
func (r *reader) Label() (string, error) { return "", herr.NoRes("regex root has no label") }
func (r *reader) Value() (value.Value, error) { return value.Str(r.b.groups[0]), nil }
func (r *reader) Serial() (value.Value, error) { return r.Value() }

type group struct{ b *backend }

func (g *group) LabelType() cell.LabelType {
	return cell.LabelType{Indexed: true, UniqueLabels: true}
}

func (g *group) Len() (int, error) { return len(g.b.groups), nil }

func (g *group) At(i int) (cell.Cell, error) {
	if i < 0 {
		i += len(g.b.groups)
	}
	if i < 0 || i >= len(g.b.groups) {
		return cell.Cell{}, herr.NoRes("capture group index out of range")
	}
	return cell.New(&groupBackend{b: g.b, idx: i}, g.b.dom), nil
}

func (g *group) GetAll(label string) (cell.CellIterator, error) {
	for i, n := range g.b.names {
		if n != "" && n == label {
			return &oneIter{c: cell.New(&groupBackend{b: g.b, idx: i}, g.b.dom), has: true}, nil
		}
	}
	return &oneIter{}, nil
}

func (g *group) Create(label *string, v *value.OwnValue) (cell.Cell, error) {
	return cell.Cell{}, herr.ReadOnlyErr("regex matches do not support creating new groups")
}

type groupBackend struct {
	b   *backend
	idx int
}

func (gb *groupBackend) Interpretation() string { return "regex" }
func (gb *groupBackend) Read() (cell.Reader, error) { return &groupReader{gb: gb}, nil }
func (gb *groupBackend) Write() (cell.Writer, error) {
	return nil, herr.ReadOnlyErr("capture groups are read-only")
}
func (gb *groupBackend) Sub() (cell.Group, error) {
	return nil, herr.NoRes("capture groups have no sub children")
}
func (gb *groupBackend) Attr() (cell.Group, error) {
	return nil, herr.NoRes("capture groups have no attributes")
}
func (gb *groupBackend) Head() (cell.Cell, cell.Relation, error) {
	return cell.New(gb.b, gb.b.dom), cell.Sub, nil
}

type groupReader struct{ gb *groupBackend }

func (r *groupReader) Type() (string, error)  { return "string", nil }
func (r *groupReader) Index() (uint64, error) { return uint64(r.gb.idx), nil }
func (r *groupReader) Label() (string, error) {
	if r.gb.idx < len(r.gb.b.names) && r.gb.b.names[r.gb.idx] != "" {
		return r.gb.b.names[r.gb.idx], nil
	}
	return "", herr.NoRes("capture group has no name")
}
func (r *groupReader) Value() (value.Value, error) {
	return value.Str(r.gb.b.groups[r.gb.idx]), nil
}
func (r *groupReader) Serial() (value.Value, error) { return r.Value() }

type oneIter struct {
	c   cell.Cell
	has bool
	hit bool
}

func (o *oneIter) Next() (cell.Cell, bool) {
	if o.hit || !o.has {
		return cell.Cell{}, false
	}
	o.hit = true
	return o.c, true
}
