// Package url implements the url interpretation: a string elevates into
// its parsed parts (scheme, host, path, query, fragment) as a flat
// group, stdlib net/url since no repo in the corpus wraps a third-party
// URL parser for simple part extraction.
package url

import (
	"net/url"
	"strings"

	"treenav/internal/cell"
	"treenav/internal/elevreg"
	"treenav/internal/herr"
	"treenav/internal/value"
)

func init() {
	elevreg.Register([]string{"value"}, []string{"url"}, construct)
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
		return cell.Cell{}, herr.UserErr("url elevation requires a string value")
	}
	u, err := url.Parse(s)
	if err != nil {
		return cell.Cell{}, herr.InvalidFormatErr("failed to parse url", err)
	}
	parts := orderedParts(u)
	b := &backend{url: u, parts: parts}
	dom := cell.NewElevatedDomain(cell.ReadOnly, source)
	dom.SetRoot(b)
	b.dom = dom
	return cell.New(b, dom), nil
}

type part struct {
	label string
	value string
}

func orderedParts(u *url.URL) []part {
	var parts []part
	if u.Scheme != "" {
		parts = append(parts, part{"scheme", u.Scheme})
	}
	if u.Host != "" {
		parts = append(parts, part{"host", u.Host})
	}
	if u.Path != "" {
		parts = append(parts, part{"path", u.Path})
	}
	if u.RawQuery != "" {
		parts = append(parts, part{"query", u.RawQuery})
	}
	if u.Fragment != "" {
		parts = append(parts, part{"fragment", u.Fragment})
	}
	return parts
}

type backend struct {
	url   *url.URL
	parts []part
	dom   *cell.Domain
}

func (b *backend) Interpretation() string { return "url" }

func (b *backend) Read() (cell.Reader, error) { return &reader{b: b}, nil }

func (b *backend) Write() (cell.Writer, error) {
	return nil, herr.ReadOnlyErr("url cells are read-only")
}

func (b *backend) Sub() (cell.Group, error) { return &group{b: b}, nil }

func (b *backend) Attr() (cell.Group, error) {
	return nil, herr.NoRes("url has no attribute relation")
}

func (b *backend) Head() (cell.Cell, cell.Relation, error) {
	return cell.Cell{}, 0, herr.NoRes("url is a domain root")
}

type reader struct{ b *backend }

func (r *reader) Type() (string, error)  { return "url", nil }
func (r *reader) Index() (uint64, error) { return 0, herr.NoRes("url root has no index") }
func (r *reader) Label() (string, error) { return "", herr.NoRes("url root has no label") }
func (r *reader) Value() (value.Value, error) { return value.Str(r.b.url.String()), nil }
func (r *reader) Serial() (value.Value, error) { return r.Value() }

type group struct{ b *backend }

func (g *group) LabelType() cell.LabelType {
	return cell.LabelType{Indexed: true, UniqueLabels: true}
}

func (g *group) Len() (int, error) { return len(g.b.parts), nil }

func (g *group) At(i int) (cell.Cell, error) {
	if i < 0 {
		i += len(g.b.parts)
	}
	if i < 0 || i >= len(g.b.parts) {
		return cell.Cell{}, herr.NoRes("url part index out of range")
	}
	return cell.New(&partBackend{b: g.b, idx: i}, g.b.dom), nil
}

func (g *group) GetAll(label string) (cell.CellIterator, error) {
	for i, p := range g.b.parts {
		if strings.EqualFold(p.label, label) {
			return &oneIter{c: cell.New(&partBackend{b: g.b, idx: i}, g.b.dom), has: true}, nil
		}
	}
	return &oneIter{}, nil
}

func (g *group) Create(label *string, v *value.OwnValue) (cell.Cell, error) {
	return cell.Cell{}, herr.ReadOnlyErr("url cells do not support creating new parts")
}

type partBackend struct {
	b   *backend
	idx int
}

func (p *partBackend) Interpretation() string { return "url" }
func (p *partBackend) Read() (cell.Reader, error) { return &partReader{p: p}, nil }
func (p *partBackend) Write() (cell.Writer, error) {
	return nil, herr.ReadOnlyErr("url parts are read-only")
}
func (p *partBackend) Sub() (cell.Group, error) {
	return nil, herr.NoRes("url parts have no sub children")
}
func (p *partBackend) Attr() (cell.Group, error) {
	return nil, herr.NoRes("url parts have no attributes")
}
func (p *partBackend) Head() (cell.Cell, cell.Relation, error) {
	return cell.New(p.b, p.b.dom), cell.Sub, nil
}

type partReader struct{ p *partBackend }

func (r *partReader) Type() (string, error)  { return "string", nil }
func (r *partReader) Index() (uint64, error) { return uint64(r.p.idx), nil }
func (r *partReader) Label() (string, error) { return r.p.b.parts[r.p.idx].label, nil }
func (r *partReader) Value() (value.Value, error) {
	return value.Str(r.p.b.parts[r.p.idx].value), nil
}
func (r *partReader) Serial() (value.Value, error) { return r.Value() }

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
