// Package fs implements the filesystem interpretation: a cell per
// directory entry, sub children for directory listings, no scalar value
// of its own (elevating to "file" is what exposes byte content).
// Grounded on the thin os/filepath wrapper shape of
// internal/world/fs.go's Scanner, using stdlib os/io/fs since the
// filesystem backend is inherently a syscall wrapper and no example repo
// reaches for a third-party filesystem abstraction for this.
package fs

import (
	"os"
	"path/filepath"
	"sort"

	"treenav/internal/cell"
	"treenav/internal/elevreg"
	"treenav/internal/herr"
	"treenav/internal/value"
)

func init() {
	// Registered for both "value" (a bare path string elevates to an fs
	// root) and "fs" (an already-resolved fs cell re-elevates to grant
	// write access via "[w]", e.g. a leading "^fs[w]" right after a file
	// starter that already materialized the fs root), matching
	// interpretations/fs.rs's source_interpretations: &["path", "fs"].
	elevreg.Register([]string{"value", "fs"}, []string{"fs"}, construct)
}

// construct builds the fs root cell from a path string, or re-elevates an
// existing fs cell onto the same path, honoring the "[w]" positional
// parameter that requests write access (used by backend/file when the
// origin chain eventually writes bytes to disk).
func construct(source cell.Cell, target string, params elevreg.Params) (cell.Cell, error) {
	p, writable, err := resolvePathAndWritable(source, params)
	if err != nil {
		return cell.Cell{}, err
	}
	b := &backend{path: p, writable: writable}
	policy := cell.ReadOnly
	if writable {
		policy = cell.NoAutoWrite
	}
	dom := cell.NewElevatedDomain(policy, source)
	dom.SetRoot(b)
	b.dom = dom
	return cell.New(b, dom), nil
}

func resolvePathAndWritable(source cell.Cell, params elevreg.Params) (string, bool, error) {
	writable := hasWriteParam(params)
	if source.Interpretation() == "fs" {
		p, ok := Path(source)
		if !ok {
			return "", false, herr.Internal("fs cell without a path")
		}
		if !writable {
			// "^fs" with no "[w]" re-elevation keeps whatever write access
			// the source fs cell already had instead of downgrading it.
			writable = IsWritable(source)
		}
		return p, writable, nil
	}
	reader, err := source.Read()
	if err != nil {
		return "", false, err
	}
	v, err := reader.Value()
	if err != nil {
		return "", false, err
	}
	p, ok := v.AsStr()
	if !ok {
		return "", false, herr.UserErr("fs elevation requires a string path value")
	}
	return p, writable, nil
}

func hasWriteParam(params elevreg.Params) bool {
	for _, pv := range params.Positional {
		if s, ok := pv.AsValue().AsStr(); ok && s == "w" {
			return true
		}
	}
	return false
}

type backend struct {
	path     string
	writable bool
	dom      *cell.Domain
}

// IsWritable reports whether the fs entry backing c was elevated with
// write access ("[w]"); backend/file reads this to decide whether its
// own elevated domain should allow writes back to disk.
func IsWritable(c cell.Cell) bool {
	b, ok := c.Backend().(*backend)
	return ok && b.writable
}

// Path returns the filesystem path backing c, as given to the fs
// elevation (relative paths stay relative), for backend/file to open
// directly.
func Path(c cell.Cell) (string, bool) {
	b, ok := c.Backend().(*backend)
	if !ok {
		return "", false
	}
	return b.path, true
}

func (b *backend) Interpretation() string { return "fs" }

func (b *backend) Read() (cell.Reader, error) { return &reader{b: b}, nil }

// Write lets a writable fs entry accept a whole-file write directly (the
// path a domain elevated straight from fs to a format backend takes,
// without an intervening "file" stage), mirroring interpretations/fs.rs's
// CellWriter::set_value writing the whole file via std::fs::write.
func (b *backend) Write() (cell.Writer, error) {
	if !b.writable {
		return nil, herr.ReadOnlyErr("fs entry was not elevated with write access (use \"[w]\")")
	}
	return &writer{b: b}, nil
}

func (b *backend) Sub() (cell.Group, error) {
	info, err := os.Stat(b.path)
	if err != nil {
		return nil, herr.IOErr("cannot stat "+b.path, err)
	}
	if !info.IsDir() {
		return nil, herr.NoRes("regular files have no sub children")
	}
	entries, err := os.ReadDir(b.path)
	if err != nil {
		return nil, herr.IOErr("cannot read directory "+b.path, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return &group{b: b, names: names}, nil
}

func (b *backend) Attr() (cell.Group, error) {
	return nil, herr.NoRes("fs has no attribute relation")
}

func (b *backend) Head() (cell.Cell, cell.Relation, error) {
	parent := filepath.Dir(b.path)
	if parent == b.path {
		return cell.Cell{}, 0, herr.NoRes("filesystem root has no parent")
	}
	pb := &backend{path: parent, writable: b.writable, dom: b.dom}
	return cell.New(pb, b.dom), cell.Sub, nil
}

type reader struct{ b *backend }

func (r *reader) Type() (string, error) {
	info, err := os.Stat(r.b.path)
	if err != nil {
		return "", herr.IOErr("cannot stat "+r.b.path, err)
	}
	if info.IsDir() {
		return "dir", nil
	}
	return "file", nil
}

func (r *reader) Index() (uint64, error) { return 0, herr.NoRes("fs entries have no index") }

func (r *reader) Label() (string, error) { return filepath.Base(r.b.path), nil }

func (r *reader) Value() (value.Value, error) {
	return value.Value{}, herr.NoRes("fs entries have no scalar value; elevate to file")
}

func (r *reader) Serial() (value.Value, error) {
	return value.Value{}, herr.NoRes("fs entries do not serialize directly")
}

type writer struct{ b *backend }

func (w *writer) SetValue(v value.OwnValue) error {
	s, ok := v.AsValue().AsStr()
	if !ok {
		return herr.UserErr("fs entries can only be written as raw string content")
	}
	return os.WriteFile(w.b.path, []byte(s), 0644)
}

func (w *writer) SetLabel(s string) error {
	return herr.ReadOnlyErr("fs entries have no label to set")
}

func (w *writer) SetIndex(i uint64) error {
	return herr.ReadOnlyErr("fs entries have no index to set")
}

type group struct {
	b     *backend
	names []string
}

func (g *group) LabelType() cell.LabelType {
	return cell.LabelType{Indexed: true, UniqueLabels: true}
}

func (g *group) Len() (int, error) { return len(g.names), nil }

func (g *group) At(i int) (cell.Cell, error) {
	if i < 0 {
		i += len(g.names)
	}
	if i < 0 || i >= len(g.names) {
		return cell.Cell{}, herr.NoRes("directory index out of range")
	}
	return g.child(g.names[i]), nil
}

func (g *group) GetAll(label string) (cell.CellIterator, error) {
	for _, n := range g.names {
		if n == label {
			return &oneIter{c: g.child(n), has: true}, nil
		}
	}
	return &oneIter{}, nil
}

func (g *group) child(name string) cell.Cell {
	cb := &backend{path: filepath.Join(g.b.path, name), writable: g.b.writable, dom: g.b.dom}
	return cell.New(cb, g.b.dom)
}

func (g *group) Create(label *string, v *value.OwnValue) (cell.Cell, error) {
	if !g.b.writable {
		return cell.Cell{}, herr.ReadOnlyErr("filesystem domain is not writable")
	}
	if label == nil {
		return cell.Cell{}, herr.UserErr("creating a file requires a name")
	}
	p := filepath.Join(g.b.path, *label)
	var content []byte
	if v != nil {
		if s, ok := v.AsValue().AsStr(); ok {
			content = []byte(s)
		}
	}
	if err := os.WriteFile(p, content, 0644); err != nil {
		return cell.Cell{}, herr.IOErr("cannot create "+p, err)
	}
	g.names = append(g.names, *label)
	return g.child(*label), nil
}

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
