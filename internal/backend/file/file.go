// Package file implements the file interpretation: a raw byte/string
// value one step below fs, produced by elevating an fs entry. Preserved
// from original_source's two-stage fs -> file -> json/yaml/... chain
// instead of collapsing byte loading into each format backend directly;
// a bonus backend/split can also elevate a file's text content.
package file

import (
	"os"

	"treenav/internal/backend/fs"
	"treenav/internal/cell"
	"treenav/internal/elevreg"
	"treenav/internal/herr"
	"treenav/internal/value"
)

func init() {
	elevreg.Register([]string{"fs"}, []string{"file"}, construct)
}

func construct(source cell.Cell, target string, params elevreg.Params) (cell.Cell, error) {
	reader, err := source.Read()
	if err != nil {
		return cell.Cell{}, err
	}
	typ, err := reader.Type()
	if err != nil {
		return cell.Cell{}, err
	}
	if typ != "file" {
		return cell.Cell{}, herr.UserErr("only regular fs entries elevate to file")
	}
	path, ok := fs.Path(source)
	if !ok {
		return cell.Cell{}, herr.UserErr("file elevation requires an fs-backed source cell")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return cell.Cell{}, herr.IOErr("cannot read "+path, err)
	}
	writable := fs.IsWritable(source)
	policy := cell.ReadOnly
	if writable {
		policy = cell.NoAutoWrite
	}
	b := &backend{path: path, content: string(content)}
	dom := cell.NewElevatedDomain(policy, source)
	dom.SetRoot(b)
	return cell.New(b, dom), nil
}

type backend struct {
	path    string
	content string
}

func (b *backend) Interpretation() string { return "file" }

func (b *backend) Read() (cell.Reader, error) { return &reader{b: b}, nil }
func (b *backend) Write() (cell.Writer, error) { return &writer{b: b}, nil }

func (b *backend) Sub() (cell.Group, error) {
	return nil, herr.NoRes("file cells have no sub children; elevate to a format backend")
}

func (b *backend) Attr() (cell.Group, error) {
	return nil, herr.NoRes("file has no attribute relation")
}

func (b *backend) Head() (cell.Cell, cell.Relation, error) {
	return cell.Cell{}, 0, herr.NoRes("file is a domain root, reached only by elevation")
}

type reader struct{ b *backend }

func (r *reader) Type() (string, error)  { return "file", nil }
func (r *reader) Index() (uint64, error) { return 0, herr.NoRes("file cells have no index") }
func (r *reader) Label() (string, error) { return "", herr.NoRes("file cells have no label") }
func (r *reader) Value() (value.Value, error) { return value.Str(r.b.content), nil }
func (r *reader) Serial() (value.Value, error) { return value.Str(r.b.content), nil }

type writer struct{ b *backend }

func (w *writer) SetValue(v value.OwnValue) error {
	s, ok := v.AsValue().AsStr()
	if !ok {
		return herr.UserErr("file values must be strings")
	}
	w.b.content = s
	return os.WriteFile(w.b.path, []byte(s), 0644)
}

func (w *writer) SetLabel(s string) error {
	return herr.ReadOnlyErr("file cells have no label to set")
}

func (w *writer) SetIndex(i uint64) error {
	return herr.ReadOnlyErr("file cells have no index to set")
}
