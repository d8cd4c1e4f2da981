// Package toml implements the toml interpretation on top of
// github.com/BurntSushi/toml, the library go-ethereum's own config
// loader depends on.
package toml

import (
	"bytes"
	"os"

	"github.com/BurntSushi/toml"

	"treenav/internal/backend/dyntree"
	"treenav/internal/backend/fs"
	"treenav/internal/cell"
	"treenav/internal/elevreg"
	"treenav/internal/herr"
)

func init() {
	elevreg.Register([]string{"fs", "value"}, []string{"toml"}, construct)
}

func construct(source cell.Cell, target string, params elevreg.Params) (cell.Cell, error) {
	raw, err := rawContent(source)
	if err != nil {
		return cell.Cell{}, err
	}
	return dyntree.New(raw, codec{}, cell.NoAutoWrite, source)
}

func rawContent(source cell.Cell) ([]byte, error) {
	if source.Interpretation() == "fs" {
		path, ok := fs.Path(source)
		if !ok {
			return nil, herr.Internal("fs cell without a path")
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, herr.IOErr("cannot read "+path, err)
		}
		return content, nil
	}
	reader, err := source.Read()
	if err != nil {
		return nil, err
	}
	v, err := reader.Value()
	if err != nil {
		return nil, err
	}
	if s, ok := v.AsStr(); ok {
		return []byte(s), nil
	}
	if b, ok := v.AsBytes(); ok {
		return b, nil
	}
	return nil, herr.UserErr("toml elevation requires a string, byte, or fs-backed source")
}

type codec struct{}

func (codec) Interpretation() string { return "toml" }

func (codec) Unmarshal(raw []byte) (any, error) {
	var v map[string]any
	if err := toml.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return normalize(v).(map[string]any), nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	case int64:
		return t
	default:
		return v
	}
}

// Marshal requires v to be the document's root table: a TOML document
// has no textual representation for a bare scalar or array, so
// write-back (which always serializes the tree root) is the only
// supported case; a Serial() on a non-root node surfaces InvalidFormat.
func (codec) Marshal(v any, hint string) ([]byte, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, herr.InvalidFormatErr("toml can only serialize its document root table", nil)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (codec) DetectHint(raw []byte) string { return "" }
