// Package yaml implements the yaml interpretation on top of
// gopkg.in/yaml.v3, the YAML library every repo in the pack that touches
// YAML (codenerd, hivekit) depends on.
package yaml

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"treenav/internal/backend/dyntree"
	"treenav/internal/backend/fs"
	"treenav/internal/cell"
	"treenav/internal/elevreg"
	"treenav/internal/herr"
)

func init() {
	elevreg.Register([]string{"fs", "value"}, []string{"yaml"}, construct)
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
	return nil, herr.UserErr("yaml elevation requires a string, byte, or fs-backed source")
}

type codec struct{}

func (codec) Interpretation() string { return "yaml" }

func (codec) Unmarshal(raw []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

// normalize converts yaml.v3's map[string]any (already string-keyed for
// scalar keys) and coerces plain ints to int64 so the generic dyntree
// model has one consistent integer representation across formats; floats
// are left as float64, keeping Int and Float distinct kinds.
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
	case int:
		return int64(t)
	case int64:
		return t
	default:
		return v
	}
}

// Marshal emits compact YAML with the leading "---\n" document marker
// stripped, per the spec's serialization contract.
func (codec) Marshal(v any, hint string) ([]byte, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimPrefix(string(out), "---\n")), nil
}

func (codec) DetectHint(raw []byte) string { return "" }
