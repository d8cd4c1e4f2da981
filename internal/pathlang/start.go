package pathlang

import (
	"strings"

	"treenav/internal/backend/ownvalue"
	"treenav/internal/cell"
	"treenav/internal/elevreg"
	"treenav/internal/herr"
	"treenav/internal/value"
)

// EvalStart materializes the root cell a program statement's path
// applies to, per PathStart::eval: a url starter elevates a scalar
// string cell to "url", a file starter elevates one to "fs", and a
// bare quoted string is left as the scalar cell itself.
func EvalStart(start Start) (cell.Cell, error) {
	switch start.Kind {
	case StartURL:
		v := ownvalue.New(value.OwnString(start.Value), cell.NoAutoWrite)
		return elevreg.Elevate(v, "url", elevreg.Params{})
	case StartFile:
		v := ownvalue.New(value.OwnString(start.Value), cell.NoAutoWrite)
		return elevreg.Elevate(v, "fs", elevreg.Params{})
	case StartString:
		return ownvalue.New(value.OwnString(start.Value), cell.NoAutoWrite), nil
	default:
		return ownvalue.New(value.OwnNone(), cell.NoAutoWrite), nil
	}
}

// ParseRValueString parses a single value literal standing alone on the
// right-hand side of a program assignment, reusing the path parser's
// own rvalue grammar (quoted string, bare unsigned integer, or bare
// identifier).
func ParseRValueString(s string) (value.OwnValue, error) {
	p := &parser{s: strings.TrimSpace(s)}
	v, err := p.parseRValue()
	if err != nil {
		return value.OwnValue{}, err
	}
	p.skipSpace()
	if !p.atEnd() {
		return value.OwnValue{}, herr.UserErrf("unexpected trailing input in value: %q", p.s[p.pos:])
	}
	return v, nil
}
