// Package program implements the top-level statement language: a
// semicolon-separated list of path statements, each either a bare path
// (printed when run) or an assignment (its left-hand path's matched
// cell is written with the right-hand value). Grounded on
// prog/program.rs and prog/parse_program.rs, generalized from the
// original's single PathWithStart statement to also cover Assignment,
// which its own test suite (tests/program.rs) exercises but its hand
// trimmed-down Statement enum had dropped.
package program

import (
	"strings"

	"treenav/internal/cell"
	"treenav/internal/herr"
	"treenav/internal/logging"
	"treenav/internal/pathlang"
	"treenav/internal/pprint"
	"treenav/internal/value"
)

// Statement is either a bare path (Assign == nil) or an assignment.
type Statement struct {
	Start  pathlang.Start
	Path   pathlang.Path
	Assign *value.OwnValue // nil for a plain path statement
}

func (s Statement) String() string {
	var b strings.Builder
	b.WriteString(startString(s.Start))
	b.WriteString(s.Path.String())
	if s.Assign != nil {
		b.WriteString(" = ")
		b.WriteString(s.Assign.String())
	}
	return b.String()
}

func startString(st pathlang.Start) string {
	switch st.Kind {
	case pathlang.StartURL, pathlang.StartFile:
		return st.Value
	case pathlang.StartString:
		return "'" + st.Value + "'"
	default:
		return ""
	}
}

// Program is a parsed, ready-to-run sequence of statements.
type Program struct {
	Statements []Statement
}

// Params controls how a printed path statement's matched cell is
// rendered; zero values mean "unlimited" for both dimensions.
type Params struct {
	PrintDepth   int
	PrintBreadth int
}

// Parse splits input on top-level ';' separators and parses each
// statement, recognizing a trailing "= rvalue" as an assignment.
func Parse(input string) (Program, error) {
	var stmts []Statement
	for _, raw := range splitStatements(input) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		stmt, err := parseStatement(raw)
		if err != nil {
			return Program{}, err
		}
		stmts = append(stmts, stmt)
	}
	return Program{Statements: stmts}, nil
}

// splitStatements divides on ';' that appear outside of quoted strings,
// since a quoted rvalue or path starter may legitimately contain one.
func splitStatements(input string) []string {
	var parts []string
	var cur strings.Builder
	var quote byte
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case quote != 0:
			cur.WriteByte(c)
			if c == '\\' && i+1 < len(input) {
				i++
				cur.WriteByte(input[i])
				continue
			}
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
			cur.WriteByte(c)
		case c == ';':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if strings.TrimSpace(cur.String()) != "" {
		parts = append(parts, cur.String())
	}
	return parts
}

func parseStatement(raw string) (Statement, error) {
	lhs, rhs, isAssign := splitAssignment(raw)
	start, path, err := pathlang.ParseWithStarter(lhs)
	if err != nil {
		return Statement{}, err
	}
	if !isAssign {
		return Statement{Start: start, Path: path}, nil
	}
	v, err := parseRValue(strings.TrimSpace(rhs))
	if err != nil {
		return Statement{}, err
	}
	return Statement{Start: start, Path: path, Assign: &v}, nil
}

// splitAssignment finds a top-level '=' that is not part of "==" or
// "!=" and not nested inside a '[...]' filter/param bracket.
func splitAssignment(raw string) (lhs, rhs string, ok bool) {
	depth := 0
	var quote byte
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			depth--
		case c == '=' && depth == 0:
			prev := byte(0)
			if i > 0 {
				prev = raw[i-1]
			}
			next := byte(0)
			if i+1 < len(raw) {
				next = raw[i+1]
			}
			if prev == '=' || prev == '!' || next == '=' {
				continue
			}
			return raw[:i], raw[i+1:], true
		}
	}
	return raw, "", false
}

func parseRValue(s string) (value.OwnValue, error) {
	if s == "" {
		return value.OwnValue{}, herr.UserErr("assignment requires a value")
	}
	return pathlang.ParseRValueString(s)
}

// Run evaluates every statement against its own starter cell: path
// statements pretty-print their first match, assignments write into
// it and save the owning domain.
func (p Program) Run(params Params) error {
	for _, stmt := range p.Statements {
		logging.CLI().Debugf("running statement: %s", stmt)
		if err := runStatement(stmt, params); err != nil {
			return err
		}
	}
	return nil
}

func runStatement(stmt Statement, params Params) error {
	root, err := pathlang.EvalStart(stmt.Start)
	if err != nil {
		return err
	}
	searcher := pathlang.NewSearcher(root, stmt.Path)
	matched, ok, err := searcher.Next()
	if err != nil {
		logging.CLI().Errorf("%v", err)
		return nil
	}
	if !ok {
		logging.CLI().Warnf("path search failed, matched: %s", searcher.UnmatchedPath())
		return nil
	}
	if stmt.Assign == nil {
		pprint.Print(matched, params.PrintDepth, params.PrintBreadth)
		return nil
	}
	return assign(matched, *stmt.Assign)
}

func assign(target cell.Cell, v value.OwnValue) error {
	w, err := target.Write()
	if err != nil {
		return err
	}
	if err := w.SetValue(v); err != nil {
		return err
	}
	dom := target.Domain()
	if dom == nil {
		return nil
	}
	return dom.Save()
}
