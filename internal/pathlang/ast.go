// Package pathlang implements the path language: its AST, a hand-rolled
// recursive-descent parser, and the DFS searcher that walks a cell tree
// against a parsed path. Grounded on original_source's prog/path.rs for
// the AST shape and prog/searcher.rs for matching semantics; the parser
// itself is hand-rolled rather than built on a declarative grammar
// library (see DESIGN.md) since path, filter and elevation-parameter
// syntax nest arbitrarily and recursively embed a full sub-path inside a
// filter's ternary left-hand side.
package pathlang

import (
	"strconv"
	"strings"

	"treenav/internal/cell"
	"treenav/internal/value"
)

// Path is a parsed sequence of path items, evaluated left to right
// against successive match frontiers by the Searcher.
type Path struct {
	Items []Item
}

func (p Path) String() string {
	var b strings.Builder
	for _, it := range p.Items {
		b.WriteString(it.String())
	}
	return b.String()
}

// Start describes how a path's leading segment resolves into a starting
// cell, before any Items are applied.
type Start struct {
	Kind  StartKind
	Value string
}

type StartKind int

const (
	StartNone StartKind = iota
	StartURL
	StartFile
	StartString
)

// Selector names what a normal path item's children are matched against:
// a literal label, or the wildcard/double-wildcard operators.
type Selector struct {
	Kind  SelectorKind
	Label string
}

type SelectorKind int

const (
	SelNone SelectorKind = iota
	SelLabel
	SelStar
	SelDoubleStar
)

func (s Selector) String() string {
	switch s.Kind {
	case SelStar:
		return "*"
	case SelDoubleStar:
		return "**"
	case SelLabel:
		return s.Label
	default:
		return ""
	}
}

// Item is either an ElevationItem or a NormalItem.
type Item interface {
	String() string
	isItem()
}

// Param is one bracketed argument to an elevation item, e.g. the
// "pattern" in ^regex["pattern"] or the positional w in ^fs[w].
type Param struct {
	Name  string // empty if positional
	Value value.OwnValue
}

func (p Param) String() string {
	if p.Name != "" {
		return p.Name + "=" + p.Value.String()
	}
	return p.Value.String()
}

// ElevationItem carries an interpretation target and its parameters; an
// empty Target means "auto-detect", matching a bare "^".
type ElevationItem struct {
	Target string
	Params []Param
}

func (e ElevationItem) isItem() {}
func (e ElevationItem) String() string {
	var b strings.Builder
	b.WriteString("^")
	b.WriteString(e.Target)
	for _, p := range e.Params {
		b.WriteString("[")
		b.WriteString(p.String())
		b.WriteString("]")
	}
	return b.String()
}

// NormalItem navigates one relation step: sub, attr or field.
type NormalItem struct {
	Relation cell.Relation
	Selector *Selector // nil means "no selector, index required"
	Index    *int64    // nil means "no explicit index"
	Filters  []Filter
}

func (n NormalItem) isItem() {}
func (n NormalItem) String() string {
	var b strings.Builder
	b.WriteByte(byte(n.Relation))
	if n.Selector != nil {
		b.WriteString(n.Selector.String())
	}
	if n.Index != nil {
		b.WriteString("[")
		b.WriteString(strconv.FormatInt(*n.Index, 10))
		b.WriteString("]")
	}
	for _, f := range n.Filters {
		b.WriteString(f.String())
	}
	return b.String()
}

// Filter wraps one bracketed expression in a NormalItem's filter list.
type Filter struct {
	Expr Expression
}

func (f Filter) String() string { return "[" + f.Expr.String() + "]" }

// Expression is one of Ternary, TypeExpr or Or.
type Expression interface {
	String() string
	isExpression()
}

// Ternary evaluates Left as a sub-search from the current cell; with no
// Op it is true iff any result exists, otherwise it is true iff some
// result's value compares against Right using Op ("==" or "!=").
type Ternary struct {
	Left  Path
	Op    string // "" if bare existence test
	Right value.OwnValue
}

func (t Ternary) isExpression() {}
func (t Ternary) String() string {
	if t.Op == "" {
		return t.Left.String()
	}
	return t.Left.String() + t.Op + t.Right.String()
}

// TypeExpr is the ":ident" filter form, true iff the cell's type matches.
type TypeExpr struct {
	Type string
}

func (t TypeExpr) isExpression() {}
func (t TypeExpr) String() string { return ":" + t.Type }

// Or is a pipe-joined disjunction of alternatives, short-circuiting true.
type Or struct {
	Alternatives []Expression
}

func (o Or) isExpression() {}
func (o Or) String() string {
	parts := make([]string, len(o.Alternatives))
	for i, a := range o.Alternatives {
		parts[i] = a.String()
	}
	return strings.Join(parts, "|")
}
