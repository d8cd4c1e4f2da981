// Package treesitter implements the treesitter interpretation family: a
// string or file value elevates, given a language name, into a navigable
// syntax tree. Grounded on go-tree-sitter usage in
// internal/world/ast_treesitter.go, reusing its SetLanguage/ParseCtx
// pattern; node shaping (the grammar's node kind as the type, anonymous
// tokens whose kind is their own text typed as "literal", unnamed
// children skipped) follows original_source's treesitter.rs since the
// spec leaves tree shape to "whatever the grammar naturally produces."
// Grammar field names are not used.
package treesitter

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"treenav/internal/cell"
	"treenav/internal/elevreg"
	"treenav/internal/herr"
	"treenav/internal/value"
)

func init() {
	langs := []string{"go", "python", "javascript", "typescript", "rust"}
	elevreg.Register([]string{"value", "file"}, langs, construct)
}

func language(name string) *sitter.Language {
	switch name {
	case "go":
		return golang.GetLanguage()
	case "python":
		return python.GetLanguage()
	case "javascript":
		return javascript.GetLanguage()
	case "typescript":
		return typescript.GetLanguage()
	case "rust":
		return rust.GetLanguage()
	default:
		return nil
	}
}

func construct(source cell.Cell, target string, params elevreg.Params) (cell.Cell, error) {
	lang := language(target)
	if lang == nil {
		return cell.Cell{}, herr.UserErr("unsupported treesitter language: " + target)
	}
	reader, err := source.Read()
	if err != nil {
		return cell.Cell{}, err
	}
	v, err := reader.Value()
	if err != nil {
		return cell.Cell{}, err
	}
	src, ok := v.AsStr()
	if !ok {
		return cell.Cell{}, herr.UserErr("treesitter elevation requires a string source")
	}
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		return cell.Cell{}, herr.InvalidFormatErr("treesitter parse failed", err)
	}
	root := shape(tree.RootNode(), []byte(src))
	b := &backend{lang: target, node: root}
	dom := cell.NewElevatedDomain(cell.ReadOnly, source)
	dom.SetRoot(b)
	b.dom = dom
	return cell.New(b, dom), nil
}

// node is the shaped tree we actually navigate: every node's type is the
// grammar's node kind ("literal" when that kind equals the node's own
// text), only named children are kept, and leaf/unnamed nodes carry their
// source text as a value.
type node struct {
	typ   string
	value string
	hasV  bool
	subs  []*node
}

func shape(n *sitter.Node, src []byte) *node {
	typ := n.Type()
	text := n.Content(src)
	if typ == text {
		typ = "literal"
	}

	out := &node{typ: typ}
	if !n.IsNamed() || n.NamedChildCount() == 0 {
		out.value = text
		out.hasV = true
		return out
	}

	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		out.subs = append(out.subs, shape(child, src))
	}
	return out
}

type backend struct {
	lang string
	node *node
	dom  *cell.Domain
}

func (b *backend) Interpretation() string { return b.lang }

func (b *backend) Read() (cell.Reader, error) { return &reader{n: b.node}, nil }

func (b *backend) Write() (cell.Writer, error) {
	return nil, herr.ReadOnlyErr("treesitter trees are read-only")
}

func (b *backend) Sub() (cell.Group, error) {
	if len(b.node.subs) == 0 {
		return nil, herr.NoRes("leaf node has no sub children")
	}
	return &group{dom: b.dom, nodes: b.node.subs}, nil
}

func (b *backend) Attr() (cell.Group, error) {
	return nil, herr.NoRes("treesitter has no attribute relation")
}

func (b *backend) Head() (cell.Cell, cell.Relation, error) {
	return cell.Cell{}, 0, herr.NoRes("treesitter tree is a domain root")
}

type reader struct{ n *node }

func (r *reader) Type() (string, error)  { return r.n.typ, nil }
func (r *reader) Index() (uint64, error) { return 0, herr.NoRes("treesitter root has no index") }
func (r *reader) Label() (string, error) { return "", herr.NoRes("treesitter nodes have no label") }
func (r *reader) Value() (value.Value, error) {
	if !r.n.hasV {
		return value.Value{}, herr.NoRes("non-leaf node has no scalar value")
	}
	return value.Str(r.n.value), nil
}
func (r *reader) Serial() (value.Value, error) {
	return value.Value{}, herr.NoRes("treesitter trees do not support write-back")
}

type group struct {
	dom   *cell.Domain
	nodes []*node
}

func (g *group) LabelType() cell.LabelType {
	return cell.LabelType{Indexed: true, UniqueLabels: false}
}

func (g *group) Len() (int, error) { return len(g.nodes), nil }

func (g *group) At(i int) (cell.Cell, error) {
	if i < 0 {
		i += len(g.nodes)
	}
	if i < 0 || i >= len(g.nodes) {
		return cell.Cell{}, herr.NoRes("tree node index out of range")
	}
	return cell.New(&nodeBackend{dom: g.dom, n: g.nodes[i]}, g.dom), nil
}

func (g *group) GetAll(label string) (cell.CellIterator, error) {
	for _, n := range g.nodes {
		if n.typ == label {
			return &oneIter{c: cell.New(&nodeBackend{dom: g.dom, n: n}, g.dom), has: true}, nil
		}
	}
	return &oneIter{}, nil
}

func (g *group) Create(label *string, v *value.OwnValue) (cell.Cell, error) {
	return cell.Cell{}, herr.ReadOnlyErr("treesitter trees do not support creating new nodes")
}

type nodeBackend struct {
	dom *cell.Domain
	n   *node
}

func (b *nodeBackend) Interpretation() string { return "ast" }
func (b *nodeBackend) Read() (cell.Reader, error) { return &reader{n: b.n}, nil }
func (b *nodeBackend) Write() (cell.Writer, error) {
	return nil, herr.ReadOnlyErr("treesitter trees are read-only")
}
func (b *nodeBackend) Sub() (cell.Group, error) {
	if len(b.n.subs) == 0 {
		return nil, herr.NoRes("leaf node has no sub children")
	}
	return &group{dom: b.dom, nodes: b.n.subs}, nil
}
func (b *nodeBackend) Attr() (cell.Group, error) {
	return nil, herr.NoRes("treesitter has no attribute relation")
}
func (b *nodeBackend) Head() (cell.Cell, cell.Relation, error) {
	return cell.Cell{}, 0, herr.NoRes("treesitter node head navigation is not tracked")
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
