// Package xml implements the xml interpretation on stdlib encoding/xml;
// no repository in the example corpus imports a third-party XML parser,
// so stdlib is the idiomatic choice rather than a gap. Unlike json/yaml/
// toml, XML genuinely needs two distinct child relations (sub elements
// vs attributes), so it is not built on the generic dyntree model.
package xml

import (
	"bytes"
	"io"
	"os"
	"strings"

	goxml "encoding/xml"

	"treenav/internal/backend/fs"
	"treenav/internal/cell"
	"treenav/internal/elevreg"
	"treenav/internal/herr"
	"treenav/internal/value"
)

func init() {
	elevreg.Register([]string{"fs", "value"}, []string{"xml"}, construct)
}

func construct(source cell.Cell, target string, params elevreg.Params) (cell.Cell, error) {
	raw, err := rawContent(source)
	if err != nil {
		return cell.Cell{}, err
	}
	doc, err := parse(raw)
	if err != nil {
		return cell.Cell{}, herr.InvalidFormatErr("failed to parse xml document", err)
	}
	r := &root{doc: doc}
	b := &elemBackend{root: r, path: nil}
	dom := cell.NewElevatedDomain(cell.NoAutoWrite, source)
	dom.SetRoot(b)
	r.dom = dom
	return cell.New(b, dom), nil
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
	return nil, herr.UserErr("xml elevation requires a string, byte, or fs-backed source")
}

type attr struct {
	name, value string
}

type elem struct {
	tag      string
	attrs    []attr
	children []*elem
	text     string
	hasText  bool
	cdata    []byte
	hasCDATA bool
}

func parse(raw []byte) (*elem, error) {
	dec := goxml.NewDecoder(bytes.NewReader(raw))
	var root *elem
	var stack []*elem
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		switch t := tok.(type) {
		case goxml.StartElement:
			e := &elem{tag: t.Name.Local}
			for _, a := range t.Attr {
				e.attrs = append(e.attrs, attr{name: a.Name.Local, value: a.Value})
			}
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.children = append(top.children, e)
			} else {
				root = e
			}
			stack = append(stack, e)
		case goxml.EndElement:
			stack = stack[:len(stack)-1]
		case goxml.CharData:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			if top.hasText {
				top.text += string(t)
			} else {
				top.text = string(t)
				top.hasText = true
			}
		case goxml.Directive:
			// ignored
		}
	}
	if root == nil {
		return nil, herr.InvalidFormatErr("xml document has no root element", nil)
	}
	return root, nil
}

// renderElem writes e and its subtree as XML text.
func renderElem(e *elem, buf *bytes.Buffer) {
	buf.WriteString("<" + e.tag)
	for _, a := range e.attrs {
		buf.WriteString(" " + a.name + `="`)
		escAttr(buf, a.value)
		buf.WriteString(`"`)
	}
	if !e.hasText && !e.hasCDATA && len(e.children) == 0 {
		buf.WriteString("/>")
		return
	}
	buf.WriteString(">")
	if e.hasCDATA {
		buf.WriteString("<![CDATA[")
		buf.Write(e.cdata)
		buf.WriteString("]]>")
	} else if e.hasText && len(e.children) == 0 {
		escText(buf, e.text)
	}
	for _, c := range e.children {
		renderElem(c, buf)
	}
	buf.WriteString("</" + e.tag + ">")
}

func escAttr(buf *bytes.Buffer, s string) {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	buf.WriteString(s)
}

func escText(buf *bytes.Buffer, s string) {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	buf.WriteString(s)
}

type root struct {
	guard cell.Guard
	doc   *elem
	dom   *cell.Domain
}

func (r *root) at(path []int) (*elem, error) {
	cur := r.doc
	for _, i := range path {
		if i < 0 || i >= len(cur.children) {
			return nil, herr.NoRes("xml child index out of range")
		}
		cur = cur.children[i]
	}
	return cur, nil
}

type elemBackend struct {
	root *root
	path []int
}

func (b *elemBackend) Interpretation() string { return "xml" }

func (b *elemBackend) Read() (cell.Reader, error) { return &elemReader{b: b}, nil }
func (b *elemBackend) Write() (cell.Writer, error) { return &elemWriter{b: b}, nil }

func (b *elemBackend) Sub() (cell.Group, error) {
	e, err := b.root.at(b.path)
	if err != nil {
		return nil, err
	}
	return &subGroup{root: b.root, parentPath: b.path, parent: e}, nil
}

func (b *elemBackend) Attr() (cell.Group, error) {
	e, err := b.root.at(b.path)
	if err != nil {
		return nil, err
	}
	return &attrGroup{root: b.root, elemPath: b.path, elem: e}, nil
}

func (b *elemBackend) Head() (cell.Cell, cell.Relation, error) {
	if len(b.path) == 0 {
		return cell.Cell{}, 0, herr.NoRes("domain root has no parent within this document")
	}
	parentPath := b.path[:len(b.path)-1]
	return cell.New(&elemBackend{root: b.root, path: parentPath}, b.root.dom), cell.Sub, nil
}

type elemReader struct{ b *elemBackend }

func (r *elemReader) Type() (string, error) { return "element", nil }

func (r *elemReader) Index() (uint64, error) {
	if len(r.b.path) == 0 {
		return 0, herr.NoRes("root element has no index")
	}
	return uint64(r.b.path[len(r.b.path)-1]), nil
}

func (r *elemReader) Label() (string, error) {
	e, err := r.b.root.at(r.b.path)
	if err != nil {
		return "", err
	}
	return e.tag, nil
}

func (r *elemReader) Value() (value.Value, error) {
	e, err := r.b.root.at(r.b.path)
	if err != nil {
		return value.Value{}, err
	}
	if e.hasCDATA {
		return value.Bytes(e.cdata), nil
	}
	// Text is exposed as this element's value only when it is the sole
	// text child (no sub-elements), per the spec's XML serialization
	// contract.
	if e.hasText && len(e.children) == 0 {
		return value.Str(e.text), nil
	}
	return value.Value{}, herr.NoRes("element has no scalar text value")
}

func (r *elemReader) Serial() (value.Value, error) {
	e, err := r.b.root.at(r.b.path)
	if err != nil {
		return value.Value{}, err
	}
	var buf bytes.Buffer
	renderElem(e, &buf)
	return value.Str(buf.String()), nil
}

type elemWriter struct{ b *elemBackend }

func (w *elemWriter) SetValue(v value.OwnValue) error {
	e, err := w.b.root.at(w.b.path)
	if err != nil {
		return err
	}
	av := v.AsValue()
	if by, ok := av.AsBytes(); ok {
		e.cdata, e.hasCDATA = by, true
		return nil
	}
	s, ok := av.AsStr()
	if !ok {
		return herr.UserErr("xml element values must be string or bytes")
	}
	e.text, e.hasText = s, true
	return nil
}

func (w *elemWriter) SetLabel(s string) error {
	e, err := w.b.root.at(w.b.path)
	if err != nil {
		return err
	}
	e.tag = s
	return nil
}

func (w *elemWriter) SetIndex(i uint64) error {
	return herr.ReadOnlyErr("reordering xml siblings by index write is not supported")
}

type subGroup struct {
	root       *root
	parentPath []int
	parent     *elem
}

func (g *subGroup) LabelType() cell.LabelType {
	return cell.LabelType{Indexed: true, UniqueLabels: false}
}

func (g *subGroup) Len() (int, error) { return len(g.parent.children), nil }

func (g *subGroup) At(i int) (cell.Cell, error) {
	if i < 0 {
		i += len(g.parent.children)
	}
	if i < 0 || i >= len(g.parent.children) {
		return cell.Cell{}, herr.NoRes("xml child index out of range")
	}
	np := append(append([]int(nil), g.parentPath...), i)
	return cell.New(&elemBackend{root: g.root, path: np}, g.root.dom), nil
}

func (g *subGroup) GetAll(label string) (cell.CellIterator, error) {
	var cells []cell.Cell
	for i, c := range g.parent.children {
		if c.tag == label {
			np := append(append([]int(nil), g.parentPath...), i)
			cells = append(cells, cell.New(&elemBackend{root: g.root, path: np}, g.root.dom))
		}
	}
	return &sliceIter{cells: cells}, nil
}

func (g *subGroup) Create(label *string, v *value.OwnValue) (cell.Cell, error) {
	if label == nil {
		return cell.Cell{}, herr.UserErr("xml elements require a tag name")
	}
	e := &elem{tag: *label}
	if v != nil {
		if s, ok := v.AsValue().AsStr(); ok {
			e.text, e.hasText = s, true
		}
	}
	g.parent.children = append(g.parent.children, e)
	idx := len(g.parent.children) - 1
	np := append(append([]int(nil), g.parentPath...), idx)
	return cell.New(&elemBackend{root: g.root, path: np}, g.root.dom), nil
}

type attrGroup struct {
	root     *root
	elemPath []int
	elem     *elem
}

func (g *attrGroup) LabelType() cell.LabelType {
	return cell.LabelType{Indexed: true, UniqueLabels: true}
}

func (g *attrGroup) Len() (int, error) { return len(g.elem.attrs), nil }

func (g *attrGroup) At(i int) (cell.Cell, error) {
	if i < 0 {
		i += len(g.elem.attrs)
	}
	if i < 0 || i >= len(g.elem.attrs) {
		return cell.Cell{}, herr.NoRes("xml attribute index out of range")
	}
	return cell.New(&attrBackend{root: g.root, elemPath: g.elemPath, idx: i}, g.root.dom), nil
}

func (g *attrGroup) GetAll(label string) (cell.CellIterator, error) {
	for i, a := range g.elem.attrs {
		if a.name == label {
			return &sliceIter{cells: []cell.Cell{cell.New(&attrBackend{root: g.root, elemPath: g.elemPath, idx: i}, g.root.dom)}}, nil
		}
	}
	return &sliceIter{}, nil
}

func (g *attrGroup) Create(label *string, v *value.OwnValue) (cell.Cell, error) {
	if label == nil {
		return cell.Cell{}, herr.UserErr("xml attributes require a name")
	}
	var s string
	if v != nil {
		s, _ = v.AsValue().AsStr()
	}
	g.elem.attrs = append(g.elem.attrs, attr{name: *label, value: s})
	idx := len(g.elem.attrs) - 1
	return cell.New(&attrBackend{root: g.root, elemPath: g.elemPath, idx: idx}, g.root.dom), nil
}

type attrBackend struct {
	root     *root
	elemPath []int
	idx      int
}

func (b *attrBackend) Interpretation() string { return "xml" }

func (b *attrBackend) Read() (cell.Reader, error) { return &attrReader{b: b}, nil }
func (b *attrBackend) Write() (cell.Writer, error) { return &attrWriter{b: b}, nil }

func (b *attrBackend) Sub() (cell.Group, error) {
	return nil, herr.NoRes("xml attributes have no sub children")
}

func (b *attrBackend) Attr() (cell.Group, error) {
	return nil, herr.NoRes("xml attributes have no attributes of their own")
}

func (b *attrBackend) Head() (cell.Cell, cell.Relation, error) {
	return cell.New(&elemBackend{root: b.root, path: b.elemPath}, b.root.dom), cell.Attr, nil
}

func (b *attrBackend) get() (*attr, error) {
	e, err := b.root.at(b.elemPath)
	if err != nil {
		return nil, err
	}
	if b.idx < 0 || b.idx >= len(e.attrs) {
		return nil, herr.NoRes("xml attribute index out of range")
	}
	return &e.attrs[b.idx], nil
}

type attrReader struct{ b *attrBackend }

func (r *attrReader) Type() (string, error) { return "attribute", nil }
func (r *attrReader) Index() (uint64, error) { return uint64(r.b.idx), nil }

func (r *attrReader) Label() (string, error) {
	a, err := r.b.get()
	if err != nil {
		return "", err
	}
	return a.name, nil
}

func (r *attrReader) Value() (value.Value, error) {
	a, err := r.b.get()
	if err != nil {
		return value.Value{}, err
	}
	return value.Str(a.value), nil
}

func (r *attrReader) Serial() (value.Value, error) { return r.Value() }

type attrWriter struct{ b *attrBackend }

func (w *attrWriter) SetValue(v value.OwnValue) error {
	a, err := w.b.get()
	if err != nil {
		return err
	}
	s, ok := v.AsValue().AsStr()
	if !ok {
		return herr.UserErr("xml attribute values must be strings")
	}
	a.value = s
	return nil
}

func (w *attrWriter) SetLabel(s string) error {
	a, err := w.b.get()
	if err != nil {
		return err
	}
	a.name = s
	return nil
}

func (w *attrWriter) SetIndex(i uint64) error {
	return herr.ReadOnlyErr("reordering xml attributes by index write is not supported")
}

type sliceIter struct {
	cells []cell.Cell
	pos   int
}

func (s *sliceIter) Next() (cell.Cell, bool) {
	if s.pos >= len(s.cells) {
		return cell.Cell{}, false
	}
	c := s.cells[s.pos]
	s.pos++
	return c, true
}
