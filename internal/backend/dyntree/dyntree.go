// Package dyntree is the shared tree-shaped backend used by json, yaml
// and toml: all three parse into a generic map[string]any / []any /
// scalar tree and only differ in how they (un)marshal bytes and detect a
// formatting hint to round-trip on write-back. Grounded on the shape of
// the original's per-format interpretation modules (json.rs/yaml.rs/
// toml.rs), which are themselves thin wrappers over one generic JSON-like
// value tree.
package dyntree

import (
	"sort"

	"treenav/internal/cell"
	"treenav/internal/herr"
	"treenav/internal/value"
)

// Codec adapts a concrete text format (JSON/YAML/TOML) to the generic
// dynamic tree.
type Codec interface {
	Interpretation() string
	Unmarshal(raw []byte) (any, error)
	// Marshal serializes v back to text, given the formatting hint
	// DetectHint produced at parse time.
	Marshal(v any, hint string) ([]byte, error)
	DetectHint(raw []byte) string
}

type root struct {
	guard cell.Guard
	codec Codec
	data  any
	hint  string
	dom   *cell.Domain
}

// New parses raw with codec and returns the root cell of the resulting
// tree, elevated from origin with the given write policy.
func New(raw []byte, codec Codec, policy cell.WritePolicy, origin cell.Cell) (cell.Cell, error) {
	data, err := codec.Unmarshal(raw)
	if err != nil {
		return cell.Cell{}, herr.InvalidFormatErr("failed to parse "+codec.Interpretation()+" document", err)
	}
	r := &root{codec: codec, data: data, hint: codec.DetectHint(raw)}
	b := &backend{root: r, path: nil}
	dom := cell.NewElevatedDomain(policy, origin)
	dom.SetRoot(b)
	r.dom = dom
	return cell.New(b, dom), nil
}

// NewDetached builds a root with no elevation origin, used for tests
// that construct a tree directly from in-memory data.
func NewDetached(data any, codec Codec, policy cell.WritePolicy) cell.Cell {
	r := &root{codec: codec, data: data}
	b := &backend{root: r, path: nil}
	dom := cell.NewDomain(policy)
	dom.SetRoot(b)
	r.dom = dom
	return cell.New(b, dom)
}

type backend struct {
	root *root
	path []any // []string|int segments from the tree root to this node
	// label/index as reached from the immediate parent, for Head()/Label()/Index()
	label    string
	hasLabel bool
	index    int
	hasIndex bool
}

func (b *backend) Interpretation() string { return b.root.codec.Interpretation() }

func (b *backend) current() (any, error) {
	cur := b.root.data
	for _, seg := range b.path {
		switch s := seg.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, herr.Internal("path segment expected an object")
			}
			v, ok := m[s]
			if !ok {
				return nil, herr.NoRes("key not found: " + s)
			}
			cur = v
		case int:
			arr, ok := cur.([]any)
			if !ok {
				return nil, herr.Internal("path segment expected an array")
			}
			if s < 0 || s >= len(arr) {
				return nil, herr.NoRes("index out of range")
			}
			cur = arr[s]
		}
	}
	return cur, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case float64, int, int64:
		return "number"
	case string:
		return "string"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return "unknown"
	}
}

func (b *backend) Read() (cell.Reader, error) {
	release, err := b.root.guard.RLock()
	if err != nil {
		return nil, err
	}
	release()
	return &reader{b: b}, nil
}

func (b *backend) Write() (cell.Writer, error) {
	release, err := b.root.guard.Lock()
	if err != nil {
		return nil, err
	}
	release()
	return &writer{b: b}, nil
}

func (b *backend) Sub() (cell.Group, error) {
	cur, err := b.current()
	if err != nil {
		return nil, err
	}
	switch v := cur.(type) {
	case map[string]any:
		return &objGroup{b: b, obj: v}, nil
	case []any:
		return &arrGroup{b: b, arr: v}, nil
	default:
		return nil, herr.NoRes("scalar nodes have no sub children")
	}
}

func (b *backend) Attr() (cell.Group, error) {
	return nil, herr.NoRes(b.Interpretation() + " has no attribute relation")
}

func (b *backend) Head() (cell.Cell, cell.Relation, error) {
	if len(b.path) == 0 {
		return cell.Cell{}, 0, herr.NoRes("domain root has no parent within this tree")
	}
	parentPath := b.path[:len(b.path)-1]
	parent := &backend{root: b.root, path: parentPath}
	return cell.New(parent, b.root.dom), cell.Sub, nil
}

func (b *backend) child(seg any) *backend {
	np := make([]any, len(b.path)+1)
	copy(np, b.path)
	np[len(b.path)] = seg
	c := &backend{root: b.root, path: np}
	if s, ok := seg.(string); ok {
		c.label, c.hasLabel = s, true
	}
	if i, ok := seg.(int); ok {
		c.index, c.hasIndex = i, true
	}
	return c
}

type reader struct{ b *backend }

func (r *reader) Type() (string, error) {
	cur, err := r.b.current()
	if err != nil {
		return "", err
	}
	return typeName(cur), nil
}

func (r *reader) Index() (uint64, error) {
	if !r.b.hasIndex {
		return 0, herr.NoRes("node was not reached by array index")
	}
	return uint64(r.b.index), nil
}

func (r *reader) Label() (string, error) {
	if !r.b.hasLabel {
		return "", herr.NoRes("node was not reached by object key")
	}
	return r.b.label, nil
}

func (r *reader) Value() (value.Value, error) {
	cur, err := r.b.current()
	if err != nil {
		return value.Value{}, err
	}
	switch v := cur.(type) {
	case nil:
		return value.Value{}, herr.NoRes("null has no scalar value")
	case bool:
		return value.Bool(v), nil
	case int64:
		return value.Int(v, value.I64), nil
	case float64:
		return value.Float(v), nil
	case string:
		return value.Str(v), nil
	default:
		return value.Value{}, herr.NoRes("containers have no scalar value")
	}
}

func (r *reader) Serial() (value.Value, error) {
	cur, err := r.b.current()
	if err != nil {
		return value.Value{}, err
	}
	out, err := r.b.root.codec.Marshal(cur, r.b.root.hint)
	if err != nil {
		return value.Value{}, herr.InvalidFormatErr("failed to serialize "+r.b.Interpretation(), err)
	}
	return value.Str(string(out)), nil
}

type writer struct{ b *backend }

func (w *writer) parentContainer() (any, any, error) {
	if len(w.b.path) == 0 {
		return nil, nil, herr.Internal("cannot replace the tree root in place")
	}
	parentPath := w.b.path[:len(w.b.path)-1]
	pb := &backend{root: w.b.root, path: parentPath}
	cur, err := pb.current()
	if err != nil {
		return nil, nil, err
	}
	return cur, w.b.path[len(w.b.path)-1], nil
}

func (w *writer) replace(newVal any) error {
	if len(w.b.path) == 0 {
		w.b.root.data = newVal
		return nil
	}
	parent, seg, err := w.parentContainer()
	if err != nil {
		return err
	}
	switch s := seg.(type) {
	case string:
		m, ok := parent.(map[string]any)
		if !ok {
			return herr.Internal("expected object parent")
		}
		m[s] = newVal
		return nil
	case int:
		arr, ok := parent.([]any)
		if !ok {
			return herr.Internal("expected array parent")
		}
		arr[s] = newVal
		return nil
	default:
		return herr.Internal("unknown path segment type")
	}
}

func (w *writer) SetValue(v value.OwnValue) error {
	av := v.AsValue()
	var nv any
	switch av.Kind() {
	case value.KindNone:
		nv = nil
	case value.KindBool:
		b, _ := av.AsBool()
		nv = b
	case value.KindFloat:
		f, _ := av.AsFloat()
		nv = f
	case value.KindInt:
		i, _, _ := av.AsInt()
		nv = i
	case value.KindStr:
		s, _ := av.AsStr()
		nv = s
	default:
		return herr.UserErr("unsupported value kind for this format")
	}
	return w.replace(nv)
}

func (w *writer) SetLabel(s string) error {
	if len(w.b.path) == 0 {
		return herr.UserErr("cannot rename the tree root")
	}
	parent, seg, err := w.parentContainer()
	if err != nil {
		return err
	}
	oldKey, ok := seg.(string)
	if !ok {
		return herr.UserErr("only object members can be renamed")
	}
	m, ok := parent.(map[string]any)
	if !ok {
		return herr.Internal("expected object parent")
	}
	v := m[oldKey]
	delete(m, oldKey)
	m[s] = v
	w.b.path[len(w.b.path)-1] = s
	w.b.label = s
	return nil
}

func (w *writer) SetIndex(i uint64) error {
	return herr.ReadOnlyErr("reordering array elements by index write is not supported")
}

type objGroup struct {
	b   *backend
	obj map[string]any
}

func (g *objGroup) LabelType() cell.LabelType {
	return cell.LabelType{Indexed: false, UniqueLabels: true}
}

func (g *objGroup) sortedKeys() []string {
	keys := make([]string, 0, len(g.obj))
	for k := range g.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (g *objGroup) Len() (int, error) { return len(g.obj), nil }

func (g *objGroup) At(i int) (cell.Cell, error) {
	keys := g.sortedKeys()
	if i < 0 {
		i += len(keys)
	}
	if i < 0 || i >= len(keys) {
		return cell.Cell{}, herr.NoRes("object index out of range")
	}
	return cell.New(g.b.child(keys[i]), g.b.root.dom), nil
}

func (g *objGroup) GetAll(label string) (cell.CellIterator, error) {
	if _, ok := g.obj[label]; !ok {
		return &oneShot{}, nil
	}
	return &oneShot{c: cell.New(g.b.child(label), g.b.root.dom), has: true}, nil
}

func (g *objGroup) Create(label *string, v *value.OwnValue) (cell.Cell, error) {
	if label == nil {
		return cell.Cell{}, herr.UserErr("object members require a label")
	}
	var nv any
	if v != nil {
		av := v.AsValue()
		switch av.Kind() {
		case value.KindStr:
			nv, _ = av.AsStr()
		case value.KindFloat:
			nv, _ = av.AsFloat()
		case value.KindBool:
			nv, _ = av.AsBool()
		default:
			nv = nil
		}
	}
	g.obj[*label] = nv
	return cell.New(g.b.child(*label), g.b.root.dom), nil
}

type arrGroup struct {
	b   *backend
	arr []any
}

func (g *arrGroup) LabelType() cell.LabelType {
	return cell.LabelType{Indexed: true, UniqueLabels: false}
}

func (g *arrGroup) Len() (int, error) { return len(g.arr), nil }

func (g *arrGroup) At(i int) (cell.Cell, error) {
	if i < 0 {
		i += len(g.arr)
	}
	if i < 0 || i >= len(g.arr) {
		return cell.Cell{}, herr.NoRes("array index out of range")
	}
	return cell.New(g.b.child(i), g.b.root.dom), nil
}

func (g *arrGroup) GetAll(label string) (cell.CellIterator, error) {
	return &oneShot{}, nil
}

func (g *arrGroup) Create(label *string, v *value.OwnValue) (cell.Cell, error) {
	var nv any
	if v != nil {
		av := v.AsValue()
		switch av.Kind() {
		case value.KindStr:
			nv, _ = av.AsStr()
		case value.KindFloat:
			nv, _ = av.AsFloat()
		case value.KindBool:
			nv, _ = av.AsBool()
		}
	}
	idx := len(g.arr)
	newArr := append(g.arr, nv)
	if err := (&writer{b: g.b}).replace(newArr); err != nil {
		return cell.Cell{}, err
	}
	g.arr = newArr
	return cell.New(g.b.child(idx), g.b.root.dom), nil
}

type oneShot struct {
	c    cell.Cell
	has  bool
	done bool
}

func (o *oneShot) Next() (cell.Cell, bool) {
	if o.done || !o.has {
		return cell.Cell{}, false
	}
	o.done = true
	return o.c, true
}
