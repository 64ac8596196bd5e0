// Package render replays a compiled template's call sequence against a live
// tree, mutating it in place. Nodes are reused whenever their recorded
// position and identity keys match the incoming call; there is no virtual
// tree and no second representation of the document.
package render

import (
	"fmt"

	"github.com/htxgo/htx/dom"
)

// Delegate is a value that produces a node by running its own complete render
// pass. A delegate owns its renderer and key space; from the enclosing pass's
// view it is a single node.
type Delegate interface {
	Render() *dom.Node
}

// RenderFunc replays one template pass against a renderer: a Node call per
// element or text slot, Close calls bounding child scopes. Compiled
// templates are one source of these; Go code may drive a renderer directly.
type RenderFunc func(*Renderer)

// Stats counts the tree mutations of one or more passes. Tests use it to
// assert reuse: an unchanged re-render performs zero writes.
type Stats struct {
	Elements   int // elements created
	Texts      int // text nodes created
	Moves      int // keyed nodes relocated
	Removes    int // subtrees removed
	AttrWrites int // attribute writes and removals
	PropWrites int // live property writes
	TextWrites int // text content rewrites
}

// Renderer binds to exactly one live root and replays passes against it. It
// is not safe for concurrent use; a pass must run to completion before the
// next begins.
type Renderer struct {
	root    *dom.Node
	current *dom.Node
	parent  *dom.Node
	keys    map[*dom.Node]nodeKey
	prev    map[indexKey]*dom.Node // identity index from the previous pass
	index   map[indexKey]*dom.Node // identity index built by this pass
	stats   Stats
}

// nodeKey is the non-owning association from a live node to the position and
// identity it was rendered under.
type nodeKey struct {
	pos   int
	id    string
	keyed bool
}

type indexKey struct {
	pos int
	id  string
}

// New returns a renderer with no root. The first pass's root call attaches
// one.
func New() *Renderer {
	return &Renderer{keys: make(map[*dom.Node]nodeKey)}
}

// Root returns the settled root node, or nil before the first pass.
func (r *Renderer) Root() *dom.Node {
	return r.root
}

// Stats returns the mutation counters accumulated since the last reset.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// ResetStats zeroes the mutation counters.
func (r *Renderer) ResetStats() {
	r.stats = Stats{}
}

// Node advances the walk by one node. The last argument is the packed
// position key; an odd argument before it is the identity key; the rest are
// attribute name/value pairs. value is the tag for an element call, the
// content for a text call, a *dom.Node passed through as-is, or a Delegate.
func (r *Renderer) Node(value interface{}, args ...interface{}) {
	packed, attrs, identity, keyed := splitArgs(args)
	var pos = packed >> KeyShift
	var flags = packed & (1<<KeyShift - 1)

	if pos == 1 {
		// A new pass begins: the identity index starts over.
		r.index = make(map[indexKey]*dom.Node)
		r.current = nil
		r.parent = nil
	}

	// The expected occupant of this call's slot.
	var target *dom.Node
	switch {
	case pos == 1:
		target = r.root
	case r.current == r.parent:
		target = r.parent.FirstChild
	default:
		target = r.current.NextSibling
	}

	// Nodes recorded under smaller positions are stale: their template
	// locations have already been passed this pass.
	for target != nil && r.keys[target].pos < pos {
		var next = target.NextSibling
		r.remove(target)
		target = next
	}

	var node *dom.Node
	if target != nil {
		var k = r.keys[target]
		if k.pos == pos && k.keyed == keyed && k.id == identity {
			node = target
		}
	}

	// A matched slot holding a different foreign node is not a match: the
	// caller's node is the node.
	if fn, ok := value.(*dom.Node); ok && node != nil && node != fn {
		node = nil
	}

	// No exact match: a keyed call may reclaim the node this identity had
	// last pass, wherever it sits now.
	if node == nil && keyed {
		if moved, ok := r.prev[indexKey{pos, identity}]; ok {
			node = moved
			r.keys[node] = nodeKey{pos: pos, id: identity, keyed: keyed}
			r.stats.Moves++
		}
	}

	var created = false
	if node == nil {
		node = r.construct(value, flags, attrs)
		created = true
		r.keys[node] = nodeKey{pos: pos, id: identity, keyed: keyed}
	}

	// In-place text matches refresh their content only when it changed.
	if !created && flags&FlagElement == 0 && node.Type == dom.TextNode {
		if _, foreign := value.(*dom.Node); !foreign {
			if _, delegate := value.(Delegate); !delegate {
				var text = stringify(value)
				if node.Text != text {
					node.Text = text
					r.stats.TextWrites++
				}
			}
		}
	}

	if node != target {
		if pos == 1 {
			if target != nil {
				r.remove(target)
			}
		} else {
			r.parent.InsertBefore(node, target)
		}
	}
	if pos == 1 {
		r.root = node
	}

	if flags&FlagElement != 0 {
		r.applyAttrs(node, attrs)
	}

	r.current = node
	if keyed {
		r.index[indexKey{pos, identity}] = node
	}
	if flags&FlagElement != 0 && flags&FlagChildless == 0 {
		r.parent = node
		return
	}
	if pos == 1 {
		// A childless root is a complete pass on its own.
		r.settle()
	}
}

// Close ends count open element scopes (default one), removing whatever
// trailing nodes the pass did not walk.
func (r *Renderer) Close(count ...int) {
	var n = 1
	if len(count) > 0 {
		n = count[0]
	}
	for ; n > 0; n-- {
		if r.current == r.parent {
			// Nothing was walked into this scope; whatever it holds
			// is from an earlier, larger render.
			for r.parent.FirstChild != nil {
				r.remove(r.parent.FirstChild)
			}
		} else {
			for r.current.NextSibling != nil {
				r.remove(r.current.NextSibling)
			}
		}
		r.current = r.parent
		r.parent = r.parent.Parent
		if r.keys[r.current].pos == 1 {
			r.settle()
		}
	}
}

// settle ends a pass: the identity index built during it becomes the one the
// next pass consults.
func (r *Renderer) settle() {
	r.prev = r.index
	r.index = nil
	r.parent = nil
}

func (r *Renderer) construct(value interface{}, flags int, attrs []attrPair) *dom.Node {
	switch v := value.(type) {
	case *dom.Node:
		return v
	case Delegate:
		var n = v.Render()
		if n == nil {
			n = dom.NewText("")
		}
		return n
	}
	if flags&FlagElement != 0 {
		r.stats.Elements++
		return dom.NewElement(stringify(value), r.namespace(flags, attrs))
	}
	r.stats.Texts++
	return dom.NewText(stringify(value))
}

// namespace resolves a new element's namespace: an explicit xmlns attribute
// when flagged, the open parent's namespace otherwise.
func (r *Renderer) namespace(flags int, attrs []attrPair) string {
	if flags&FlagNamespace != 0 {
		for _, a := range attrs {
			if a.name == "xmlns" {
				return stringify(a.value)
			}
		}
	}
	if r.parent != nil {
		return r.parent.Namespace
	}
	return ""
}

func (r *Renderer) applyAttrs(n *dom.Node, attrs []attrPair) {
	for _, a := range attrs {
		switch a.name {
		case "value":
			var s = stringify(a.value)
			if n.Value != s {
				n.Value = s
				r.stats.PropWrites++
			}
		case "checked":
			var b = truthy(a.value)
			if n.Checked != b {
				n.Checked = b
				r.stats.PropWrites++
			}
		case "selected":
			var b = truthy(a.value)
			if n.Selected != b {
				n.Selected = b
				r.stats.PropWrites++
			}
		default:
			r.setAttr(n, a.name, a.value)
		}
	}
}

func (r *Renderer) setAttr(n *dom.Node, name string, value interface{}) {
	if value == nil || value == false {
		if n.RemoveAttr(name) {
			r.stats.AttrWrites++
		}
		return
	}
	var s string
	if value == true {
		s = ""
	} else if seq := sequence(name, value); seq != nil {
		s = flatten(seq)
	} else {
		s = stringify(value)
	}
	if cur, ok := n.AttrVal(name); !ok || cur != s {
		n.SetAttr(name, s)
		r.stats.AttrWrites++
	}
}

// sequence returns the elements of a class-like attribute's sequence value,
// or nil when the value is not a sequence.
func sequence(name string, value interface{}) []interface{} {
	if name != "class" {
		return nil
	}
	switch v := value.(type) {
	case []interface{}:
		if v == nil {
			return []interface{}{}
		}
		return v
	case []string:
		var out = make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	}
	return nil
}

// flatten drops falsy entries and space-joins the rest.
func flatten(seq []interface{}) string {
	var out string
	for _, v := range seq {
		if !truthy(v) {
			continue
		}
		if out != "" {
			out += " "
		}
		out += stringify(v)
	}
	return out
}

// remove detaches a subtree and forgets every key recorded under it.
func (r *Renderer) remove(n *dom.Node) {
	n.Detach()
	r.forget(n)
	r.stats.Removes++
}

func (r *Renderer) forget(n *dom.Node) {
	delete(r.keys, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.forget(c)
	}
}

func splitArgs(args []interface{}) (packed int, attrs []attrPair, identity string, keyed bool) {
	if len(args) == 0 {
		panic("render: Node called without a position key")
	}
	packed = toInt(args[len(args)-1])
	var rest = args[:len(args)-1]
	if len(rest)%2 == 1 {
		identity = stringify(rest[len(rest)-1])
		keyed = true
		rest = rest[:len(rest)-1]
	}
	for i := 0; i < len(rest); i += 2 {
		attrs = append(attrs, attrPair{name: stringify(rest[i]), value: rest[i+1]})
	}
	return packed, attrs, identity, keyed
}

type attrPair struct {
	name  string
	value interface{}
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case int32:
		return int(n)
	case uint32:
		return int(n)
	case float64:
		return int(n)
	}
	panic(fmt.Sprintf("render: not a position key: %v (%T)", v, v))
}

// stringify coerces a value the way the template host would: nil renders
// empty, everything else via its natural string form.
func stringify(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		if s {
			return "true"
		}
		return "false"
	}
	return fmt.Sprint(v)
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	}
	return true
}
