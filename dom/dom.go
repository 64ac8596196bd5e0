// Package dom provides the live tree that rendering mutates in place: plain
// linked nodes with ordered attributes and the few form-control properties
// that are tracked separately from their attributes.
package dom

import (
	"fmt"
	"io"
	"strings"
)

// NodeType is the type of a Node.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// Attribute is one element attribute. Order is preserved.
type Attribute struct {
	Key, Val string
}

// Node is a single node in a live tree. Its identity (pointer) is what
// rendering uses to reuse nodes across passes.
type Node struct {
	Parent, FirstChild, LastChild, PrevSibling, NextSibling *Node

	Type      NodeType
	Tag       string // element tag, canonical case
	Namespace string // element namespace URI, empty for plain HTML
	Text      string // text node content
	Attr      []Attribute

	// Live form-control state. Interactive controls can diverge from their
	// attribute reflection, so these are properties, not attributes.
	Value    string
	Checked  bool
	Selected bool
}

// NewElement returns a detached element node.
func NewElement(tag, namespace string) *Node {
	return &Node{Type: ElementNode, Tag: tag, Namespace: namespace}
}

// NewText returns a detached text node.
func NewText(text string) *Node {
	return &Node{Type: TextNode, Text: text}
}

// Detach removes n from its parent, if any. The node keeps its children.
func (n *Node) Detach() {
	if n.Parent == nil {
		return
	}
	if n.Parent.FirstChild == n {
		n.Parent.FirstChild = n.NextSibling
	}
	if n.Parent.LastChild == n {
		n.Parent.LastChild = n.PrevSibling
	}
	if n.PrevSibling != nil {
		n.PrevSibling.NextSibling = n.NextSibling
	}
	if n.NextSibling != nil {
		n.NextSibling.PrevSibling = n.PrevSibling
	}
	n.Parent = nil
	n.PrevSibling = nil
	n.NextSibling = nil
}

// AppendChild adds c as the last child of n, detaching it first if needed.
func (n *Node) AppendChild(c *Node) {
	c.Detach()
	c.Parent = n
	c.PrevSibling = n.LastChild
	if n.LastChild != nil {
		n.LastChild.NextSibling = c
	} else {
		n.FirstChild = c
	}
	n.LastChild = c
}

// InsertBefore inserts c as a child of n immediately before ref, detaching c
// first if needed. A nil ref appends.
func (n *Node) InsertBefore(c, ref *Node) {
	if ref == nil {
		n.AppendChild(c)
		return
	}
	if ref.Parent != n {
		panic(fmt.Sprintf("dom: InsertBefore reference is not a child of %s", n.Tag))
	}
	c.Detach()
	c.Parent = n
	c.PrevSibling = ref.PrevSibling
	c.NextSibling = ref
	if ref.PrevSibling != nil {
		ref.PrevSibling.NextSibling = c
	} else {
		n.FirstChild = c
	}
	ref.PrevSibling = c
}

// RemoveChildren detaches every child of n.
func (n *Node) RemoveChildren() {
	for n.FirstChild != nil {
		n.FirstChild.Detach()
	}
}

// AttrVal returns the value of the named attribute and whether it is present.
func (n *Node) AttrVal(key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets the named attribute, updating it in place if present.
func (n *Node) SetAttr(key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, Attribute{Key: key, Val: val})
}

// RemoveAttr removes the named attribute, reporting whether it was present.
func (n *Node) RemoveAttr(key string) bool {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}

// Children returns the node's children as a slice.
func (n *Node) Children() []*Node {
	var kids []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		kids = append(kids, c)
	}
	return kids
}

// voidElements have no closing tag and never hold children.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// String renders the subtree rooted at n as markup. Intended for tests,
// debugging, and server-side output; it is not a browser-exact serializer.
func (n *Node) String() string {
	var b strings.Builder
	n.render(&b)
	return b.String()
}

// Render writes the subtree rooted at n as markup.
func (n *Node) Render(w io.Writer) error {
	var b strings.Builder
	n.render(&b)
	_, err := io.WriteString(w, b.String())
	return err
}

func (n *Node) render(b *strings.Builder) {
	if n.Type == TextNode {
		b.WriteString(escapeText(n.Text))
		return
	}
	b.WriteByte('<')
	b.WriteString(n.Tag)
	for _, a := range n.Attr {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		if a.Val != "" {
			b.WriteString(`="`)
			b.WriteString(escapeAttr(a.Val))
			b.WriteByte('"')
		}
	}
	b.WriteByte('>')
	if voidElements[n.Tag] && n.FirstChild == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		c.render(b)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
