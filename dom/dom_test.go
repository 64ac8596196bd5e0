package dom

import (
	"strings"
	"testing"
)

func childTags(n *Node) string {
	var tags []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		tags = append(tags, c.Tag)
	}
	return strings.Join(tags, ",")
}

func TestTreeSurgery(t *testing.T) {
	var parent = NewElement("ul", "")
	var a = NewElement("li", "")
	var b = NewElement("li", "")
	var c = NewElement("li", "")

	parent.AppendChild(a)
	parent.AppendChild(c)
	parent.InsertBefore(b, c)

	if got := childTags(parent); got != "li,li,li" {
		t.Fatalf("expected three children, got %s", got)
	}
	if parent.FirstChild != a || parent.LastChild != c {
		t.Fatal("first/last child links wrong after insert")
	}
	if a.NextSibling != b || b.NextSibling != c || c.PrevSibling != b || b.PrevSibling != a {
		t.Fatal("sibling links wrong after insert")
	}

	// Moving an attached node re-links it rather than duplicating it.
	parent.AppendChild(a)
	if parent.FirstChild != b || parent.LastChild != a {
		t.Fatal("expected a moved to the tail")
	}
	if b.PrevSibling != nil || c.NextSibling != a || a.PrevSibling != c {
		t.Fatal("sibling links wrong after move")
	}

	b.Detach()
	if b.Parent != nil || b.PrevSibling != nil || b.NextSibling != nil {
		t.Fatal("detached node keeps stale links")
	}
	if parent.FirstChild != c {
		t.Fatal("parent links wrong after detach")
	}

	parent.RemoveChildren()
	if parent.FirstChild != nil || parent.LastChild != nil {
		t.Fatal("RemoveChildren left children behind")
	}
	if c.Parent != nil || a.Parent != nil {
		t.Fatal("RemoveChildren left parent links behind")
	}
}

func TestInsertBeforeNilAppends(t *testing.T) {
	var parent = NewElement("div", "")
	var a = NewText("a")
	parent.InsertBefore(a, nil)
	if parent.LastChild != a {
		t.Fatal("InsertBefore with nil ref should append")
	}
}

func TestAttributes(t *testing.T) {
	var n = NewElement("div", "")
	n.SetAttr("class", "crew")
	n.SetAttr("id", "main")
	n.SetAttr("class", "crew-list")

	if val, ok := n.AttrVal("class"); !ok || val != "crew-list" {
		t.Errorf("expected class=crew-list, got %q (present: %v)", val, ok)
	}
	if len(n.Attr) != 2 {
		t.Errorf("expected update in place, got %d attributes", len(n.Attr))
	}
	if n.Attr[0].Key != "class" || n.Attr[1].Key != "id" {
		t.Error("attribute order not preserved")
	}

	if !n.RemoveAttr("id") {
		t.Error("RemoveAttr should report removal of a present attribute")
	}
	if n.RemoveAttr("id") {
		t.Error("RemoveAttr should report absence on second removal")
	}
	if _, ok := n.AttrVal("id"); ok {
		t.Error("id still present after removal")
	}
}

func TestString(t *testing.T) {
	var tests = []struct {
		name string
		node func() *Node
		want string
	}{
		{
			name: "text escaping",
			node: func() *Node { return NewText("a < b & c") },
			want: "a &lt; b &amp; c",
		},
		{
			name: "element with attributes",
			node: func() *Node {
				var n = NewElement("div", "")
				n.SetAttr("class", "crew")
				n.AppendChild(NewText("hi"))
				return n
			},
			want: `<div class="crew">hi</div>`,
		},
		{
			name: "boolean attribute",
			node: func() *Node {
				var n = NewElement("input", "")
				n.SetAttr("disabled", "")
				return n
			},
			want: `<input disabled>`,
		},
		{
			name: "void element",
			node: func() *Node { return NewElement("br", "") },
			want: "<br>",
		},
		{
			name: "nested elements",
			node: func() *Node {
				var ul = NewElement("ul", "")
				var li = NewElement("li", "")
				li.AppendChild(NewText("one"))
				ul.AppendChild(li)
				return ul
			},
			want: "<ul><li>one</li></ul>",
		},
		{
			name: "attribute escaping",
			node: func() *Node {
				var n = NewElement("a", "")
				n.SetAttr("title", `say "hi"`)
				return n
			},
			want: `<a title="say &quot;hi&quot;"></a>`,
		},
	}
	for _, test := range tests {
		if got := test.node().String(); got != test.want {
			t.Errorf("%s: expected %s, got %s", test.name, test.want, got)
		}
	}
}
