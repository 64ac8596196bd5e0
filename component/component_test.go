package component

import (
	"testing"

	"github.com/htxgo/htx/dom"
	"github.com/htxgo/htx/render"
)

const el = render.FlagElement

// label renders a <p> holding the current value of text.
func label(text *string) render.RenderFunc {
	return func(r *render.Renderer) {
		r.Node("p", render.Pack(1, el))
		r.Node(*text, render.Pack(2, 0))
		r.Close()
	}
}

func TestMountPlacements(t *testing.T) {
	var tests = []struct {
		name      string
		placement Placement
		onAnchor  bool
		want      string
	}{
		{"append", Append, false, "<div><span></span><p>hi</p></div>"},
		{"prepend", Prepend, false, "<div><p>hi</p><span></span></div>"},
		{"before", Before, true, "<div><p>hi</p><span></span></div>"},
		{"after", After, true, "<div><span></span><p>hi</p></div>"},
		{"replace", Replace, true, "<div><p>hi</p></div>"},
	}

	for _, test := range tests {
		var host = dom.NewElement("div", "")
		var anchor = dom.NewElement("span", "")
		host.AppendChild(anchor)
		var target = host
		if test.onAnchor {
			target = anchor
		}

		var text = "hi"
		New(label(&text)).Mount(target, test.placement)
		if got := host.String(); got != test.want {
			t.Errorf("%s: got %s, want %s", test.name, got, test.want)
		}
	}
}

func TestRenderInPlace(t *testing.T) {
	var host = dom.NewElement("div", "")
	var text = "one"
	var c = New(label(&text))
	var root = c.Mount(host, Append)

	text = "two"
	if again := c.Render(); again != root {
		t.Fatal("re-render must keep the same root")
	}
	if got := host.String(); got != "<div><p>two</p></div>" {
		t.Errorf("got %s", got)
	}
}

func TestNestedRenderCallbacks(t *testing.T) {
	var order []string
	var innerSaw string
	var outer *Component

	var inner = New(func(r *render.Renderer) {
		r.Node("em", render.Pack(1, el))
		r.Node("inner", render.Pack(2, 0))
		r.Close()
		WhenRendered(func() {
			innerSaw = outer.Root().String()
			order = append(order, "inner")
		})
	})
	outer = New(func(r *render.Renderer) {
		r.Node("div", render.Pack(1, el))
		r.Node(inner, render.Pack(2, 0))
		r.Node("after", render.Pack(3, 0))
		r.Close()
		WhenRendered(func() {
			order = append(order, "outer")
		})
	})

	var root = outer.Render()
	if got := root.String(); got != "<div><em>inner</em>after</div>" {
		t.Fatalf("got %s", got)
	}
	if len(order) != 2 || order[0] != "inner" || order[1] != "outer" {
		t.Errorf("callbacks ran as %v, want inner then outer", order)
	}
	// The inner callback must have seen the outer pass complete, including
	// content rendered after the inner component.
	if innerSaw != "<div><em>inner</em>after</div>" {
		t.Errorf("inner callback saw %s", innerSaw)
	}
}

func TestWhenRenderedOutsideRender(t *testing.T) {
	var ran bool
	WhenRendered(func() { ran = true })
	if !ran {
		t.Error("expected the callback to run immediately")
	}
}
