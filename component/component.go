// Package component wraps a render function and a renderer into a mountable
// unit. A component implements render.Delegate, so one component may render
// inside another's pass; did-render callbacks registered anywhere in such a
// nest run only after the outermost pass has settled.
package component

import (
	"github.com/htxgo/htx/dom"
	"github.com/htxgo/htx/render"
)

// Placement says where a mounted component's root goes relative to the
// mount target.
type Placement int

const (
	Append  Placement = iota // as the target's last child
	Prepend                  // as the target's first child
	Replace                  // in the target's place
	Before                   // as the target's previous sibling
	After                    // as the target's next sibling
)

// Component binds a render function to its own renderer and live root.
type Component struct {
	fn       render.RenderFunc
	renderer *render.Renderer
}

// New returns an unmounted component.
func New(fn render.RenderFunc) *Component {
	return &Component{fn: fn, renderer: render.New()}
}

// Renderer returns the component's renderer.
func (c *Component) Renderer() *render.Renderer {
	return c.renderer
}

// Root returns the component's live root, nil before the first render.
func (c *Component) Root() *dom.Node {
	return c.renderer.Root()
}

// Render runs one pass, reconciling the component's tree in place, and
// returns its root. It implements render.Delegate.
func (c *Component) Render() *dom.Node {
	depth++
	c.fn(c.renderer)
	depth--
	if depth == 0 {
		flush()
	}
	return c.renderer.Root()
}

// Mount renders the component and places its root relative to target.
// Later Render calls update the tree where it stands.
func (c *Component) Mount(target *dom.Node, placement Placement) *dom.Node {
	var root = c.Render()
	switch placement {
	case Append:
		target.AppendChild(root)
	case Prepend:
		target.InsertBefore(root, target.FirstChild)
	case Before:
		target.Parent.InsertBefore(root, target)
	case After:
		target.Parent.InsertBefore(root, target.NextSibling)
	case Replace:
		target.Parent.InsertBefore(root, target)
		target.Detach()
	}
	return root
}

// Did-render callbacks wait here until the outermost pass settles. Inner
// components finish their passes first, so their callbacks run first. The
// queue is single-threaded, like the trees it serves.
var (
	depth    int
	deferred []func()
)

// WhenRendered registers f to run once the render pass in progress has
// settled. When no render is in progress, f runs immediately.
func WhenRendered(f func()) {
	if depth == 0 {
		f()
		return
	}
	deferred = append(deferred, f)
}

func flush() {
	for len(deferred) > 0 {
		var f = deferred[0]
		deferred = deferred[1:]
		f()
	}
}
