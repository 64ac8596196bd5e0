// Package vm executes compiled templates under an embedded JavaScript
// interpreter, bridging their this.node and this.close calls into a live
// render.Renderer. The compiled form itself drives reconciliation, which
// keeps server-side rendering and the conformance tests on the same code
// path a browser would run.
package vm

import (
	"encoding/json"
	"fmt"

	"github.com/robertkrimen/otto"

	"github.com/htxgo/htx/compiler"
	"github.com/htxgo/htx/dom"
	"github.com/htxgo/htx/render"
	"github.com/htxgo/htx/template"
)

// templatesObject is the interpreter global holding every loaded render
// function, keyed by template name.
const templatesObject = "htxTemplates"

// VM is one interpreter instance with its loaded templates.
type VM struct {
	o *otto.Otto
}

// New returns a VM ready to load templates.
func New() *VM {
	var o = otto.New()
	o.Run("var " + templatesObject + " = {};")
	return &VM{o: o}
}

// Load compiles template markup and defines its render function in the
// interpreter. The interpreter understands ES5 only, so markup is compiled
// here with the ES5 text format rather than reusing the canonical ES6
// output.
func (vm *VM) Load(name, markup string) error {
	src, err := compiler.Compile(name, markup, compiler.Options{
		AssignTo: templatesObject,
		Format:   compiler.ES5,
	})
	if err != nil {
		return err
	}
	if _, err := vm.o.Run(src); err != nil {
		return fmt.Errorf("template %s: %v", name, err)
	}
	return nil
}

// LoadRegistry loads every template of a compiled registry.
func (vm *VM) LoadRegistry(reg *template.Registry) error {
	for _, t := range reg.Templates {
		if err := vm.Load(t.Name, t.Source); err != nil {
			return err
		}
	}
	return nil
}

// Template returns a handle on a loaded template. Resolving an unknown name
// is an error; there is no fallback.
func (vm *VM) Template(name string) (*Handle, error) {
	obj, err := vm.o.Object(templatesObject)
	if err != nil {
		return nil, err
	}
	fn, err := obj.Get(name)
	if err != nil {
		return nil, err
	}
	if !fn.IsFunction() {
		return nil, fmt.Errorf("template %q is not defined", name)
	}
	return &Handle{vm: vm, name: name, fn: fn, renderer: render.New()}, nil
}

// Handle is one template bound to its own Renderer. Successive Render calls
// reconcile into the same tree, so a handle behaves like a mounted component.
type Handle struct {
	vm       *VM
	name     string
	fn       otto.Value
	renderer *render.Renderer
}

// Renderer returns the handle's renderer, for root access and write stats.
func (h *Handle) Renderer() *render.Renderer {
	return h.renderer
}

// Render runs one full pass with data bound to this and returns the settled
// root. Data reaches the interpreter as JSON, so slices and maps become real
// arrays and objects; Delegate and *dom.Node values are exempt and pass
// through as themselves.
func (h *Handle) Render(data map[string]interface{}) (_ *dom.Node, err error) {
	defer errRecover(&err)

	var plain = make(map[string]interface{})
	var passthrough = make(map[string]interface{})
	for k, v := range data {
		switch v.(type) {
		case render.Delegate, *dom.Node:
			passthrough[k] = v
		default:
			plain[k] = v
		}
	}

	encoded, err := json.Marshal(plain)
	if err != nil {
		return nil, err
	}
	this, err := h.vm.o.Object(fmt.Sprintf("JSON.parse(%q)", string(encoded)))
	if err != nil {
		return nil, err
	}
	for k, v := range passthrough {
		if err := this.Set(k, v); err != nil {
			return nil, err
		}
	}
	this.Set("node", h.node)
	this.Set("close", h.close)

	if _, err := h.fn.Call(this.Value()); err != nil {
		return nil, fmt.Errorf("template %s: %v", h.name, err)
	}
	return h.renderer.Root(), nil
}

func (h *Handle) node(call otto.FunctionCall) otto.Value {
	var args = make([]interface{}, len(call.ArgumentList))
	for i, a := range call.ArgumentList {
		args[i] = export(a)
	}
	if len(args) == 0 {
		panic(fmt.Errorf("template %s: node called without arguments", h.name))
	}
	h.renderer.Node(args[0], args[1:]...)
	return otto.Value{}
}

func (h *Handle) close(call otto.FunctionCall) otto.Value {
	if len(call.ArgumentList) == 0 {
		h.renderer.Close()
		return otto.Value{}
	}
	n, err := call.Argument(0).ToInteger()
	if err != nil {
		panic(fmt.Errorf("template %s: bad close count: %v", h.name, err))
	}
	h.renderer.Close(int(n))
	return otto.Value{}
}

// export unwraps an interpreter value: JSON-derived values come out as their
// Go forms, wrapped Go values come back as themselves.
func export(v otto.Value) interface{} {
	if v.IsUndefined() || v.IsNull() {
		return nil
	}
	out, err := v.Export()
	if err != nil {
		panic(err)
	}
	return out
}

func errRecover(errp *error) {
	e := recover()
	if e != nil {
		*errp = fmt.Errorf("%v", e)
	}
}
