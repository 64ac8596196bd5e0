package template

import (
	"fmt"
	"io"
	"sort"
)

// Registry holds the compiled templates of a bundle. Lookups are by the
// slash path the template was added under.
type Registry struct {
	Templates []Template
}

// Add adds a compiled template to the registry. Adding a second template
// under an already-registered name is an error.
func (r *Registry) Add(t Template) error {
	if r.Template(t.Name) != nil {
		return fmt.Errorf("template %q is already registered", t.Name)
	}
	r.Templates = append(r.Templates, t)
	return nil
}

// Template returns the template registered under the given name, or nil.
func (r *Registry) Template(name string) *Template {
	for i := range r.Templates {
		if r.Templates[i].Name == name {
			return &r.Templates[i]
		}
	}
	return nil
}

// Names returns the registered template names, sorted.
func (r *Registry) Names() []string {
	var names = make([]string, len(r.Templates))
	for i, t := range r.Templates {
		names[i] = t.Name
	}
	sort.Strings(names)
	return names
}

// WriteTo writes the generated JavaScript of every template, in registration
// order, to w.
func (r *Registry) WriteTo(w io.Writer) (n int64, err error) {
	for _, t := range r.Templates {
		m, err := io.WriteString(w, t.JS)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
