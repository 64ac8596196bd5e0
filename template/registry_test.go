package template

import (
	"bytes"
	"reflect"
	"testing"
)

func TestRegistry(t *testing.T) {
	var r Registry
	if err := r.Add(Template{Name: "/b.htx", JS: "b();\n"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(Template{Name: "/a.htx", JS: "a();\n"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(Template{Name: "/a.htx"}); err == nil {
		t.Error("expected an error registering a duplicate name")
	}

	if tmpl := r.Template("/a.htx"); tmpl == nil || tmpl.JS != "a();\n" {
		t.Errorf("lookup returned %v", tmpl)
	}
	if tmpl := r.Template("/c.htx"); tmpl != nil {
		t.Errorf("expected nil for an unknown name, got %v", tmpl)
	}

	if got, want := r.Names(), []string{"/a.htx", "/b.htx"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	var buf bytes.Buffer
	if _, err := r.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "b();\na();\n" {
		t.Errorf("WriteTo wrote %q", buf.String())
	}
}
