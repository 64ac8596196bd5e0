package htx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/htxgo/htx/compiler"
)

func TestBundleTemplateStrings(t *testing.T) {
	registry, err := NewBundle().
		AddTemplateString("/hello.htx", "<p>Hello, ${this.name}!</p>").
		AddTemplateString("/static.htx", "<p>static</p>").
		Compile()
	if err != nil {
		t.Fatal(err)
	}

	var tmpl = registry.Template("/hello.htx")
	if tmpl == nil {
		t.Fatal("template not registered")
	}
	if tmpl.Source != "<p>Hello, ${this.name}!</p>" {
		t.Errorf("source not kept: %q", tmpl.Source)
	}
	if !strings.Contains(tmpl.JS, "globalThis['/hello.htx'] = function() {") {
		t.Errorf("unexpected output:\n%s", tmpl.JS)
	}
	if !strings.Contains(tmpl.JS, "automatically generated from /hello.htx") {
		t.Errorf("missing header:\n%s", tmpl.JS)
	}
}

func TestBundleTemplateDir(t *testing.T) {
	var dir = t.TempDir()
	var files = map[string]string{
		"index.htx":            "<main>home</main>",
		"account/overview.htx": "<section>account</section>",
		"notes.txt":            "not a template",
	}
	for name, content := range files {
		var path = filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	registry, err := NewBundle().AddTemplateDir(dir).Compile()
	if err != nil {
		t.Fatal(err)
	}
	var want = []string{"/account/overview.htx", "/index.htx"}
	var got = registry.Names()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("registered %v, want %v", got, want)
	}
}

func TestBundleCompileOptions(t *testing.T) {
	registry, err := NewBundle().
		CompileOptions(compiler.Options{Module: true}).
		AddTemplateString("/mod.htx", "<p>hi</p>").
		Compile()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(registry.Template("/mod.htx").JS, "export default function() {") {
		t.Errorf("expected a module export:\n%s", registry.Template("/mod.htx").JS)
	}
}

func TestBundleErrors(t *testing.T) {
	// A compile error carries the template name.
	_, err := NewBundle().
		AddTemplateString("/bad.htx", "<p>one</p><p>two</p>").
		Compile()
	if err == nil || !strings.Contains(err.Error(), "/bad.htx") {
		t.Errorf("expected a compile error naming the template, got %v", err)
	}

	// A missing file surfaces at Compile.
	if _, err := NewBundle().AddTemplateFile("no/such/file.htx").Compile(); err == nil {
		t.Error("expected an error for a missing file")
	}

	// Duplicate names are rejected.
	_, err = NewBundle().
		AddTemplateString("/dup.htx", "<p>a</p>").
		AddTemplateString("/dup.htx", "<p>b</p>").
		Compile()
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Errorf("expected a duplicate-name error, got %v", err)
	}
}
