package htx

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/htxgo/htx/compiler"
	"github.com/htxgo/htx/template"
)

// Logger is used to print notifications and compile errors when using the
// "WatchFiles" feature.
var Logger = log.New(os.Stderr, "[htx] ", 0)

type htxFile struct {
	name    string // template name, a slash path
	path    string // on-disk source, empty for string templates
	content string
}

// Bundle is a collection of template files. It acts as input for the
// template compiler.
type Bundle struct {
	files                 []htxFile
	opts                  compiler.Options
	err                   error
	watcher               *fsnotify.Watcher
	recompilationCallback func(*template.Registry)
}

// NewBundle returns an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{}
}

// WatchFiles tells the bundle to watch any template files added to it,
// re-compile as necessary, and propagate the updates to the returned
// registry. It should be called once, before adding any files.
func (b *Bundle) WatchFiles(watch bool) *Bundle {
	if watch && b.err == nil && b.watcher == nil {
		b.watcher, b.err = fsnotify.NewWatcher()
	}
	return b
}

// CompileOptions sets the options templates are compiled with. Note that the
// registry keeps each template's source, so a caller needing a second format
// can recompile from it.
func (b *Bundle) CompileOptions(opts compiler.Options) *Bundle {
	b.opts = opts
	return b
}

// AddTemplateDir adds all *.htx files found within the given directory
// (including sub-directories) to the bundle. Each template is named by its
// slash-separated path under the directory, e.g. "/account/overview.htx".
func (b *Bundle) AddTemplateDir(root string) *Bundle {
	var err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".htx") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		b.addFile("/"+filepath.ToSlash(rel), path)
		return nil
	})
	if err != nil {
		b.err = err
	}
	return b
}

// AddTemplateFile adds the given template file to this bundle, named by its
// base name. If WatchFiles is on, it will be subsequently watched for
// updates.
func (b *Bundle) AddTemplateFile(filename string) *Bundle {
	return b.addFile("/"+filepath.ToSlash(filepath.Base(filename)), filename)
}

// AddTemplateString adds the given template to the bundle. The name is used
// for lookups and error messages and does not need to be a real filename.
func (b *Bundle) AddTemplateString(name, markup string) *Bundle {
	b.files = append(b.files, htxFile{name: name, content: markup})
	return b
}

func (b *Bundle) addFile(name, path string) *Bundle {
	content, err := os.ReadFile(path)
	if err != nil {
		b.err = err
		return b
	}
	if b.err == nil && b.watcher != nil {
		if err := b.watcher.Add(path); err != nil {
			b.err = err
		}
	}
	b.files = append(b.files, htxFile{name: name, path: path, content: string(content)})
	return b
}

// SetRecompilationCallback assigns the bundle a function to call after
// recompilation. This is called before updating the in-use registry.
func (b *Bundle) SetRecompilationCallback(c func(*template.Registry)) *Bundle {
	b.recompilationCallback = c
	return b
}

// Compile compiles every template in the bundle and returns the completed
// registry. With WatchFiles on, the registry is updated in place as the
// underlying files change.
func (b *Bundle) Compile() (*template.Registry, error) {
	if b.err != nil {
		return nil, b.err
	}

	var registry = template.Registry{}
	for _, f := range b.files {
		js, err := compiler.Compile(f.name, f.content, b.opts)
		if err != nil {
			return nil, err
		}
		var t = template.Template{Name: f.name, Source: f.content, JS: js}
		if err := registry.Add(t); err != nil {
			return nil, err
		}
	}

	if b.watcher != nil {
		go b.recompiler(&registry)
	}
	return &registry, nil
}

func (b *Bundle) recompiler(reg *template.Registry) {
	for {
		select {
		case ev := <-b.watcher.Events:
			// If it's a rename, then fsnotify has removed the watch.
			// Add it back, after a delay.
			if ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				time.Sleep(10 * time.Millisecond)
				if err := b.watcher.Add(ev.Name); err != nil {
					Logger.Println(err)
				}
			}

			// Recompile the whole bundle.
			var bundle = NewBundle().CompileOptions(b.opts)
			for _, f := range b.files {
				if f.path != "" {
					bundle.addFile(f.name, f.path)
				} else {
					bundle.AddTemplateString(f.name, f.content)
				}
			}
			var registry, err = bundle.Compile()
			if err != nil {
				Logger.Println(err)
				continue
			}

			if b.recompilationCallback != nil {
				b.recompilationCallback(registry)
			}

			// update the existing template registry.
			// (this is not goroutine-safe, but that seems ok for a development aid,
			// as long as it works in practice)
			*reg = *registry
			Logger.Printf("update successful (%v)", ev)

		case err := <-b.watcher.Errors:
			Logger.Println(err)
		}
	}
}
