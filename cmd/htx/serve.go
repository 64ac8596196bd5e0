package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/htxgo/htx"
	"github.com/htxgo/htx/template"
	"github.com/htxgo/htx/vm"
)

func serveCmd() *cobra.Command {
	var (
		addr   string
		static string
		opts   = new(buildOptions)
	)

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve compiled templates with live reload",
		Long: `Compile every *.htx template under a directory and serve the
generated JavaScript over HTTP, recompiling on change.

Routes:
  /<template path>        the template's generated JavaScript
  /templates              JSON index of template names
  /_htx/preview/<path>    the template rendered server-side; query
                          parameters are passed as template data
  /_htx/client.js         reload client; include it from your page
  /_htx/reload            WebSocket the reload client listens on

Pages using the reload client refresh automatically whenever a
template recompiles. Other requests fall through to --static, when
given.

Example:
  htx serve views --static=public --addr=:3000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir = "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runServe(dir, addr, static, opts)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Address to listen on")
	cmd.Flags().StringVar(&static, "static", "", "Directory of static files to serve")
	opts.addFlags(cmd)
	return cmd
}

func runServe(dir, addr, static string, opts *buildOptions) error {
	var hub = newReloadHub()
	registry, err := htx.NewBundle().
		WatchFiles(true).
		CompileOptions(opts.compiler()).
		SetRecompilationCallback(func(*template.Registry) {
			hub.notifyReload()
		}).
		AddTemplateDir(dir).
		Compile()
	if err != nil {
		return err
	}

	var r = chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/templates", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(registry.Names())
	})
	r.Get("/_htx/client.js", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		io.WriteString(w, reloadClientScript)
	})
	r.Get("/_htx/reload", hub.handleWebSocket)
	r.Get("/_htx/preview/*", func(w http.ResponseWriter, req *http.Request) {
		preview(w, req, registry)
	})
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		if t := registry.Template(req.URL.Path); t != nil {
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
			io.WriteString(w, t.JS)
			return
		}
		if static != "" {
			http.FileServer(http.Dir(static)).ServeHTTP(w, req)
			return
		}
		http.NotFound(w, req)
	})

	info("serving %s on %s", dir, addr)
	return http.ListenAndServe(addr, r)
}

// preview renders one template server-side, with the request's query
// parameters as template data.
func preview(w http.ResponseWriter, req *http.Request, registry *template.Registry) {
	var name = "/" + chi.URLParam(req, "*")
	var t = registry.Template(name)
	if t == nil {
		http.Error(w, fmt.Sprintf("template %s not found", name), http.StatusNotFound)
		return
	}

	// A fresh interpreter per request picks up recompiled sources.
	var v = vm.New()
	if err := v.Load(t.Name, t.Source); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h, err := v.Template(t.Name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var data = make(map[string]interface{})
	for k, vals := range req.URL.Query() {
		data[k] = vals[0]
	}
	root, err := h.Render(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	root.Render(w)
	io.WriteString(w, "\n<script src=\"/_htx/client.js\"></script>\n")
}
