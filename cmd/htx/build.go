package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/htxgo/htx"
	"github.com/htxgo/htx/compiler"
	"github.com/htxgo/htx/template"
)

func buildCmd() *cobra.Command {
	var opts = new(buildOptions)

	cmd := &cobra.Command{
		Use:   "build [dir]",
		Short: "Compile templates to JavaScript",
		Long: `Compile every *.htx template under a directory, writing one .js
file beside each template (or into --out, mirroring the layout).

Examples:
  htx build views
  htx build views --out=dist --module
  htx build views --assign-to=app.templates --es5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir = "."
			if len(args) > 0 {
				dir = args[0]
			}
			if opts.out == "" {
				opts.out = dir
			}
			registry, err := htx.NewBundle().
				CompileOptions(opts.compiler()).
				AddTemplateDir(dir).
				Compile()
			if err != nil {
				return err
			}
			return writeRegistry(registry, opts.out)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

type buildOptions struct {
	out        string
	module     bool
	importPath string
	assignTo   string
	es5        bool
	indent     string
}

func (o *buildOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "Output directory (default: beside each template)")
	cmd.Flags().BoolVar(&o.module, "module", false, "Emit ES modules with a default export")
	cmd.Flags().StringVar(&o.importPath, "import-path", "", "Runtime import added to module output")
	cmd.Flags().StringVar(&o.assignTo, "assign-to", "", "Object compiled functions are assigned to (default globalThis)")
	cmd.Flags().BoolVar(&o.es5, "es5", false, "Emit ES5 string concatenation instead of template literals")
	cmd.Flags().StringVar(&o.indent, "indent", "", "Indent unit for generated code (default: detected per template)")
}

func (o *buildOptions) compiler() compiler.Options {
	var format = compiler.ES6
	if o.es5 {
		format = compiler.ES5
	}
	return compiler.Options{
		AssignTo:   o.assignTo,
		Module:     o.module,
		ImportPath: o.importPath,
		Indent:     o.indent,
		Format:     format,
	}
}

// writeRegistry writes each template's generated JavaScript under out,
// mirroring template paths: /account/overview.htx -> account/overview.js.
func writeRegistry(reg *template.Registry, out string) error {
	for _, t := range reg.Templates {
		var rel = strings.TrimSuffix(strings.TrimPrefix(t.Name, "/"), ".htx") + ".js"
		var path = filepath.Join(out, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(t.JS), 0644); err != nil {
			return err
		}
		info("%s", path)
	}
	return nil
}
