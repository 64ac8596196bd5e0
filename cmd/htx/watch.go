package main

import (
	"github.com/spf13/cobra"

	"github.com/htxgo/htx"
	"github.com/htxgo/htx/template"
)

func watchCmd() *cobra.Command {
	var opts = new(buildOptions)

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Compile templates and recompile on change",
		Long: `Compile every *.htx template under a directory, then keep
watching the files and rewrite the generated JavaScript whenever a
template changes. Compile errors are logged and the previous output
is kept.

Example:
  htx watch views --out=dist`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir = "."
			if len(args) > 0 {
				dir = args[0]
			}
			if opts.out == "" {
				opts.out = dir
			}
			return runWatch(dir, opts)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func runWatch(dir string, opts *buildOptions) error {
	registry, err := htx.NewBundle().
		WatchFiles(true).
		CompileOptions(opts.compiler()).
		SetRecompilationCallback(func(reg *template.Registry) {
			if err := writeRegistry(reg, opts.out); err != nil {
				errorMsg("%s", err)
			}
		}).
		AddTemplateDir(dir).
		Compile()
	if err != nil {
		return err
	}
	if err := writeRegistry(registry, opts.out); err != nil {
		return err
	}

	info("watching %s", dir)
	select {}
}
