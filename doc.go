/*
Package htx compiles HTML templates into JavaScript render functions that
build and update the page in place, with no virtual tree in between.

A template is plain HTML with three extras: ${...} interpolations, lines of
host-language statements for control flow, and an htx-key attribute marking
content that may reorder. The compiler walks the markup once and emits one
this.node() call per element or text slot, each carrying a position key
assigned in document order, plus this.close() calls bounding child scopes.
Re-running the generated function replays those calls against the existing
tree; nodes are matched by position (and identity key, when given) and
patched, moved, or dropped instead of rebuilt.

Usage example

Typically in a web application you have a directory containing templates for
all of your pages. For example:

  app/views/
  app/views/account/
  app/views/feed/
  ...

This code snippet will compile all templates within app/views and provide
back a registry that serves their generated JavaScript. (Error checking is
skipped.)

On startup:

  registry, _ := htx.NewBundle().
      WatchFiles(mode == "dev").   // watch template files, recompile on changes (in dev)
      AddTemplateDir("views").     // load *.htx in all sub-directories
      Compile()

To serve the generated render function of one template:

  io.WriteString(resp, registry.Template("/account/overview.htx").JS)

Server-side rendering

The vm package runs the generated functions under an embedded interpreter
against the dom package's node tree, so the same compiled form renders HTML
on the server:

  v := vm.New()
  v.LoadRegistry(registry)
  h, _ := v.Template("/account/overview.htx")
  root, _ := h.Render(map[string]interface{}{"user": user})
  root.Render(resp)

Advanced usage

The htx package provides a friendly interface to its sub-packages. Usages
like custom output placement or build tooling will be better served by using
e.g. the compiler package directly.
*/
package htx
