// Package compiler turns template markup into the source of a render
// function. The generated function, each time it is invoked, replays the
// template as a sequence of this.node() and this.close() calls whose position
// keys are assigned here, at compile time, in strict pre-order.
package compiler

import (
	"bytes"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/htxgo/htx/classify"
	"github.com/htxgo/htx/errortypes"
	"github.com/htxgo/htx/render"
)

// Reserved template vocabulary.
const (
	// KeyAttr is the attribute naming a node's identity key.
	KeyAttr = "htx-key"

	// ContentTag is the content-only tag: it is compiled away, emitting its
	// single text child at its own position.
	ContentTag = "htx-content"

	// GroupTag is the transparent grouping tag: its children compile in
	// place and the tag itself emits nothing.
	GroupTag = "htx-group"
)

// Options configures compilation of one template.
type Options struct {
	// AssignTo is the object the compiled function is assigned to, keyed by
	// template name. Defaults to "globalThis". Ignored when Module is set.
	AssignTo string

	// Module emits an ES module with a default export instead of an
	// assignment.
	Module bool

	// ImportPath, when Module is set, adds a runtime import to the output.
	ImportPath string

	// Indent is the generated code's indent unit. When empty it is
	// detected from the template, falling back to two spaces.
	Indent string

	// Format selects the dialect literal text is rendered in.
	Format TextFormat
}

// Compile compiles raw template markup into render-function source. The
// returned source is a bit-exact contract covered by conformance tests.
func Compile(name, markup string, opts Options) (src string, err error) {
	defer errRecover(&err)

	if opts.AssignTo == "" {
		opts.AssignTo = "globalThis"
	}
	if opts.Indent == "" {
		opts.Indent = detectIndent(markup)
	}

	var s = &state{
		name:   name,
		markup: markup,
		opts:   opts,
		buf:    new(bytes.Buffer),
	}
	s.run()
	return s.buf.String(), nil
}

// Write compiles raw template markup and writes the generated source to w.
func Write(w io.Writer, name, markup string, opts Options) error {
	src, err := Compile(name, markup, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, src)
	return err
}

// state holds the walk state for one compilation.
type state struct {
	name          string
	markup        string
	opts          Options
	buf           *bytes.Buffer
	indent        int // current emission depth
	key           int // last assigned position key
	pending       int // buffered close count, merged into one Close
	pendingIndent int
	blank         bool // emit one blank line before the next line
	sawContent    bool // something was emitted in the current child scope
}

func (s *state) run() {
	var root = s.parse()

	fmt.Fprintf(s.buf, "// This file was automatically generated from %s.\n", s.name)
	fmt.Fprintf(s.buf, "// Please don't edit this file by hand.\n\n")

	switch {
	case s.opts.Module && s.opts.ImportPath != "":
		fmt.Fprintf(s.buf, "import * as HTX from '%s'\n\n", s.opts.ImportPath)
		fmt.Fprintf(s.buf, "export default function() {\n")
	case s.opts.Module:
		fmt.Fprintf(s.buf, "export default function() {\n")
	default:
		fmt.Fprintf(s.buf, "%s['%s'] = function() {\n", s.opts.AssignTo, s.name)
	}

	s.indent = 1
	s.element(root)
	s.flushCloses()
	s.buf.WriteString("}\n")
}

// parse runs the markup through the fragment parser and validates that it has
// exactly one element root.
func (s *state) parse() *html.Node {
	var context = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s.markup), context)
	if err != nil {
		s.errorf(0, "parse: %v", err)
	}

	var roots []*html.Node
	s.rootCandidates(nodes, &roots)
	if len(roots) == 0 {
		s.errorf(0, "template has no root element")
	}
	if len(roots) > 1 {
		s.errorf(s.lineOf("<"+roots[1].Data), "template has more than one root element")
	}
	if roots[0].Data == ContentTag {
		s.errorf(s.lineOf("<"+ContentTag), "template has no root element")
	}
	return roots[0]
}

// rootCandidates collects root elements, expanding transparent groups and
// rejecting stray root-level text.
func (s *state) rootCandidates(nodes []*html.Node, roots *[]*html.Node) {
	for _, n := range nodes {
		switch n.Type {
		case html.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				s.errorf(s.lineOf(strings.TrimSpace(n.Data)), "text outside of root element: %q", strings.TrimSpace(n.Data))
			}
		case html.ElementNode:
			if n.Data == GroupTag {
				s.rootCandidates(childList(n), roots)
				continue
			}
			*roots = append(*roots, n)
		case html.CommentNode:
			// dropped
		default:
			s.errorf(0, "unexpected node type %d at root", n.Type)
		}
	}
}

// element emits the Node call for one element and recurses into its children.
func (s *state) element(n *html.Node) {
	switch n.Data {
	case ContentTag:
		s.contentOnly(n)
		return
	case GroupTag:
		s.children(n)
		return
	}

	var tag = restoreTag(n.Data)
	var attrs, identity, namespaced = s.attributes(n, tag)
	var childless = isChildless(n)

	var flags = render.FlagElement
	if childless {
		flags |= render.FlagChildless
	}
	if namespaced {
		flags |= render.FlagNamespace
	}
	var key = s.nextKey()

	var args = []string{quoteName(tag)}
	for _, a := range attrs {
		args = append(args, quoteName(a.key), a.val)
	}
	if identity != "" {
		args = append(args, identity)
	}
	args = append(args, strconv.Itoa(render.Pack(key, flags)))

	s.flushCloses()
	s.node(args)
	s.sawContent = true

	if !childless {
		s.indent++
		var depth = s.indent
		s.children(n)
		s.indent = depth - 1
		s.pendClose()
	}
}

// children walks an element's child list.
func (s *state) children(n *html.Node) {
	var saved = s.sawContent
	s.sawContent = false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			s.text(c)
		case html.ElementNode:
			s.element(c)
		case html.CommentNode:
			// dropped
		default:
			s.errorf(0, "unexpected node type %d", c.Type)
		}
	}
	s.blank = false
	s.sawContent = saved
}

// text classifies one text chunk and emits a statement splice or a
// text-producing Node call.
func (s *state) text(n *html.Node) {
	var c = classify.Text(n.Data, true)
	switch c.Kind {
	case classify.Statement:
		s.statement(c.Content)

	case classify.Raw:
		var key = s.nextKey()
		s.flushCloses()
		s.node([]string{c.Content, strconv.Itoa(render.Pack(key, 0))})
		s.sawContent = true

	case classify.Template:
		if c.Content == "" {
			if s.sawContent && strings.Count(c.LeadingWhitespace, "\n") >= 2 {
				s.blank = true
			}
			return
		}
		var key = s.nextKey()
		s.flushCloses()
		s.node([]string{s.textValue(c), strconv.Itoa(render.Pack(key, 0))})
		s.sawContent = true
	}
}

// statement splices host control flow into the generated code, re-indenting
// each line by its brace structure. Statements consume no position key.
func (s *state) statement(content string) {
	s.flushCloses()
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		closers, net := classify.Braces(line)
		var at = s.indent - closers
		if at < 1 {
			at = 1
		}
		s.lineAt(at, line)
		s.indent += net
		if s.indent < 1 {
			s.indent = 1
		}
	}
	s.sawContent = true
}

// contentOnly compiles a content-only tag: its single text child is emitted
// at the tag's own position, carrying the tag's identity key.
func (s *state) contentOnly(n *html.Node) {
	var line = s.lineOf("<" + ContentTag)
	var identity string
	for _, a := range n.Attr {
		if a.Key == KeyAttr {
			identity = s.attrValue(a.Val)
			continue
		}
		s.errorf(line, "%s may not have attributes other than %s: %s", ContentTag, KeyAttr, a.Key)
	}

	var content string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			content = c.Data
		case html.CommentNode:
			// dropped
		default:
			s.errorf(line, "%s may not have child elements", ContentTag)
		}
	}

	var cl = classify.Text(content, false)
	var value string
	if cl.Kind == classify.Raw {
		value = cl.Content
	} else {
		value = s.textValue(cl)
	}

	var key = s.nextKey()
	var args = []string{value}
	if identity != "" {
		args = append(args, identity)
	}
	args = append(args, strconv.Itoa(render.Pack(key, 0)))

	s.flushCloses()
	s.node(args)
	s.sawContent = true
}

// attributes processes an element's attribute list: the identity key is
// pulled out, a default namespace is injected for tags that need one, and
// each remaining value is classified and formatted.
func (s *state) attributes(n *html.Node, tag string) (attrs []attr, identity string, namespaced bool) {
	for _, a := range n.Attr {
		if a.Key == KeyAttr {
			identity = s.attrValue(a.Val)
			continue
		}
		var key = restoreAttr(a.Key)
		if key == "xmlns" {
			namespaced = true
		}
		attrs = append(attrs, attr{key: key, val: s.attrValue(a.Val)})
	}
	if ns, ok := defaultNamespaces[tag]; ok && !namespaced {
		namespaced = true
		attrs = append([]attr{{key: "xmlns", val: s.literal(ns)}}, attrs...)
	}
	return attrs, identity, namespaced
}

type attr struct {
	key, val string
}

// attrValue formats one attribute value: a raw chunk stays an expression,
// anything else becomes a literal with its edge whitespace intact.
func (s *state) attrValue(text string) string {
	var c = classify.Text(text, false)
	if c.Kind == classify.Raw {
		return c.Content
	}
	return s.literal(c.LeadingWhitespace + c.Content + c.TrailingWhitespace)
}

// textValue assembles a Template chunk into a literal expression. Edge
// whitespace that contained a newline is dropped; inline runs collapse to a
// single space.
func (s *state) textValue(c classify.Classification) string {
	var text = c.Content
	if c.LeadingWhitespace != "" && !strings.Contains(c.LeadingWhitespace, "\n") {
		text = " " + text
	}
	if c.TrailingWhitespace != "" && !strings.Contains(c.TrailingWhitespace, "\n") {
		text = text + " "
	}
	return s.literal(text)
}

func (s *state) literal(text string) string {
	return formatLiteral(text, s.opts.Format)
}

// nextKey assigns the next pre-order position key.
func (s *state) nextKey() int {
	s.key++
	return s.key
}

// node writes one this.node(...) call.
func (s *state) node(args []string) {
	s.lineAt(s.indent, "this.node("+strings.Join(args, ", ")+")")
}

// pendClose buffers one close so that consecutive closes from nested scopes
// merge into a single this.close(n), printed at the innermost scope's indent.
func (s *state) pendClose() {
	if s.pending == 0 {
		s.pendingIndent = s.indent
	}
	s.pending++
}

func (s *state) flushCloses() {
	if s.pending == 0 {
		return
	}
	var call = "this.close()"
	if s.pending > 1 {
		call = "this.close(" + strconv.Itoa(s.pending) + ")"
	}
	s.pending = 0

	// A pending blank line separates siblings, not a close from its
	// scope, so hold it until the next emitted line.
	var blank = s.blank
	s.blank = false
	s.lineAt(s.pendingIndent, call)
	s.blank = blank
}

// lineAt writes one line of generated code at the given indent depth.
func (s *state) lineAt(depth int, text string) {
	if s.blank {
		s.blank = false
		s.buf.WriteByte('\n')
	}
	for i := 0; i < depth; i++ {
		s.buf.WriteString(s.opts.Indent)
	}
	s.buf.WriteString(text)
	s.buf.WriteByte('\n')
}

// errorf aborts compilation with a template error. Line zero means the line
// could not be determined.
func (s *state) errorf(line int, format string, args ...interface{}) {
	if line > 0 {
		format = fmt.Sprintf("template %s:%d: %s", s.name, line, format)
	} else {
		format = fmt.Sprintf("template %s: %s", s.name, format)
	}
	panic(errortypes.NewErrTemplatef(s.name, line, format, args...))
}

// lineOf returns the 1-based line of the first occurrence of needle in the
// template source, or zero when absent.
func (s *state) lineOf(needle string) int {
	var idx = strings.Index(s.markup, needle)
	if idx < 0 {
		return 0
	}
	return 1 + strings.Count(s.markup[:idx], "\n")
}

func errRecover(errp *error) {
	e := recover()
	if e != nil {
		switch e.(type) {
		case runtime.Error:
			panic(e)
		case error:
			*errp = e.(error)
		default:
			panic(e)
		}
	}
}

// isChildless reports whether an element opens no child scope: it has no
// children, or only a single chunk of inter-element whitespace.
func isChildless(n *html.Node) bool {
	var c = n.FirstChild
	if c == nil {
		return true
	}
	return c.NextSibling == nil && c.Type == html.TextNode && strings.TrimSpace(c.Data) == ""
}

func childList(n *html.Node) []*html.Node {
	var kids []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		kids = append(kids, c)
	}
	return kids
}

// quoteName renders a tag or attribute name as a string literal.
func quoteName(name string) string {
	return "'" + name + "'"
}

// detectIndent finds the template's indent unit: the leading whitespace of
// the first indented line.
func detectIndent(markup string) string {
	for _, line := range strings.Split(markup, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var n = 0
		for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
			n++
		}
		if n > 0 {
			return line[:n]
		}
	}
	return "  "
}
