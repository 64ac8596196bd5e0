// Package classify determines what a chunk of template text is: a host
// statement to splice into generated code, a single raw expression whose value
// is used directly, or literal text with embedded interpolations.
package classify

import "strings"

// Kind is the classification of one text chunk.
type Kind int

const (
	// Statement is host control flow (loops, conditionals, assignments).
	// It is spliced into generated code and produces no node.
	Statement Kind = iota

	// Raw is a chunk that is exactly one interpolation. Its inner
	// expression's value is used directly, not coerced to a string.
	Raw

	// Template is literal text, possibly with embedded interpolations,
	// used as a string.
	Template
)

func (k Kind) String() string {
	switch k {
	case Statement:
		return "statement"
	case Raw:
		return "raw"
	case Template:
		return "template"
	}
	return "unknown"
}

// Classification is the result of classifying one text chunk. Content
// excludes the chunk's leading and trailing whitespace runs, which are
// reported separately.
type Classification struct {
	Kind               Kind
	Content            string
	LeadingWhitespace  string
	TrailingWhitespace string
}

// Text classifies one chunk of template text. statementsAllowed is false for
// attribute values and for the child of a content-only tag, where host
// statements can not occur.
func Text(text string, statementsAllowed bool) Classification {
	var leading, core, trailing = splitSpace(text)
	var c = Classification{
		LeadingWhitespace:  leading,
		TrailingWhitespace: trailing,
	}

	if statementsAllowed && isStatement(core) {
		c.Kind = Statement
		c.Content = core
		return c
	}

	// A chunk that is exactly one interpolation, and is not itself a
	// backtick-quoted string, promotes to a raw expression.
	if len(core) > 0 && core[0] != '`' {
		if inner, ok := soleInterpolation(core); ok {
			if strings.TrimSpace(inner) == "" {
				c.Kind = Template
				return c
			}
			c.Kind = Raw
			c.Content = strings.TrimSpace(inner)
			return c
		}
	}

	c.Kind = Template
	c.Content = dedent(core)
	return c
}

// Segment is one piece of a Template chunk: literal text, or the inner
// expression of a live interpolation.
type Segment struct {
	Expr bool
	Text string
}

// Segments splits Template content into literal and interpolation segments.
// Unterminated interpolation markers are treated as literal text. Empty
// literal segments are omitted.
func Segments(content string) []Segment {
	var segs []Segment
	var lit = 0
	for i := 0; i < len(content); {
		if content[i] == '$' && i+1 < len(content) && content[i+1] == '{' {
			var end = interpolationEnd(content, i+2)
			if end < 0 {
				i += 2
				continue
			}
			if i > lit {
				segs = append(segs, Segment{Text: content[lit:i]})
			}
			segs = append(segs, Segment{Expr: true, Text: content[i+2 : end]})
			i = end + 1
			lit = i
			continue
		}
		i++
	}
	if lit < len(content) {
		segs = append(segs, Segment{Text: content[lit:]})
	}
	return segs
}

// Braces reports the brace structure of one statement line: the number of
// closing braces before the first opener, and the net nesting change. Braces
// inside strings, comments, and interpolations are not counted.
func Braces(line string) (leadingClosers, net int) {
	var s = scanner{text: line}
	var opened = false
	for !s.done() {
		switch c := s.next(); c {
		case '{':
			opened = true
			net++
		case '}':
			if !opened && net <= 0 {
				leadingClosers++
			}
			net--
		}
	}
	return leadingClosers, net
}

// splitSpace splits off the leading and trailing whitespace runs.
func splitSpace(text string) (leading, core, trailing string) {
	var start = 0
	for start < len(text) && isSpace(text[start]) {
		start++
	}
	var end = len(text)
	for end > start && isSpace(text[end-1]) {
		end--
	}
	return text[:start], text[start:end], text[end:]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// dedent strips the minimum common indentation from the interior lines of
// multi-line content. The first line carries no indentation because the
// chunk's leading whitespace has already been split off.
func dedent(core string) string {
	if !strings.Contains(core, "\n") {
		return core
	}
	var lines = strings.Split(core, "\n")
	var min = -1
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var n = 0
		for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
			n++
		}
		if min == -1 || n < min {
			min = n
		}
	}
	if min <= 0 {
		return core
	}
	for i, line := range lines[1:] {
		if len(line) >= min {
			lines[i+1] = line[min:]
		} else {
			lines[i+1] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

// soleInterpolation reports whether core is exactly one interpolation, and if
// so returns its inner expression.
func soleInterpolation(core string) (string, bool) {
	if !strings.HasPrefix(core, "${") {
		return "", false
	}
	var end = interpolationEnd(core, 2)
	if end != len(core)-1 {
		return "", false
	}
	return core[2:end], true
}

// interpolationEnd scans from just past "${" and returns the index of the
// matching close brace, or -1 if the interpolation is unterminated. Braces
// inside quoted strings and nested template literals do not count.
func interpolationEnd(text string, start int) int {
	var s = scanner{text: text, pos: start}
	var depth = 0
	for !s.done() {
		switch c := s.next(); c {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return s.pos - 1
			}
			depth--
		}
	}
	return -1
}

// isStatement reports whether core reads as host control flow rather than
// markup text: a bare brace, an assignment or increment following an
// identifier path, or a call or index hanging directly off one.
func isStatement(core string) bool {
	var s = scanner{text: core}
	var path = false // last non-space plain char extended an identifier path
	var adjacent = false
	for !s.done() {
		var c = s.next()
		switch {
		case c == '{' || c == '}':
			return true
		case c == '(' && adjacent:
			return true
		case c == '[' && adjacent:
			return true
		case (c == '+' || c == '-') && s.peek() == c && path:
			return true
		case c == '=' && path && s.peek() != '=' && s.peek() != '>' && s.prev() != '=':
			return true
		case (c == '+' || c == '-' || c == '*' || c == '/' || c == '%' ||
			c == '&' || c == '|' || c == '^') && s.peek() == '=' &&
			s.peekAt(1) != '=' && path:
			return true
		}
		if isSpace(c) {
			adjacent = false
			continue
		}
		path = isPathChar(c)
		adjacent = path
	}
	return false
}

func isPathChar(c byte) bool {
	return c == '_' || c == '$' || c == '.' || c == ')' || c == ']' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// scanner walks text one byte at a time, skipping over quoted strings,
// comments, template literals, and interpolations so that callers only see
// characters in plain context.
type scanner struct {
	text string
	pos  int
}

func (s *scanner) done() bool {
	return s.pos >= len(s.text)
}

// next returns the next plain-context byte, consuming any quoted or commented
// region that starts at the current position.
func (s *scanner) next() byte {
	var c = s.text[s.pos]
	s.pos++
	switch c {
	case '\'', '"':
		s.skipQuote(c)
		return 0
	case '`':
		s.skipBacktick()
		return 0
	case '/':
		if s.pos < len(s.text) {
			switch s.text[s.pos] {
			case '/':
				s.skipLineComment()
				return 0
			case '*':
				s.skipBlockComment()
				return 0
			}
		}
	case '$':
		if s.pos < len(s.text) && s.text[s.pos] == '{' {
			s.pos++
			s.skipInterpolation()
			return 0
		}
	}
	return c
}

func (s *scanner) peek() byte {
	if s.pos >= len(s.text) {
		return 0
	}
	return s.text[s.pos]
}

func (s *scanner) peekAt(n int) byte {
	if s.pos+n >= len(s.text) {
		return 0
	}
	return s.text[s.pos+n]
}

func (s *scanner) prev() byte {
	if s.pos < 2 {
		return 0
	}
	return s.text[s.pos-2]
}

func (s *scanner) skipQuote(quote byte) {
	for s.pos < len(s.text) {
		var c = s.text[s.pos]
		s.pos++
		if c == '\\' {
			s.pos++
			continue
		}
		if c == quote || c == '\n' {
			return
		}
	}
}

func (s *scanner) skipBacktick() {
	for s.pos < len(s.text) {
		var c = s.text[s.pos]
		s.pos++
		switch c {
		case '\\':
			s.pos++
		case '$':
			if s.pos < len(s.text) && s.text[s.pos] == '{' {
				s.pos++
				s.skipInterpolation()
			}
		case '`':
			return
		}
	}
}

func (s *scanner) skipLineComment() {
	for s.pos < len(s.text) && s.text[s.pos] != '\n' {
		s.pos++
	}
}

func (s *scanner) skipBlockComment() {
	s.pos++ // consume the *
	for s.pos < len(s.text) {
		if s.text[s.pos] == '*' && s.pos+1 < len(s.text) && s.text[s.pos+1] == '/' {
			s.pos += 2
			return
		}
		s.pos++
	}
}

// skipInterpolation consumes up to the matching close brace, honoring nested
// strings and template literals.
func (s *scanner) skipInterpolation() {
	var depth = 0
	for s.pos < len(s.text) {
		var c = s.text[s.pos]
		s.pos++
		switch c {
		case '\\':
			s.pos++
		case '\'', '"':
			s.skipQuote(c)
		case '`':
			s.skipBacktick()
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return
			}
			depth--
		}
	}
}
