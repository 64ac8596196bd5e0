package compiler

import (
	"strings"

	"github.com/htxgo/htx/classify"
)

// TextFormat selects the dialect literal text is rendered in. Interpolations
// keep their value semantics in both dialects; only the literal wrapping
// differs.
type TextFormat int

const (
	// ES6 renders literals as backtick template strings.
	ES6 TextFormat = iota

	// ES5 renders literals as single-quoted strings joined with
	// concatenation, for hosts without template-literal syntax.
	ES5
)

func formatLiteral(text string, f TextFormat) string {
	var segs = classify.Segments(text)
	if f == ES5 {
		return es5Literal(segs)
	}
	return es6Literal(segs)
}

var es6Escaper = strings.NewReplacer(`\`, `\\`, "`", "\\`", "${", "\\${")

func es6Literal(segs []classify.Segment) string {
	var b strings.Builder
	b.WriteByte('`')
	for _, seg := range segs {
		if seg.Expr {
			b.WriteString("${")
			b.WriteString(seg.Text)
			b.WriteByte('}')
			continue
		}
		b.WriteString(es6Escaper.Replace(seg.Text))
	}
	b.WriteByte('`')
	return b.String()
}

func es5Literal(segs []classify.Segment) string {
	if len(segs) == 0 {
		return "''"
	}
	var parts []string
	for _, seg := range segs {
		if seg.Expr {
			parts = append(parts, "("+seg.Text+")")
			continue
		}
		parts = append(parts, quoteString(seg.Text))
	}
	return strings.Join(parts, " + ")
}

// quoteString renders s as a single-quoted JS string literal.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case ' ':
			b.WriteString(`\u2028`)
		case ' ':
			b.WriteString(`\u2029`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
