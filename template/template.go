package template

// Template is one compiled template: the markup as authored and the
// JavaScript render function generated from it.
type Template struct {
	Name   string // slash path the template is known by, e.g. "/crew/list.htx"
	Source string // the markup as authored
	JS     string // the generated render function
}
