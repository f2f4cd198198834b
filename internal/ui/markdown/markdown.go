// Package markdown renders the static markdown pages of the TUI.
package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// noMarginStyle drops glamour's document margins so pages line up with
// the tab bar.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps a glamour renderer for one word wrap width.
//
// The style is a glamour standard style name ("dark" or "light"). Auto
// detection is not used: it queries the terminal while the program owns stdin.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
	style    string
}

// New creates a renderer wrapping at width.
func New(width int, style string) (*Renderer, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width, style: style}, nil
}

// Width returns the word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render converts markdown to styled terminal text without the trailing
// blank lines glamour adds.
func (r *Renderer) Render(md string) (string, error) {
	out, err := r.renderer.Render(md)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n "), nil
}

// Page renders one fixed markdown source and keeps the result until the
// width changes. A zero Page is not usable; create it with NewPage.
type Page struct {
	source string
	style  string
	width  int
	cached string
}

// NewPage creates a page for source rendered with style.
func NewPage(source, style string) *Page {
	return &Page{source: source, style: style}
}

// View returns the page rendered for width. Rendering errors fall back to
// the raw markdown.
func (p *Page) View(width int) string {
	if width <= 0 {
		return ""
	}
	if p.width == width && p.cached != "" {
		return p.cached
	}
	p.width = width
	p.cached = p.source

	r, err := New(width, p.style)
	if err != nil {
		return p.cached
	}
	if out, err := r.Render(p.source); err == nil {
		p.cached = out
	}
	return p.cached
}
