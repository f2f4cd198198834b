// Package templates holds the markdown pages shipped with the binary.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"text/template"
)

//go:embed pages
var pageFS embed.FS

// PagesFS returns the embedded page templates.
func PagesFS() fs.FS {
	return pageFS
}

// Binding is one row of the key table.
type Binding struct {
	Key  string
	Desc string
}

// HomeData fills the home page template.
type HomeData struct {
	OpenRoom string
	Compose  string
	Login    string
	Rooms    []uint64
	Bindings []Binding
}

var homeTemplate = template.Must(template.ParseFS(pageFS, "pages/home.md.tmpl"))

// Home renders the markdown shown while no tab is open.
func Home(data HomeData) (string, error) {
	var buf bytes.Buffer
	if err := homeTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering home page: %w", err)
	}
	return buf.String(), nil
}
