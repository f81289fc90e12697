// Package web embeds the HTML templates served for the page routes.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every embedded template. Page templates are named after
// their file, e.g. "history.html".
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(files, "templates/*.html"))
}
