// Package web embeds the consultation page template and its static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed all:static
var staticFS embed.FS

// Templates parses the embedded page templates.
// It panics on a malformed template since they are compiled into the binary.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// StaticHandler serves the embedded static assets. Mount it with
// http.StripPrefix so request paths are relative to static/.
func StaticHandler() http.Handler {
	subFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("web: failed to create sub filesystem: " + err.Error())
	}
	return http.FileServer(http.FS(subFS))
}
