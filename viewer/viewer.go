// Package viewer holds the configuration and default assets of the markdown viewer
// and renders a document tree to static files.
package viewer

import (
	"embed"
	"io/fs"
	"strings"
)

//go:embed templates/*
var defaultTemplateFS embed.FS

// DefaultTemplateFS returns the embedded page templates.
func DefaultTemplateFS() fs.FS {
	templateFS, err := fs.Sub(defaultTemplateFS, "templates")
	if err != nil {
		panic(err)
	}
	return templateFS
}

//go:embed static
var defaultStaticFS embed.FS

// DefaultStaticFS returns the embedded stylesheets and scripts.
func DefaultStaticFS() fs.FS {
	staticFS, err := fs.Sub(defaultStaticFS, "static")
	if err != nil {
		panic(err)
	}
	return staticFS
}

// AbsLink prefixes the link p with baseURL.
func AbsLink(baseURL string, p string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(p, "/")
}
