// Package renderer converts markdown and directory listings into HTML pages.
package renderer

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/klingtnet/mdv/viewer/model"
)

// ErrUnknownPrefix is returned for route prefixes without a page template.
var ErrUnknownPrefix = fmt.Errorf("unknown route prefix")

// Pipeline composes markdown conversion and page templating.
type Pipeline struct {
	md           Converter
	templates    *Templates
	highlightCSS template.CSS
}

// NewPipeline returns a Pipeline.  highlightCSS is embedded into every page
// and is expected to be trusted stylesheet source, see HighlightCSS.
func NewPipeline(md Converter, templates *Templates, highlightCSS string) *Pipeline {
	return &Pipeline{
		md:           md,
		templates:    templates,
		highlightCSS: template.CSS(highlightCSS),
	}
}

// Listing writes the intermediate markdown document of a directory listing.
func (p *Pipeline) Listing(w io.Writer, prefix, root string, children []*model.Node) error {
	return p.templates.Listing.ExecuteTemplate(w, "tree.gomd", ListingData{
		Prefix: prefix,
		Root:   "/" + model.Clean(root),
		Tree:   children,
	})
}

// Tree renders the listing of children of the directory root into the page template for prefix.
func (p *Pipeline) Tree(w io.Writer, prefix, root string, children []*model.Node) error {
	listing := bytes.NewBuffer(make([]byte, 0, 1024))
	err := p.Listing(listing, prefix, root, children)
	if err != nil {
		return fmt.Errorf("rendering listing failed: %w", err)
	}

	html := bytes.NewBuffer(make([]byte, 0, 4096))
	err = p.md.Convert(listing.Bytes(), html)
	if err != nil {
		return err
	}

	return p.page(w, prefix, TemplateData{
		Title:   "Index of /" + model.Clean(root),
		Path:    model.Clean(root),
		Content: template.HTML(html.String()),
	})
}

// File renders the already converted HTML of the document at path into the page template for prefix.
func (p *Pipeline) File(w io.Writer, prefix, path, title, html string) error {
	if title == "" {
		title = DocumentTitle(path)
	}

	return p.page(w, prefix, TemplateData{
		Title:   title,
		Path:    model.Clean(path),
		IsFile:  true,
		Content: template.HTML(html),
	})
}

func (p *Pipeline) page(w io.Writer, prefix string, data TemplateData) error {
	tmpl, name, err := p.templates.Page(prefix)
	if err != nil {
		return err
	}
	data.Prefix = prefix
	data.HighlightCSS = p.highlightCSS

	return tmpl.ExecuteTemplate(w, name, data)
}
