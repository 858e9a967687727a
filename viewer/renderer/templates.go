package renderer

import (
	"html/template"
	"io/fs"
	"net/url"
	"path"
	"strings"
	texttemplate "text/template"

	"github.com/klingtnet/mdv/internal"
	"github.com/klingtnet/mdv/viewer/model"
)

// Prefixes of the two page chromes.
const (
	PrefixViewer = "v"
	PrefixPlain  = "m"
)

// Templates are used by the Pipeline to render HTML pages.
type Templates struct {
	// Viewer is the page template with full navigation chrome.
	Viewer *template.Template
	// Plain is the minimal page template.
	Plain *template.Template
	// Listing renders a directory listing as markdown.
	Listing *texttemplate.Template
}

// NewTemplates parses templates from the given fs.FS and provides a set of default template functions.
// The template folder is expected to contain head.gohtml, viewer.gohtml, plain.gohtml and tree.gomd,
// where head.gohtml is shared by the viewer and plain template.
func NewTemplates(templateFS fs.FS) (*Templates, error) {
	fns := defaultFuncMap()

	viewer, err := template.New("").Funcs(fns).ParseFS(templateFS, "head.gohtml", "viewer.gohtml")
	if err != nil {
		return nil, err
	}
	plain, err := template.New("").Funcs(fns).ParseFS(templateFS, "head.gohtml", "plain.gohtml")
	if err != nil {
		return nil, err
	}
	listing, err := texttemplate.New("").Funcs(texttemplate.FuncMap(fns)).ParseFS(templateFS, "tree.gomd")
	if err != nil {
		return nil, err
	}

	return &Templates{
		Viewer:  viewer,
		Plain:   plain,
		Listing: listing,
	}, nil
}

// Page selects the page template and the name to execute for the given prefix.
func (t *Templates) Page(prefix string) (*template.Template, string, error) {
	switch prefix {
	case PrefixViewer:
		return t.Viewer, "viewer.gohtml", nil
	case PrefixPlain:
		return t.Plain, "plain.gohtml", nil
	default:
		return nil, "", ErrUnknownPrefix
	}
}

// ListingLink returns the link to the child name of the directory root below the route prefix.
// Every segment is path escaped, parentheses are escaped as well so that
// the link can be used as markdown link destination.
func ListingLink(prefix, root, name string) string {
	segments := model.Segments(path.Join(root, name))
	for i, segment := range segments {
		segment = url.PathEscape(segment)
		segment = strings.ReplaceAll(segment, "(", "%28")
		segment = strings.ReplaceAll(segment, ")", "%29")
		segments[i] = segment
	}

	return "/" + prefix + "/" + strings.Join(segments, "/")
}

// EscapeMarkdown backslash-escapes all ASCII punctuation of s.
func EscapeMarkdown(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r < 128 && strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r) {
			sb.WriteRune('\\')
		}
		sb.WriteRune(r)
	}

	return sb.String()
}

// Crumb is a single part of a breadcrumb navigation.
type Crumb struct {
	Name, Link string
}

// Breadcrumbs returns one Crumb per segment of p, each linking to its directory below prefix.
func Breadcrumbs(prefix, p string) []Crumb {
	var crumbs []Crumb
	parent := ""
	for _, segment := range model.Segments(p) {
		crumbs = append(crumbs, Crumb{Name: segment, Link: ListingLink(prefix, parent, segment)})
		parent = path.Join(parent, segment)
	}

	return crumbs
}

// DocumentTitle derives a human readable title from a document path,
// e.g. "guides/getting-started.md" becomes "Getting Started".
func DocumentTitle(p string) string {
	name := path.Base("/" + model.Clean(p))
	if name == "/" {
		return "Index"
	}
	name = strings.TrimSuffix(name, path.Ext(name))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)

	return internal.TitleCase(name)
}

func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"link":        ListingLink,
		"escape":      EscapeMarkdown,
		"breadcrumbs": Breadcrumbs,
		"rawLink": func(p string) string {
			return ListingLink("t", "", p)
		},
		"cleanPath": func(p string) string { return "/" + model.Clean(p) },
	}
}

// TemplateData contains data used to render page templates.
type TemplateData struct {
	Title  string
	Prefix string
	// Path of the rendered file or directory, relative to the root.
	Path string
	// IsFile is false for directory listings.
	IsFile       bool
	Content      template.HTML
	HighlightCSS template.CSS
}

// ListingData contains data used to render the directory listing template.
type ListingData struct {
	Prefix string
	Root   string
	Tree   []*model.Node
}
