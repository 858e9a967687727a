// Package content provides the document tree snapshots served by the viewer.
//
// A Library scans a directory once per Refresh and publishes the result as an
// immutable Snapshot. Callers take one snapshot per request and use it for
// every lookup of that request.
package content

import (
	"context"
	"fmt"
	"net/http"

	"github.com/klingtnet/mdv/frontmatter"
	"github.com/klingtnet/mdv/viewer/model"
)

// ErrNotFound is returned for paths that do not address a document.
var ErrNotFound = fmt.Errorf("not found")

// MaxQueryLength is the maximum length of a search query in bytes.
const MaxQueryLength = 256

// DefaultMaxSearchResults caps the number of search results unless configured otherwise.
const DefaultMaxSearchResults = 100

// Provider hands out tree snapshots and answers search queries.
type Provider interface {
	// Current returns the latest snapshot.
	Current() Snapshot
	// Refresh rescans the tree and replaces the current snapshot.
	Refresh(ctx context.Context) error
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// Snapshot is an immutable view of the document tree.
type Snapshot interface {
	// IsFile returns true if p addresses a document.
	IsFile(p string) bool
	// Content returns the document at p, either verbatim if raw is set or converted to HTML.
	Content(p string, raw bool) (string, error)
	// Tree returns the top-level nodes. The result must not be modified.
	Tree() []*model.Node
	// Title returns the front-matter title of the document at p, if any.
	Title(p string) string
	// Meta returns the front-matter of the document at p.
	Meta(p string) Meta
}

// Meta is the front-matter understood by the viewer.
type Meta struct {
	Title       string                  `json:"title" yaml:"title" toml:"title"`
	Description string                  `json:"description" yaml:"description" toml:"description"`
	Author      string                  `json:"author" yaml:"author" toml:"author"`
	Date        *frontmatter.SimpleDate `json:"date" yaml:"date" toml:"date"`
}

// SearchResult is a single matching line of a document.
type SearchResult struct {
	// Path of the document relative to the root.
	Path  string `json:"path"`
	Name  string `json:"name"`
	Title string `json:"title"`
	// Line number, starting at one.
	Line    int    `json:"line"`
	Snippet string `json:"snippet"`
	// Anchor is the heading ID of the section containing the line.
	// It is empty for lines before the first heading.
	Anchor string `json:"anchor"`
}

// QueryError reports an unacceptable search query.
type QueryError struct {
	Query  string
	Reason string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("bad query: %s", e.Reason)
}

// HTTPStatus implements the status carrying error interface of the server.
func (e *QueryError) HTTPStatus() int {
	return http.StatusBadRequest
}
