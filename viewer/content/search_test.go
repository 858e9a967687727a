package content

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/klingtnet/mdv/internal/testutils"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	lib := newTestLibrary(t, testutils.NewTestContentFS(t), Options{})

	tCases := []struct {
		name     string
		query    string
		expected []SearchResult
	}{
		{
			name:  "across documents",
			query: "FOX",
			expected: []SearchResult{
				{Path: "docs/a.md", Name: "a.md", Title: "A", Line: 3, Snippet: "The quick brown fox.", Anchor: "alpha"},
				{Path: "docs/b.md", Name: "b.md", Title: "Bravo", Line: 6, Snippet: "Another document about a fox.", Anchor: "bravo"},
			},
		},
		{
			name:  "heading line",
			query: "second",
			expected: []SearchResult{
				{Path: "docs/a.md", Name: "a.md", Title: "A", Line: 5, Snippet: "## Second Section", Anchor: "second-section"},
			},
		},
		{
			name:  "front-matter has no anchor",
			query: "john doe",
			expected: []SearchResult{
				{Path: "readme.md", Name: "readme.md", Title: "Read Me", Line: 2, Snippet: `{"title": "Read Me", "author": "John Doe"}`, Anchor: ""},
			},
		},
		{
			name:     "excluded documents are not searched",
			query:    "vendored",
			expected: []SearchResult{},
		},
		{
			name:     "blank",
			query:    "  ",
			expected: []SearchResult{},
		},
		{
			name:     "empty",
			query:    "",
			expected: []SearchResult{},
		},
	}
	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			results, err := lib.Search(context.Background(), tCase.query)
			require.NoError(t, err)
			require.Equal(t, tCase.expected, results)
		})
	}
}

func TestSearchQueryTooLong(t *testing.T) {
	lib := newTestLibrary(t, testutils.NewTestContentFS(t), Options{})

	_, err := lib.Search(context.Background(), strings.Repeat("x", MaxQueryLength))
	require.NoError(t, err)

	_, err = lib.Search(context.Background(), strings.Repeat("x", MaxQueryLength+1))
	var queryErr *QueryError
	require.ErrorAs(t, err, &queryErr)
	require.Equal(t, http.StatusBadRequest, queryErr.HTTPStatus())
}

func TestSearchLimit(t *testing.T) {
	contentFS := fstest.MapFS{}
	for i := 0; i < 5; i++ {
		contentFS[fmt.Sprintf("doc%d.md", i)] = &fstest.MapFile{Data: []byte("needle\nhay\nneedle\n")}
	}
	lib := newTestLibrary(t, contentFS, Options{MaxSearchResults: 3})

	results, err := lib.Search(context.Background(), "needle")
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, "doc0.md", results[0].Path)
	require.Equal(t, 1, results[0].Line)
	require.Equal(t, "doc0.md", results[1].Path)
	require.Equal(t, 3, results[1].Line)
	require.Equal(t, "doc1.md", results[2].Path)
}

func TestSearchAnchors(t *testing.T) {
	doc := strings.Join([]string{
		"# Intro",
		"first match",
		"```sh",
		"# not a heading, match",
		"```",
		"## Intro ##",
		"second match",
		"#hashtag match",
	}, "\n")
	lib := newTestLibrary(t, fstest.MapFS{"doc.md": {Data: []byte(doc)}}, Options{})

	results, err := lib.Search(context.Background(), "match")
	require.NoError(t, err)

	var anchors []string
	for _, result := range results {
		anchors = append(anchors, result.Anchor)
	}
	require.Equal(t, []string{"intro", "intro", "intro-1", "intro-1"}, anchors)

	html, err := lib.Current().Content("doc.md", false)
	require.NoError(t, err)
	require.Contains(t, html, `id="intro"`)
	require.Contains(t, html, `id="intro-1"`)
}

func TestAtxHeading(t *testing.T) {
	tCases := []struct {
		line, text string
		ok         bool
	}{
		{"# Title", "Title", true},
		{"   ### Deep", "Deep", true},
		{"    # Code", "", false},
		{"####### Seven", "", false},
		{"#tag", "", false},
		{"## Closed ##", "Closed", true},
		{"# C#", "C#", true},
		{"#", "", true},
	}
	for _, tCase := range tCases {
		t.Run(tCase.line, func(t *testing.T) {
			text, ok := atxHeading(tCase.line)
			require.Equal(t, tCase.ok, ok)
			require.Equal(t, tCase.text, text)
		})
	}
}

func TestSearchSkipsVanishedDocuments(t *testing.T) {
	contentFS := testutils.NewConcurrentMapFS(fstest.MapFS{
		"a.md": {Data: []byte("fox")},
		"b.md": {Data: []byte("fox too")},
	})
	lib := newTestLibrary(t, contentFS, Options{})

	contentFS.Delete("b.md")

	results, err := lib.Search(context.Background(), "fox")
	require.NoError(t, err)
	require.Equal(t, []SearchResult{
		{Path: "a.md", Name: "a.md", Title: "A", Line: 1, Snippet: "fox", Anchor: ""},
	}, results)
}

func TestSearchSkipsUnreadableDocuments(t *testing.T) {
	contentFS := deniedFS{
		FS:     fstest.MapFS{"public.md": {Data: []byte("fox")}, "secret.md": {Data: []byte("fox")}},
		denied: "secret.md",
	}
	lib := newTestLibrary(t, contentFS, Options{})

	results, err := lib.Search(context.Background(), "fox")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "public.md", results[0].Path)
}

func TestSearchSetextHeadings(t *testing.T) {
	doc := strings.Join([]string{
		"# Hello `code` world",
		"needle one",
		"",
		"Setext Title",
		"============",
		"needle two",
		"",
		"Second needle",
		"level",
		"---",
		"needle three",
		"",
		"---",
		"needle four",
		"- list item",
		"---",
		"needle five",
	}, "\n")
	lib := newTestLibrary(t, fstest.MapFS{"doc.md": {Data: []byte(doc)}}, Options{})

	results, err := lib.Search(context.Background(), "needle")
	require.NoError(t, err)

	anchors := map[int]string{}
	for _, result := range results {
		anchors[result.Line] = result.Anchor
	}
	require.Equal(t, map[int]string{
		2:  "hello-code-world",
		6:  "setext-title",
		8:  "second-needle-level",
		11: "second-needle-level",
		14: "second-needle-level",
		17: "second-needle-level",
	}, anchors)

	html, err := lib.Current().Content("doc.md", false)
	require.NoError(t, err)
	require.Contains(t, html, `id="hello-code-world"`)
	require.Contains(t, html, `id="setext-title"`)
}

func TestSetextUnderline(t *testing.T) {
	tCases := []struct {
		line     string
		expected bool
	}{
		{"===", true},
		{"-", true},
		{"   ---  ", true},
		{"    ---", false},
		{"- - -", false},
		{"=-=", false},
		{"", false},
		{"text", false},
	}
	for _, tCase := range tCases {
		t.Run(tCase.line, func(t *testing.T) {
			require.Equal(t, tCase.expected, isSetextUnderline(tCase.line))
		})
	}
}
