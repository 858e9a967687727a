package renderer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListingLink(t *testing.T) {
	tCases := []struct {
		name     string
		prefix   string
		root     string
		child    string
		expected string
	}{
		{"root", "v", "/", "docs", "/v/docs"},
		{"nested", "m", "/docs/guides", "intro.md", "/m/docs/guides/intro.md"},
		{"noisy root", "v", "//docs//", "a.md", "/v/docs/a.md"},
		{"spaces", "v", "/", "my notes.md", "/v/my%20notes.md"},
		{"parentheses", "v", "/", "draft (old).md", "/v/draft%20%28old%29.md"},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			require.Equal(t, tCase.expected, ListingLink(tCase.prefix, tCase.root, tCase.child))
		})
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tCases := []struct {
		in, expected string
	}{
		{"plain", "plain"},
		{"a.md", `a\.md`},
		{"[x](y)", `\[x\]\(y\)`},
		{"*bold* _it_ `code`", "\\*bold\\* \\_it\\_ \\`code\\`"},
		{":smile:", `\:smile\:`},
		{"grüße", "grüße"},
	}
	for _, tCase := range tCases {
		t.Run(tCase.in, func(t *testing.T) {
			require.Equal(t, tCase.expected, EscapeMarkdown(tCase.in))
		})
	}
}

func TestBreadcrumbs(t *testing.T) {
	require.Empty(t, Breadcrumbs("v", "/"))
	require.Equal(t, []Crumb{
		{Name: "docs", Link: "/v/docs"},
		{Name: "guides", Link: "/v/docs/guides"},
		{Name: "intro.md", Link: "/v/docs/guides/intro.md"},
	}, Breadcrumbs("v", "docs//guides/intro.md"))
}

func TestDocumentTitle(t *testing.T) {
	tCases := []struct {
		path, expected string
	}{
		{"", "Index"},
		{"/", "Index"},
		{"readme.md", "Readme"},
		{"guides/getting-started.md", "Getting Started"},
		{"guides/release_notes.markdown", "Release Notes"},
	}
	for _, tCase := range tCases {
		t.Run(tCase.path, func(t *testing.T) {
			require.Equal(t, tCase.expected, DocumentTitle(tCase.path))
		})
	}
}
