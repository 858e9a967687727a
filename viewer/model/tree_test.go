package model

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/klingtnet/mdv/internal/testutils"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tree, err := Build(context.Background(), testutils.NewTestContentFS(t), nil)
	require.NoError(t, err)

	expected := []*Node{
		NewDirectory("docs", NewFile("a.md"), NewFile("b.md")),
		NewDirectory("node_modules", NewDirectory("pkg", NewFile("readme.md"))),
		NewFile("readme.md"),
	}
	require.Equal(t, expected, tree)
}

func TestBuildSkip(t *testing.T) {
	contentFS := fstest.MapFS{
		"b.md":              {},
		"A.markdown":        {},
		"image.png":         {},
		"drafts/wip.md":     {},
		"zzz/keep.md":       {},
		"empty/.keep":       {},
		"upper/README.MD":   {},
		"upper/notes.txt":   {},
		"drafts/ready/x.md": {},
	}
	skip := func(p string, d fs.DirEntry) bool {
		return strings.HasPrefix(d.Name(), ".") || p == "drafts"
	}

	tree, err := Build(context.Background(), contentFS, skip)
	require.NoError(t, err)

	expected := []*Node{
		NewDirectory("empty"),
		NewDirectory("upper", NewFile("README.MD")),
		NewDirectory("zzz", NewFile("keep.md")),
		NewFile("A.markdown"),
		NewFile("b.md"),
	}
	require.Equal(t, expected, tree)
}

func TestBuildCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, testutils.NewTestContentFS(t), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWalk(t *testing.T) {
	var paths []string
	err := Walk(scenarioTree(), func(p string, node *Node) error {
		paths = append(paths, p)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"docs", "docs/a.md", "docs/b.md", "docs/empty", "readme.md"}, paths)
	require.Equal(t, 5, Count(scenarioTree()))

	stop := fs.SkipAll
	err = Walk(scenarioTree(), func(p string, node *Node) error {
		if p == "docs/a.md" {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
}

func TestIsMarkdown(t *testing.T) {
	tCases := []struct {
		name     string
		expected bool
	}{
		{"readme.md", true},
		{"README.MD", true},
		{"notes.markdown", true},
		{"notes.txt", false},
		{"md", false},
		{"archive.md.gz", false},
	}
	for _, tCase := range tCases {
		require.Equal(t, tCase.expected, IsMarkdown(tCase.name), tCase.name)
	}
}

func TestNodeJSON(t *testing.T) {
	data, err := json.Marshal(scenarioTree())
	require.NoError(t, err)
	require.JSONEq(t, `[
		{"type": "directory", "name": "docs", "children": [
			{"type": "file", "name": "a.md"},
			{"type": "file", "name": "b.md"},
			{"type": "directory", "name": "empty", "children": []}
		]},
		{"type": "file", "name": "readme.md"}
	]`, string(data))
}

func TestBuildSymlinks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.md"), []byte("# Real"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "inner.md"), []byte("# Inner"), 0o644))
	for link, target := range map[string]string{
		"link.md":     "real.md",
		"dir.md":      "sub",
		"dangling.md": "missing.md",
		"linked-sub":  "sub",
	} {
		require.NoError(t, os.Symlink(target, filepath.Join(dir, link)))
	}

	tree, err := Build(context.Background(), os.DirFS(dir), nil)
	require.NoError(t, err)

	expected := []*Node{
		NewDirectory("sub", NewFile("inner.md")),
		NewFile("link.md"),
		NewFile("real.md"),
	}
	require.Equal(t, expected, tree)
}
