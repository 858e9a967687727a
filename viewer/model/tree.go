package model

import (
	"context"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// MarkdownExtensions lists the file extensions considered to be markdown documents.
var MarkdownExtensions = []string{".md", ".markdown"}

// IsMarkdown returns true if name has a markdown file extension.
func IsMarkdown(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, mdExt := range MarkdownExtensions {
		if ext == mdExt {
			return true
		}
	}

	return false
}

// SkipFunc decides if the entry at path p is excluded from the tree.
type SkipFunc func(p string, d fs.DirEntry) bool

// Build reads the document tree from contentFS.
// Directories are always included, files only if they are markdown documents.
// Symlinks to documents are included, symlinked directories are not followed.
// Children are sorted directories first, then by name.
func Build(ctx context.Context, contentFS fs.FS, skip SkipFunc) ([]*Node, error) {
	if skip == nil {
		skip = func(string, fs.DirEntry) bool { return false }
	}

	return buildDir(ctx, contentFS, ".", skip)
}

func buildDir(ctx context.Context, contentFS fs.FS, dir string, skip SkipFunc) ([]*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(contentFS, dir)
	if err != nil {
		return nil, err
	}

	nodes := []*Node{}
	for _, entry := range entries {
		fullPath := path.Join(dir, entry.Name())
		if skip(fullPath, entry) {
			continue
		}

		if entry.IsDir() {
			// 🌲 Recurse into subtree.
			children, err := buildDir(ctx, contentFS, fullPath, skip)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, NewDirectory(entry.Name(), children...))

			continue
		}

		if IsMarkdown(entry.Name()) && isRegularFile(contentFS, fullPath, entry) {
			nodes = append(nodes, NewFile(entry.Name()))
		}
	}
	Sort(nodes)

	return nodes, nil
}

// isRegularFile resolves symlinks, links to directories or dangling links are no documents.
func isRegularFile(contentFS fs.FS, p string, entry fs.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}

	info, err := fs.Stat(contentFS, p)
	return err == nil && info.Mode().IsRegular()
}

// Sort orders nodes directories first, then by name.
func Sort(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.IsDir() != b.IsDir() {
			return a.IsDir()
		}

		return a.Name < b.Name
	})
}
