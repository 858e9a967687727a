package content

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/klingtnet/mdv/viewer/model"
	ignore "github.com/sabhiram/go-gitignore"
)

// ExcludedDirs are never part of the tree, they usually hold dependencies or build output.
var ExcludedDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"venv":         true,
	"env":          true,
	"virtualenv":   true,
}

// loadIgnoreFile compiles the ignore file name in the root of contentFS.
// A missing file results in a nil matcher.
func loadIgnoreFile(contentFS fs.FS, name string) (*ignore.GitIgnore, error) {
	data, err := fs.ReadFile(contentFS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s failed: %w", name, err)
	}

	return ignore.CompileIgnoreLines(strings.Split(string(data), "\n")...), nil
}

func skipFunc(matcher *ignore.GitIgnore) model.SkipFunc {
	return func(p string, d fs.DirEntry) bool {
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			return true
		}
		if d.IsDir() && ExcludedDirs[name] {
			return true
		}
		if matcher == nil {
			return false
		}
		if d.IsDir() && matcher.MatchesPath(p+"/") {
			return true
		}

		return matcher.MatchesPath(p)
	}
}

// Excluded reports whether the entry at the slash separated path p is left out of the tree.
// The rules of the ignore file read by the last successful refresh apply.
func (l *Library) Excluded(p string, d fs.DirEntry) bool {
	return skipFunc(l.current.Load().matcher)(p, d)
}
