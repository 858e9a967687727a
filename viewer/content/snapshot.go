package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/armon/go-radix"
	"github.com/klingtnet/mdv/frontmatter"
	"github.com/klingtnet/mdv/viewer/model"
	"github.com/klingtnet/mdv/viewer/renderer"
	ignore "github.com/sabhiram/go-gitignore"
)

// snapshot implements Snapshot, it is never modified after a Refresh published it.
type snapshot struct {
	contentFS fs.FS
	md        renderer.Converter
	tree      []*model.Node
	// index maps the cleaned path of every node to the node.
	index *radix.Tree
	// matcher holds the rules of the ignore file, nil if there is none.
	matcher *ignore.GitIgnore
	// documents lists the paths of all files in walk order.
	documents []string
	meta      map[string]Meta
}

func (s *snapshot) lookup(p string) (*model.Node, bool) {
	v, ok := s.index.Get(model.Clean(p))
	if !ok {
		return nil, false
	}

	return v.(*model.Node), true
}

// IsFile implements Snapshot.
func (s *snapshot) IsFile(p string) bool {
	node, ok := s.lookup(p)
	return ok && !node.IsDir()
}

// Content implements Snapshot.
func (s *snapshot) Content(p string, raw bool) (string, error) {
	if !s.IsFile(p) {
		return "", ErrNotFound
	}

	data, err := fs.ReadFile(s.contentFS, model.Clean(p))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if err != nil {
		return "", err
	}

	if raw {
		return string(data), nil
	}

	// Split returns the document unchanged if the front-matter is missing or broken.
	body, _ := frontmatter.Split(context.Background(), data, &Meta{})

	html := bytes.NewBuffer(make([]byte, 0, 2*len(body)))
	err = s.md.Convert(body, html)
	if err != nil {
		return "", err
	}

	return html.String(), nil
}

// Tree implements Snapshot.
func (s *snapshot) Tree() []*model.Node {
	return s.tree
}

// Title implements Snapshot.
func (s *snapshot) Title(p string) string {
	return s.meta[model.Clean(p)].Title
}

// Meta implements Snapshot.
func (s *snapshot) Meta(p string) Meta {
	return s.meta[model.Clean(p)]
}

var _ Snapshot = &snapshot{}
