// Package model contains the document tree served by the viewer.
package model

import (
	"encoding/json"
	"path"
	"strings"
)

// NodeType tags a Node as file or directory.
type NodeType string

const (
	TypeFile      NodeType = "file"
	TypeDirectory NodeType = "directory"
)

// Node is a single entry of the document tree.
//
// Trees are snapshots, nothing outside of the tree builder is allowed to
// modify a node after it has been handed out.
type Node struct {
	// Type is either TypeFile or TypeDirectory.
	Type NodeType `json:"type"`
	// Name is the path segment of the node, it never contains a slash.
	Name string `json:"name"`
	// Children of a directory, ordered. Always empty for files.
	Children []*Node `json:"children,omitempty"`
}

// NewFile returns a file node.
func NewFile(name string) *Node {
	return &Node{Type: TypeFile, Name: name}
}

// NewDirectory returns a directory node holding children.
func NewDirectory(name string, children ...*Node) *Node {
	if children == nil {
		children = []*Node{}
	}

	return &Node{Type: TypeDirectory, Name: name, Children: children}
}

// IsDir returns true for directory nodes.
func (n *Node) IsDir() bool {
	return n.Type == TypeDirectory
}

type nodeJSON struct {
	Type     NodeType `json:"type"`
	Name     string   `json:"name"`
	Children *[]*Node `json:"children,omitempty"`
}

// MarshalJSON implements json.Marshaler.
// Directories always carry a children array, files never do.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{Type: n.Type, Name: n.Name}
	if n.IsDir() {
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		out.Children = &children
	}

	return json.Marshal(out)
}

// Segments splits p into its non-empty path segments.
func Segments(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
}

// Clean returns p without leading, trailing or repeated slashes.
// The root is represented by the empty string.
func Clean(p string) string {
	return strings.Join(Segments(p), "/")
}

// WalkFunc is called for every node visited by Walk.
// p is the slash separated path of the node starting from the root.
type WalkFunc func(p string, node *Node) error

// Walk calls fn for every node of the tree in depth-first order.
func Walk(tree []*Node, fn WalkFunc) error {
	return walk("", tree, fn)
}

func walk(parent string, nodes []*Node, fn WalkFunc) error {
	for _, node := range nodes {
		p := path.Join(parent, node.Name)
		err := fn(p, node)
		if err != nil {
			return err
		}

		if node.IsDir() {
			err = walk(p, node.Children, fn)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// Count returns the number of nodes in the tree.
func Count(tree []*Node) int {
	n := 0
	_ = Walk(tree, func(string, *Node) error {
		n++
		return nil
	})

	return n
}
