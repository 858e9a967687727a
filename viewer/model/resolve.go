package model

// Resolve returns the children of the directory addressed by p.
//
// Empty segments of p are ignored, so "", "/" and "//" all address the root
// and return tree unchanged. Every segment has to match a directory by name,
// a segment naming a file or nothing at all fails the lookup with ok set to false.
// An existing but empty directory yields an empty, non-nil slice.
//
// Lookup is a linear scan per segment. This is fine for documentation
// trees but will not scale to huge directories.
func Resolve(tree []*Node, p string) (children []*Node, ok bool) {
	nodes := tree
	for _, segment := range Segments(p) {
		dir := findDir(nodes, segment)
		if dir == nil {
			return nil, false
		}

		nodes = dir.Children
	}

	if nodes == nil {
		nodes = []*Node{}
	}

	return nodes, true
}

func findDir(nodes []*Node, name string) *Node {
	for _, node := range nodes {
		if node.IsDir() && node.Name == name {
			return node
		}
	}

	return nil
}
