package tree

import (
	"errors"
	"strings"
)

// Kind distinguishes files from folders.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// PathSeparator joins node names into tree paths ("project/src/index.ts").
const PathSeparator = "/"

// ErrStop can be returned from a [Walk] callback to end the walk early
// without reporting an error.
var ErrStop = errors.New("stop walk")

// Node is one entry of the synthetic hierarchy.
// Size is only meaningful for files.
type Node struct {
	Name     string  `json:"name"`
	Kind     Kind    `json:"kind"`
	Size     int64   `json:"size,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// NewFolder returns a folder node with the given children.
func NewFolder(name string, children ...*Node) *Node {
	return &Node{Name: name, Kind: KindFolder, Children: children}
}

// NewFile returns a file node.
func NewFile(name string, size int64) *Node {
	return &Node{Name: name, Kind: KindFile, Size: size}
}

// IsFolder reports whether n is a folder.
func (n *Node) IsFolder() bool { return n.Kind == KindFolder }

// IsFile reports whether n is a file.
func (n *Node) IsFile() bool { return n.Kind == KindFile }

// Visit describes one node during a [Walk].
type Visit struct {
	Node     *Node
	Parent   *Node  // nil for the root
	Depth    int    // 0 for the root
	Index    int    // position among the parent's children
	Siblings int    // number of children of the parent (1 for the root)
	Path     string // names from the root joined by PathSeparator
}

// Walk calls fn for every node of root in depth-first pre-order, children in
// slice order. Returning [ErrStop] ends the walk and Walk returns nil; any
// other error ends the walk and is returned. A nil root is a no-op and nil
// children are skipped.
func Walk(root *Node, fn func(Visit) error) error {
	if root == nil {
		return nil
	}
	stack := []Visit{{Node: root, Siblings: 1, Path: root.Name}}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := fn(v); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}

		kids := v.Node.Children
		for i := len(kids) - 1; i >= 0; i-- {
			if kids[i] == nil {
				continue
			}
			stack = append(stack, Visit{
				Node:     kids[i],
				Parent:   v.Node,
				Depth:    v.Depth + 1,
				Index:    i,
				Siblings: len(kids),
				Path:     v.Path + PathSeparator + kids[i].Name,
			})
		}
	}
	return nil
}

// Count returns the number of nodes in the tree, including the root.
func Count(root *Node) int {
	n := 0
	_ = Walk(root, func(Visit) error { n++; return nil })
	return n
}

// CountKind returns the number of nodes of the given kind.
func CountKind(root *Node, kind Kind) int {
	n := 0
	_ = Walk(root, func(v Visit) error {
		if v.Node.Kind == kind {
			n++
		}
		return nil
	})
	return n
}

// Depth returns the depth of the deepest node (0 for a lone root, -1 for nil).
func Depth(root *Node) int {
	d := -1
	_ = Walk(root, func(v Visit) error {
		d = max(d, v.Depth)
		return nil
	})
	return d
}

// TotalSize sums the sizes of all files.
func TotalSize(root *Node) int64 {
	var total int64
	_ = Walk(root, func(v Visit) error {
		if v.Node.IsFile() {
			total += v.Node.Size
		}
		return nil
	})
	return total
}

// Find returns the node at path, where path starts with the root's name.
// The second result is false if no node matches.
func Find(root *Node, path string) (*Node, bool) {
	if root == nil || path == "" {
		return nil, false
	}
	parts := strings.Split(path, PathSeparator)
	if parts[0] != root.Name {
		return nil, false
	}
	cur := root
	for _, name := range parts[1:] {
		next := childNamed(cur, name)
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func childNamed(n *Node, name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Clone returns a deep copy of root.
func Clone(root *Node) *Node {
	if root == nil {
		return nil
	}
	out := &Node{Name: root.Name, Kind: root.Kind, Size: root.Size}
	if len(root.Children) > 0 {
		out.Children = make([]*Node, len(root.Children))
		for i, c := range root.Children {
			out.Children[i] = Clone(c)
		}
	}
	return out
}
