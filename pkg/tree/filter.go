package tree

import "strings"

// Filter returns a copy of root restricted to nodes whose name contains query
// (case-insensitive), plus their ancestors. A matching folder keeps its whole
// subtree. The root is always returned, possibly with no children.
// An empty query returns a full copy. root itself is never modified.
func Filter(root *Node, query string) *Node {
	if root == nil {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Clone(root)
	}
	if matches(root, q) {
		return Clone(root)
	}
	out := &Node{Name: root.Name, Kind: root.Kind, Size: root.Size}
	out.Children = filterChildren(root, q)
	return out
}

func filterChildren(n *Node, q string) []*Node {
	var kept []*Node
	for _, c := range n.Children {
		if matches(c, q) {
			kept = append(kept, Clone(c))
			continue
		}
		if sub := filterChildren(c, q); len(sub) > 0 {
			kept = append(kept, &Node{Name: c.Name, Kind: c.Kind, Size: c.Size, Children: sub})
		}
	}
	return kept
}

func matches(n *Node, q string) bool {
	return strings.Contains(strings.ToLower(n.Name), q)
}
