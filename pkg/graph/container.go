package graph

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidEdgeID is returned by [Graph.AddEdge] when the edge ID is empty.
	ErrInvalidEdgeID = errors.New("edge ID must not be empty")

	// ErrDuplicateEdgeID is returned by [Graph.AddEdge] when an edge with the
	// same ID already exists in the graph.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the source node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the target node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrUnknownNode is returned by setters that address a missing node.
	ErrUnknownNode = errors.New("unknown node")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")
)

// Graph is a directed graph of codebase nodes.
//
// Unlike a map-backed graph, Graph keeps nodes and edges in insertion order:
// the layered layout breaks ties by the order in which the builder emitted
// nodes, and JSON output follows the same order.
//
// Cycles are allowed. Simulated dependency edges routinely point back up the
// tree.
//
// The zero value is not usable - use New to create a valid Graph instance.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes    []Node
	index    map[string]int // node ID -> position in nodes
	edges    []Edge
	edgeIDs  map[string]struct{}
	outgoing map[string][]string // node ID -> target IDs
	incoming map[string][]string // node ID -> source IDs
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		index:    make(map[string]int),
		edgeIDs:  make(map[string]struct{}),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode appends a node to the graph.
// Returns ErrInvalidNodeID if the ID is empty or ErrDuplicateNodeID if it is
// already in use.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.index[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	g.index[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return nil
}

// AddEdge appends a directed edge between two existing nodes.
// Multiple edges between the same pair are allowed as long as their IDs
// differ.
func (g *Graph) AddEdge(e Edge) error {
	if e.ID == "" {
		return ErrInvalidEdgeID
	}
	if _, exists := g.edgeIDs[e.ID]; exists {
		return ErrDuplicateEdgeID
	}
	if _, ok := g.index[e.Source]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.index[e.Target]; !ok {
		return ErrUnknownTargetNode
	}
	g.edgeIDs[e.ID] = struct{}{}
	g.edges = append(g.edges, e)
	g.outgoing[e.Source] = append(g.outgoing[e.Source], e.Target)
	g.incoming[e.Target] = append(g.incoming[e.Target], e.Source)
	return nil
}

// Nodes returns a copy of all nodes in insertion order.
func (g *Graph) Nodes() []Node { return slices.Clone(g.nodes) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node with the given ID and true, or the zero Node and
// false if not found.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// HasNode reports whether id names a node of the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// HasEdge reports whether id names an edge of the graph.
func (g *Graph) HasEdge(id string) bool {
	_, ok := g.edgeIDs[id]
	return ok
}

// NodeByPath returns the first node whose tree path equals path.
func (g *Graph) NodeByPath(path string) (Node, bool) {
	for _, n := range g.nodes {
		if n.Path != "" && n.Path == path {
			return n, true
		}
	}
	return Node{}, false
}

// Children returns the IDs of nodes this node has edges to, in edge order.
// The returned slice should not be modified.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the IDs of nodes that have edges to this node, in edge
// order. The returned slice should not be modified.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Roots returns the IDs of nodes with no incoming edge, in node order.
func (g *Graph) Roots() []string {
	var roots []string
	for _, n := range g.nodes {
		if len(g.incoming[n.ID]) == 0 {
			roots = append(roots, n.ID)
		}
	}
	return roots
}

// EdgesOfKind returns the edges with the given kind, in insertion order.
func (g *Graph) EdgesOfKind(kind string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// SetPosition moves a node. Returns ErrUnknownNode if id is not in the graph.
func (g *Graph) SetPosition(id string, p Position) error {
	i, ok := g.index[id]
	if !ok {
		return ErrUnknownNode
	}
	g.nodes[i].Position = p
	return nil
}

// SetLevel updates a node's level. Returns ErrUnknownNode if id is not in the
// graph.
func (g *Graph) SetLevel(id string, level int) error {
	i, ok := g.index[id]
	if !ok {
		return ErrUnknownNode
	}
	g.nodes[i].Level = level
	return nil
}

// MaxLevel returns the highest node level, or 0 for an empty graph.
func (g *Graph) MaxLevel() int {
	m := 0
	for _, n := range g.nodes {
		m = max(m, n.Level)
	}
	return m
}

// Bounds returns the smallest rectangle containing every node position.
// All values are zero for an empty graph.
func (g *Graph) Bounds() (minPos, maxPos Position) {
	for i, n := range g.nodes {
		if i == 0 {
			minPos, maxPos = n.Position, n.Position
			continue
		}
		minPos.X = min(minPos.X, n.Position.X)
		minPos.Y = min(minPos.Y, n.Position.Y)
		maxPos.X = max(maxPos.X, n.Position.X)
		maxPos.Y = max(maxPos.Y, n.Position.Y)
	}
	return minPos, maxPos
}

// Clone returns a deep copy of the graph. Mutating the copy never affects g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:    slices.Clone(g.nodes),
		index:    make(map[string]int, len(g.index)),
		edges:    slices.Clone(g.edges),
		edgeIDs:  make(map[string]struct{}, len(g.edgeIDs)),
		outgoing: make(map[string][]string, len(g.outgoing)),
		incoming: make(map[string][]string, len(g.incoming)),
	}
	for k, v := range g.index {
		c.index[k] = v
	}
	for k := range g.edgeIDs {
		c.edgeIDs[k] = struct{}{}
	}
	for k, v := range g.outgoing {
		c.outgoing[k] = slices.Clone(v)
	}
	for k, v := range g.incoming {
		c.incoming[k] = slices.Clone(v)
	}
	return c
}

// Validate checks that every edge references nodes of this graph.
// AddEdge already enforces this; Validate guards graphs assembled elsewhere
// and decoded documents.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if !g.HasNode(e.Source) || !g.HasNode(e.Target) {
			return fmt.Errorf("edge %s: %w", e.ID, ErrInvalidEdgeEndpoint)
		}
	}
	return nil
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func wrapNode(id string, err error) error {
	return fmt.Errorf("add node %q: %w", id, err)
}

func wrapEdge(e Edge, err error) error {
	return fmt.Errorf("add edge %s→%s: %w", e.Source, e.Target, err)
}
