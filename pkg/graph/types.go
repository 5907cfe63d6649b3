package graph

// =============================================================================
// Constants
// =============================================================================

// Edge kinds.
const (
	EdgeContainment = "containment"
	EdgeDependency  = "simulated-dependency"
)

// Edge labels. Containment edges are always labelled LabelContains; simulated
// dependencies carry LabelImports or LabelExports.
const (
	LabelContains = "contains"
	LabelImports  = "imports"
	LabelExports  = "exports"
)

// Node kinds. Tree-built graphs reuse the tree kinds ("file", "folder").
const (
	KindFile   = "file"
	KindFolder = "folder"
)

// =============================================================================
// Node, Edge, Position
// =============================================================================

// Position is a node's location in layout coordinates. Y grows downward.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a vertex of the codebase graph.
type Node struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind,omitempty"`
	Level    int      `json:"level"`
	Position Position `json:"position"`
	Path     string   `json:"path,omitempty"` // tree path, empty for graphs not built from a tree
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
	Label  string `json:"label,omitempty"`
}

// IsContainment reports whether the edge mirrors a tree parent-child relation.
func (e Edge) IsContainment() bool { return e.Kind == EdgeContainment }

// IsDependency reports whether the edge is a simulated dependency.
func (e Edge) IsDependency() bool { return e.Kind == EdgeDependency }

// Type returns the label if set, otherwise the kind. It is the "Type" column
// of CSV exports.
func (e Edge) Type() string {
	if e.Label != "" {
		return e.Label
	}
	return e.Kind
}

// =============================================================================
// Document - Wire Format
// =============================================================================

// Document is the canonical serialization format for graphs, used for JSON
// files, API responses and cache entries.
//
// Nodes and edges keep the order of the graph they came from, so a
// marshal/unmarshal round trip preserves the layout tie-break order.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Document returns the serializable form of g.
func (g *Graph) Document() Document {
	return Document{Nodes: g.Nodes(), Edges: g.Edges()}
}

// FromDocument builds a graph from its serialized form.
// Returns an error if the document violates graph constraints.
func FromDocument(doc Document) (*Graph, error) {
	g := New()
	for _, n := range doc.Nodes {
		if err := g.AddNode(n); err != nil {
			return nil, wrapNode(n.ID, err)
		}
	}
	for _, e := range doc.Edges {
		if err := g.AddEdge(e); err != nil {
			return nil, wrapEdge(e, err)
		}
	}
	return g, nil
}
