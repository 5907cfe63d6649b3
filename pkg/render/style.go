package render

import "github.com/matzehuels/codegraph/pkg/graph"

// StyledNode is a graph node with its cosmetic attributes resolved.
type StyledNode struct {
	graph.Node
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Padding int    `json:"padding"`
	Fill    string `json:"fill"`
	Stroke  string `json:"stroke"`
	Text    string `json:"text"`
}

// StyledEdge is a graph edge with its cosmetic attributes resolved.
type StyledEdge struct {
	graph.Edge
	Color    string `json:"color"`
	Dashed   bool   `json:"dashed"`
	Animated bool   `json:"animated"`
	Curve    string `json:"curve"`
}

// Styled is a graph ready for display.
type Styled struct {
	Nodes    []StyledNode `json:"nodes"`
	Edges    []StyledEdge `json:"edges"`
	Settings Settings     `json:"settings"`
}

// Apply resolves s against every node and edge of g. It reads g only:
// ids, levels, positions and edges come out exactly as they went in.
// Invalid settings fall back to the defaults field by field.
func Apply(g *graph.Graph, s Settings) Styled {
	s = sanitize(s)
	pal := PaletteFor(s.ColorScheme)

	out := Styled{
		Nodes:    make([]StyledNode, 0, g.NodeCount()),
		Edges:    make([]StyledEdge, 0, g.EdgeCount()),
		Settings: s,
	}
	for _, n := range g.Nodes() {
		sn := StyledNode{
			Node:    n,
			Width:   s.NodeSize,
			Height:  s.NodeSize / 3,
			Padding: s.NodePadding,
			Fill:    pal.File,
			Stroke:  pal.Stroke,
			Text:    pal.Text,
		}
		switch {
		case g.InDegree(n.ID) == 0 && n.Level == 0:
			sn.Fill, sn.Text = pal.Root, "#ffffff"
		case n.Kind == graph.KindFolder:
			sn.Fill = pal.Folder
		}
		out.Nodes = append(out.Nodes, sn)
	}
	for _, e := range g.Edges() {
		se := StyledEdge{Edge: e, Color: pal.Contains, Curve: s.EdgeStyle}
		if e.IsDependency() {
			se.Color, se.Dashed, se.Animated = pal.Dependency, true, true
		}
		out.Edges = append(out.Edges, se)
	}
	return out
}

// sanitize replaces every field that fails its validation tag with the
// default.
func sanitize(s Settings) Settings {
	d := DefaultSettings()
	if !fieldValid(s, "NodeSize") {
		s.NodeSize = d.NodeSize
	}
	if !fieldValid(s, "NodePadding") {
		s.NodePadding = d.NodePadding
	}
	if !fieldValid(s, "EdgeStyle") {
		s.EdgeStyle = d.EdgeStyle
	}
	if !fieldValid(s, "ColorScheme") {
		s.ColorScheme = d.ColorScheme
	}
	return s
}

func fieldValid(s Settings, field string) bool {
	return validate.StructPartial(s, field) == nil
}
