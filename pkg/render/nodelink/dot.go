package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/render"
)

// pointsPerInch converts layout pixels to Graphviz inches.
const pointsPerInch = 72.0

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the level and tree path to node labels.
	// When false, only the label is shown.
	Detailed bool

	// Highlight is the id of the selected node, drawn with the highlight color.
	Highlight string
}

var splines = map[string]string{
	render.EdgeStraight: "line",
	render.EdgeCurved:   "curved",
	render.EdgeStep:     "ortho",
}

// ToDOT converts a graph to Graphviz DOT for node-link visualization.
//
// Every node is pinned at its layout position (pos="x,y!" with Y flipped,
// since Graphviz grows upward), so the neato engine reproduces the builder's
// or the layered layout's placement instead of computing its own. Styling
// comes from [render.Apply].
func ToDOT(g *graph.Graph, s render.Settings, opts Options) string {
	styled := render.Apply(g, s)
	pal := render.PaletteFor(styled.Settings.ColorScheme)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  splines=%s;\n", splines[styled.Settings.EdgeStyle])
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"%.2f,%.2f\"];\n",
		float64(styled.Settings.NodePadding)/pointsPerInch, float64(styled.Settings.NodePadding)/pointsPerInch/2)
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, n := range styled.Nodes {
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(n.Node, opts.Detailed)),
			fmt.Sprintf("pos=\"%.1f,%.1f!\"", n.Position.X, -n.Position.Y),
			fmt.Sprintf("width=%.2f", float64(n.Width)/pointsPerInch),
			fmt.Sprintf("height=%.2f", float64(n.Height)/pointsPerInch),
			fmt.Sprintf("fillcolor=%q", n.Fill),
			fmt.Sprintf("color=%q", n.Stroke),
			fmt.Sprintf("fontcolor=%q", n.Text),
		}
		if opts.Highlight != "" && n.ID == opts.Highlight {
			attrs = append(attrs, fmt.Sprintf("color=%q", pal.Highlight), "penwidth=3")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range styled.Edges {
		attrs := []string{fmt.Sprintf("color=%q", e.Color)}
		if e.Dashed {
			attrs = append(attrs, "style=dashed")
		}
		if e.IsDependency() {
			attrs = append(attrs, fmt.Sprintf("tooltip=%q", e.Label))
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed {
		return label
	}
	parts := []string{fmt.Sprintf("level: %d", n.Level)}
	if n.Path != "" {
		parts = append(parts, n.Path)
	}
	return label + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using the in-process Graphviz neato
// engine. Returns the SVG bytes ready for display or further conversion with
// [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg tag with a unitless one
// so browsers can scale the image.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
