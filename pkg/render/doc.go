// Package render styles codebase graphs and turns them into images.
//
// # Settings
//
// [Settings] holds the four cosmetic knobs of the graph view: node size,
// node padding, edge style and color scheme. They are validated with struct
// tags and applied after the graph is built:
//
//	s := render.DefaultSettings()
//	s.ColorScheme = render.SchemeOcean
//	if err := s.Validate(); err != nil { ... }
//	styled := render.Apply(g, s)
//
// [Apply] never changes ids, edges or positions. Rebuilding the graph is not
// needed to restyle it.
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage emits Graphviz DOT with every node pinned at its
// computed position and renders it to SVG in-process:
//
//	dot := nodelink.ToDOT(g, s, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert SVG to other formats with the external
// rsvg-convert tool (from librsvg).
//
// [nodelink]: github.com/matzehuels/codegraph/pkg/render/nodelink
package render
