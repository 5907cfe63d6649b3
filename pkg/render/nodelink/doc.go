// Package nodelink renders codebase graphs as node-link diagrams.
//
// # Overview
//
// Nodes appear as rounded boxes at the positions computed by the graph
// builder or the layered layout; containment edges are solid, simulated
// dependencies dashed. Positions are pinned, so Graphviz (neato) only routes
// edges and draws.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, render.DefaultSettings(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: node labels include the level and tree path
//   - Highlight: id of the selected node, outlined in the highlight color
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
