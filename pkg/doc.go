// Package pkg provides the core libraries for Codegraph codebase visualization.
//
// # Overview
//
// Codegraph turns a folder hierarchy into a graph: every folder and file
// becomes a node, containment becomes edges, and simulated import edges are
// sprinkled between files. A layered layout then levels the graph from its
// roots. The pkg directory is organized into these areas:
//
//  1. [tree] - The codebase hierarchy (synthesis, selections, search)
//  2. [graph] - Graph container, builder and JSON form
//  3. [layout] - Layered layout by reachability from the roots
//  4. [render] - Cosmetic settings, palettes and the node-link renderer
//  5. [pipeline] - Orchestration (build → layout → render) with caching
//  6. [workspace] - Shared interactive state for the terminal and HTTP shells
//
// # Architecture
//
// The typical data flow through Codegraph:
//
//	Synthetic tree / sample / file selection
//	         ↓
//	    [tree] package (hierarchy of folders and files)
//	         ↓
//	    [graph] package (nodes, containment and import edges)
//	         ↓
//	    [layout] package (levels and positions)
//	         ↓
//	    JSON/CSV/DOT/SVG/PNG/PDF output
//
// # Quick Start
//
// Build and render a reproducible graph:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/codegraph/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(context.Background(), pipeline.Options{
//	    Seed:    7,
//	    Mode:    pipeline.ModeLayered,
//	    Formats: []string{pipeline.FormatSVG, pipeline.FormatCSV},
//	})
//	svg := res.Artifacts[pipeline.FormatSVG]
//
// # Main Packages
//
// ## Domain Logic
//
//   - [tree]: Node, Walk, Synthesize, FromSelection, Filter
//   - [graph]: Graph, Build, MarshalGraph, ReadGraphFile
//   - [layout]: Layered with reachability or longest-path level assignment
//   - [sample]: the built-in demo codebase with real import names
//   - [random]: seedable random source shared by synthesis and building
//
// ## Rendering and Export
//
//   - [render]: Settings (validated), palettes, styled graph for front ends
//   - [render/nodelink]: Graphviz DOT and SVG at fixed node positions
//   - [io]: tree JSON import/export and the edge list CSV
//
// ## Infrastructure
//
//   - [cache]: null, memory (LRU), file and Redis backends with stage keys
//   - [observability]: hooks for pipeline, cache and workspace metrics
//   - [errors]: coded errors shared by CLI and HTTP API
//   - [buildinfo]: version information set at link time
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/codegraph/pkg/tree
// [graph]: https://pkg.go.dev/github.com/matzehuels/codegraph/pkg/graph
// [layout]: https://pkg.go.dev/github.com/matzehuels/codegraph/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/codegraph/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/codegraph/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/codegraph/pkg/pipeline
// [workspace]: https://pkg.go.dev/github.com/matzehuels/codegraph/pkg/workspace
// [sample]: https://pkg.go.dev/github.com/matzehuels/codegraph/pkg/sample
// [random]: https://pkg.go.dev/github.com/matzehuels/codegraph/pkg/random
// [io]: https://pkg.go.dev/github.com/matzehuels/codegraph/pkg/io
// [cache]: https://pkg.go.dev/github.com/matzehuels/codegraph/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/codegraph/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/codegraph/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/codegraph/pkg/buildinfo
package pkg
