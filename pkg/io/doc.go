// Package io exports codebase graphs as CSV and moves trees in and out of
// JSON.
//
// # CSV Export
//
// [WriteCSV] produces the downloadable edge list:
//
//	"Source","Target","Type"
//	"project","src","contains"
//	"index.ts","utils.ts","imports"
//
// Rules:
//   - one header line plus one line per edge
//   - every field is double-quoted, embedded quotes are doubled
//   - Source and Target are node labels, not ids
//   - Type is the edge label, or the edge kind when there is no label
//
// Exporting a graph without edges fails with an ErrCodeNoEdges error. The
// workspace turns that into a user-visible notice and aborts the export.
//
// # Tree JSON
//
// [WriteTree] and [ReadTree] serialize the synthetic tree in its nested form
// so the CLI can split synthesis and graph building into separate steps:
//
//	codegraph generate -o tree.json
//	codegraph build tree.json -o graph.json
//
// Graph JSON lives in pkg/graph.
package io
