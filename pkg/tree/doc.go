// Package tree models the synthetic file/folder hierarchy that stands in for a
// real project, and synthesizes it.
//
// # Overview
//
// A tree is a root [Node] whose children are folders and files. Nothing in
// this package reads file contents: [Synthesize] invents a plausible project
// from a random [random.Source], and [FromSelection] does the same while
// taking folder names and count from a list of selected file handles.
//
// Trees are owned by whoever synthesized them and are treated as immutable.
// [Filter] returns a derived copy for search and never mutates its input.
//
// # Shape
//
// Every synthesized folder holds between [MinFiles] and [MaxFiles] files with
// random extensions and byte sizes. With probability [NestedProbability] a
// folder also holds one nested sub-folder with [MinNestedFiles] to
// [MaxNestedFiles] files.
//
// # Traversal
//
// [Walk] visits nodes depth-first in pre-order using an explicit stack, so
// deep trees never grow the goroutine stack:
//
//	tree.Walk(root, func(v tree.Visit) error {
//	    fmt.Println(strings.Repeat("  ", v.Depth) + v.Node.Name)
//	    return nil
//	})
//
// [random.Source]: github.com/matzehuels/codegraph/pkg/random.Source
package tree
