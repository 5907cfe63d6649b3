// Package layout computes layered positions for codebase graphs.
//
// The builder in pkg/graph places nodes by tree depth. This package offers the
// alternative used by the simpler graph view: levels by reachability from
// the root set, one row per level, nodes spread evenly around x = 0.
//
// # Algorithm
//
// [Layered] runs a breadth-first sweep:
//
//  1. roots = nodes without incoming edges, in node order
//  2. level 0 = roots
//  3. level k+1 = unassigned targets of edges leaving level k, in node order
//  4. stop when a sweep discovers nothing new
//
// Within level k of n nodes, node i sits at
//
//	x = i*NodeWidth - n*NodeWidth/2 + NodeWidth/2
//	y = k*LevelHeight
//
// so every row is centered on x = 0 and x grows strictly with i.
//
// [LongestPath] is the alternative assignment: each node sits one level
// below its deepest parent, computed with Kahn's algorithm.
//
// # Orphans
//
// Nodes that no sweep reaches (members of cycles that hang off no root) are
// reported in [Result.Orphans]. With [OrphanAppend], the default, they get one
// extra row below the deepest reachable level. With [OrphanDrop] they keep
// their input level and position and are only reported.
//
// # Purity
//
// Layout never modifies its input. It returns a new graph with levels and
// positions overwritten and edges unchanged, so running it twice on the same
// input gives identical output. Fitting the result into a viewport is a
// presentation concern and not done here.
package layout
