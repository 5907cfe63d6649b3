// Package graph provides the codebase graph: an ordered node-link container,
// the builder that derives it from a synthetic tree, and its JSON wire format.
//
// # Architecture
//
//   - [Graph]: ordered container with adjacency indexes (this package)
//   - [Build]: tree.Node -> *Graph with positions, levels and edges
//   - [Document]: serialization type for files, API responses and caching
//   - pkg/layout: alternative positions computed from reachability levels
//
// # Nodes and Edges
//
// Every tree node becomes one graph [Node]. Its Level is the tree depth and
// its Path the slash-joined tree path, which lets presentation layers map a
// click on the canvas back to the side tree.
//
// Edges come in two kinds:
//
//	containment            parent -> child, label "contains"
//	simulated-dependency   random link between files, label "imports" or "exports"
//
// Simulated dependencies carry no meaning. They only make the graph look like
// an import graph.
//
// # Building
//
// Build draws everything random from an injected [random.Source]:
//
//	rng := random.New(7)
//	root := tree.Synthesize(rng, tree.Options{})
//	g, err := graph.Build(root, graph.BuildOptions{Rand: rng})
//
// Build is pure. It does not fit viewports or schedule rendering; that is up
// to whoever displays the result.
//
// # Serialization
//
// Graphs use a simple node-link JSON format:
//
//	{
//	  "nodes": [{"id": "a", "label": "project", "kind": "folder", "level": 0, "position": {"x": 0, "y": 0}}],
//	  "edges": [{"id": "a-b", "source": "a", "target": "b", "kind": "containment", "label": "contains"}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("graph.json")   // File -> Graph
//	graph.WriteGraphFile(g, "output.json")      // Graph -> File
//	data, _ := graph.MarshalGraph(g)            // Graph -> []byte
//	parsed, _ := graph.UnmarshalGraph(data)     // []byte -> Graph
//
// # Concurrency
//
// A Graph is not safe for concurrent writes. Callers that share one across
// goroutines treat it as read-only or Clone it first.
package graph
