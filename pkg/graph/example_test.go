package graph_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/random"
	"github.com/matzehuels/codegraph/pkg/tree"
)

func ExampleBuild() {
	root := tree.NewFolder("project",
		tree.NewFolder("src", tree.NewFile("index.ts", 512)),
		tree.NewFile("README.md", 64),
	)

	g, err := graph.Build(root, graph.BuildOptions{
		Rand:           random.New(42),
		NoJitter:       true,
		NoDependencies: true,
	})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	for _, n := range g.Nodes() {
		fmt.Printf("%-10s level=%d x=%v y=%v\n", n.Label, n.Level, n.Position.X, n.Position.Y)
	}
	fmt.Println("edges:", g.EdgeCount())
	// Output:
	// project    level=0 x=0 y=0
	// src        level=1 x=-100 y=150
	// index.ts   level=2 x=-100 y=300
	// README.md  level=1 x=100 y=150
	// edges: 3
}

func ExampleReadGraph() {
	jsonData := `{
		"nodes": [
			{"id": "app", "label": "App.tsx"},
			{"id": "main", "label": "main.tsx"}
		],
		"edges": [
			{"id": "main-app", "source": "main", "target": "app", "kind": "simulated-dependency", "label": "imports"}
		]
	}`

	g, err := graph.ReadGraph(strings.NewReader(jsonData))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Roots:", g.Roots())
	for _, e := range g.Edges() {
		fmt.Printf("%s -> %s (%s)\n", e.Source, e.Target, e.Type())
	}
	// Output:
	// Nodes: 2
	// Roots: [main]
	// main -> app (imports)
}
