// Package sample provides the fixed demo codebase behind "load sample".
//
// Unlike the synthetic tree, the sample carries explicit import names. They
// are resolved by label, so the resulting graph has real structure for the
// layered layout to work on: entry points without importers become roots.
package sample

import (
	"path"
	"strings"

	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/tree"
)

// RootName is the name of the sample tree's root folder. Node paths of the
// sample graph start with it, so they resolve against [Tree].
const RootName = "sample"

// sampleSize is the byte size reported for every sample file.
const sampleSize = 1024

// File is one entry of the sample codebase.
type File struct {
	ID      string   `json:"id"`    // path-like identifier, unique
	Label   string   `json:"label"` // base name
	Kind    string   `json:"kind"`
	Imports []string `json:"imports,omitempty"` // module names, resolved by label
}

// Files returns the sample codebase. Each call returns a fresh slice.
func Files() []File {
	return []File{
		{ID: "App.tsx", Label: "App.tsx", Kind: graph.KindFile, Imports: []string{"Index", "NotFound"}},
		{ID: "main.tsx", Label: "main.tsx", Kind: graph.KindFile, Imports: []string{"App"}},
		{ID: "pages/Index.tsx", Label: "Index.tsx", Kind: graph.KindFile, Imports: []string{"Button"}},
		{ID: "pages/NotFound.tsx", Label: "NotFound.tsx", Kind: graph.KindFile},
		{ID: "components/ui/button.tsx", Label: "button.tsx", Kind: graph.KindFile},
		{ID: "lib/utils.ts", Label: "utils.ts", Kind: graph.KindFile},
		{ID: "vite.config.ts", Label: "vite.config.ts", Kind: graph.KindFile},
	}
}

// Resolve finds the file an import name refers to. A name matches a file
// whose label is the name itself or the name plus ".tsx". Matching is case
// sensitive, so "Button" does not resolve to "button.tsx".
func Resolve(files []File, name string) (File, bool) {
	for _, f := range files {
		if f.Label == name+".tsx" || f.Label == name {
			return f, true
		}
	}
	return File{}, false
}

// Graph converts files into a graph with one node per file and one
// simulated-dependency edge per resolved import, labelled "imports".
// Unresolved imports are skipped. Edge IDs are "<source>-<target>".
// All positions are zero; run the layered layout to place the nodes.
func Graph(files []File) (*graph.Graph, error) {
	g := graph.New()
	for _, f := range files {
		n := graph.Node{ID: f.ID, Label: f.Label, Kind: f.Kind, Path: RootName + tree.PathSeparator + f.ID}
		if n.Label == "" {
			n.Label = path.Base(f.ID)
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, f := range files {
		for _, name := range f.Imports {
			target, ok := Resolve(files, name)
			if !ok {
				continue
			}
			id := f.ID + "-" + target.ID
			if g.HasEdge(id) {
				continue
			}
			err := g.AddEdge(graph.Edge{
				ID:     id,
				Source: f.ID,
				Target: target.ID,
				Kind:   graph.EdgeDependency,
				Label:  graph.LabelImports,
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// Load returns the graph of the built-in sample codebase.
func Load() *graph.Graph {
	g, err := Graph(Files())
	if err != nil {
		// The built-in list is static and known to be valid.
		panic(err)
	}
	return g
}

// Tree returns the folder tree of files, rooted at RootName. Folders come
// from the slash-separated segments of each ID, in first-seen order.
func Tree(files []File) *tree.Node {
	root := tree.NewFolder(RootName)
	for _, f := range files {
		parts := strings.Split(f.ID, tree.PathSeparator)
		cur := root
		for _, dir := range parts[:len(parts)-1] {
			cur = folder(cur, dir)
		}
		cur.Children = append(cur.Children, tree.NewFile(parts[len(parts)-1], sampleSize))
	}
	return root
}

func folder(parent *tree.Node, name string) *tree.Node {
	for _, c := range parent.Children {
		if c.Name == name && c.IsFolder() {
			return c
		}
	}
	f := tree.NewFolder(name)
	parent.Children = append(parent.Children, f)
	return f
}
