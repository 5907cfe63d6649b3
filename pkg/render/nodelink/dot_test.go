package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/render"
)

func twoNodes() *graph.Graph {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "a", Label: "project", Kind: graph.KindFolder, Path: "project"})
	_ = g.AddNode(graph.Node{ID: "b", Label: "index.ts", Kind: graph.KindFile, Level: 1,
		Position: graph.Position{X: -100, Y: 150}, Path: "project/index.ts"})
	_ = g.AddEdge(graph.Edge{ID: "a-b", Source: "a", Target: "b", Kind: graph.EdgeContainment, Label: graph.LabelContains})
	return g
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(twoNodes(), render.DefaultSettings(), Options{})

	for _, want := range []string{
		"digraph G",
		"layout=neato",
		`"a" [label="project"`,
		`"b" [label="index.ts"`,
		`pos="-100.0,-150.0!"`,
		`"a" -> "b"`,
		"splines=curved",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q", want)
		}
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(twoNodes(), render.DefaultSettings(), Options{Detailed: true})
	if !strings.Contains(dot, `level: 1\nproject/index.ts`) {
		t.Error("ToDOT() detailed output missing level and path")
	}
}

func TestToDOT_Dependency(t *testing.T) {
	g := twoNodes()
	_ = g.AddEdge(graph.Edge{ID: "b-a", Source: "b", Target: "a", Kind: graph.EdgeDependency, Label: graph.LabelImports})
	dot := ToDOT(g, render.DefaultSettings(), Options{})
	if !strings.Contains(dot, "style=dashed") {
		t.Error("dependency edges should be dashed")
	}
	if !strings.Contains(dot, `tooltip="imports"`) {
		t.Error("dependency edges should carry their label")
	}
}

func TestToDOT_Settings(t *testing.T) {
	s := render.DefaultSettings()
	s.EdgeStyle = render.EdgeStep
	s.ColorScheme = render.SchemeMono
	g := twoNodes()
	_ = g.AddNode(graph.Node{ID: "c", Label: "lib", Kind: graph.KindFolder, Level: 1,
		Position: graph.Position{X: 100, Y: 150}, Path: "project/lib"})
	_ = g.AddEdge(graph.Edge{ID: "a-c", Source: "a", Target: "c", Kind: graph.EdgeContainment, Label: graph.LabelContains})
	dot := ToDOT(g, s, Options{Highlight: "b"})

	if !strings.Contains(dot, "splines=ortho") {
		t.Error("step edges should use orthogonal splines")
	}
	pal := render.PaletteFor(render.SchemeMono)
	for name, color := range map[string]string{"root": pal.Root, "folder": pal.Folder, "file": pal.File} {
		if !strings.Contains(dot, `fillcolor="`+color+`"`) {
			t.Errorf("mono %s fill %s not applied", name, color)
		}
	}
	if !strings.Contains(dot, "penwidth=3") {
		t.Error("highlighted node missing")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("unexpected svg tag: %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Error("svg without viewBox should pass through")
	}
}
