package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/random"
	"github.com/matzehuels/codegraph/pkg/tree"
)

func TestWriteCSV(t *testing.T) {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "1", Label: "project"})
	_ = g.AddNode(graph.Node{ID: "2", Label: `say "hi".ts`})
	_ = g.AddNode(graph.Node{ID: "3"})
	_ = g.AddEdge(graph.Edge{ID: "e1", Source: "1", Target: "2", Kind: graph.EdgeContainment, Label: graph.LabelContains})
	_ = g.AddEdge(graph.Edge{ID: "e2", Source: "2", Target: "3", Kind: graph.EdgeDependency})

	var buf bytes.Buffer
	if err := WriteCSV(g, &buf); err != nil {
		t.Fatal(err)
	}
	want := `Source,Target,Type
"project","say ""hi"".ts","contains"
"say ""hi"".ts","3","simulated-dependency"
`
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteCSVNoEdges(t *testing.T) {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "a"})
	var buf bytes.Buffer
	err := WriteCSV(g, &buf)
	if !errors.Is(err, errors.ErrCodeNoEdges) {
		t.Fatalf("err = %v, want NO_EDGES", err)
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written")
	}

	path := filepath.Join(t.TempDir(), "edges.csv")
	if err := ExportCSV(g, path); !errors.Is(err, errors.ErrCodeNoEdges) {
		t.Fatalf("ExportCSV err = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be created")
	}
}

func TestWriteCSVLineCount(t *testing.T) {
	for seed := uint64(0); seed < 10; seed++ {
		rng := random.New(seed)
		g, err := graph.Build(tree.Synthesize(rng, tree.Options{}), graph.BuildOptions{Rand: rng})
		if err != nil {
			t.Fatal(err)
		}
		data, err := MarshalCSV(g)
		if err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		if len(lines) != g.EdgeCount()+1 {
			t.Fatalf("seed %d: %d lines for %d edges", seed, len(lines), g.EdgeCount())
		}
		if lines[0] != "Source,Target,Type" {
			t.Fatalf("header = %q", lines[0])
		}
		for _, line := range lines[1:] {
			fields := strings.Split(line, `","`)
			if len(fields) != 3 || !strings.HasPrefix(line, `"`) || !strings.HasSuffix(line, `"`) {
				t.Fatalf("malformed row %q", line)
			}
			for _, f := range fields {
				if strings.Trim(f, `"`) == "" {
					t.Fatalf("empty field in %q", line)
				}
			}
		}
	}
}

func TestWriteCSVLineBreaks(t *testing.T) {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "a", Label: "two\nlines"})
	_ = g.AddNode(graph.Node{ID: "b", Label: "b"})
	_ = g.AddEdge(graph.Edge{ID: "ab", Source: "a", Target: "b", Label: "imports"})
	data, err := MarshalCSV(g)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "\n"); n != 2 {
		t.Errorf("got %d lines, want 2", n)
	}
}

func TestExportCSVFile(t *testing.T) {
	rng := random.New(2)
	g, _ := graph.Build(tree.Synthesize(rng, tree.Options{}), graph.BuildOptions{Rand: rng})
	path := filepath.Join(t.TempDir(), "edges.csv")
	if err := ExportCSV(g, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "Source,Target,Type\n") {
		t.Errorf("missing header: %q", data[:40])
	}
}

func TestTreeRoundTrip(t *testing.T) {
	root := tree.Synthesize(random.New(1), tree.Options{Folders: 3})
	var buf bytes.Buffer
	if err := WriteTree(root, &buf); err != nil {
		t.Fatal(err)
	}
	back, err := ReadTree(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Count(back) != tree.Count(root) || tree.TotalSize(back) != tree.TotalSize(root) {
		t.Error("round trip changed the tree")
	}

	path := filepath.Join(t.TempDir(), "tree.json")
	if err := ExportTree(root, path); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportTree(path); err != nil {
		t.Fatal(err)
	}
}

func TestReadTreeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Malformed", `{"name":`, "decode"},
		{"EmptyName", `{"name":"p","kind":"folder","children":[{"kind":"file"}]}`, "empty name"},
		{"UnknownKind", `{"name":"p","kind":"link"}`, "unknown kind"},
		{"FileWithChildren", `{"name":"p","kind":"file","children":[{"name":"x","kind":"file"}]}`, "file with children"},
		{"NullChild", `{"name":"p","kind":"folder","children":[null]}`, "null child"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTree(strings.NewReader(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}
