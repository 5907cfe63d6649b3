package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/graph"
)

// CSVHeader is the first line of every edge export.
var CSVHeader = []string{"Source", "Target", "Type"}

// fallbackType fills the Type column of edges with neither label nor kind.
const fallbackType = "edge"

// WriteCSV writes one row per edge of g to w, preceded by the unquoted
// [CSVHeader] line.
//
// Source and Target hold the display labels of the endpoints rather than
// their ids; Type holds the edge label ("contains", "imports", "exports"),
// falling back to the edge kind. Every row field is wrapped in double quotes and
// embedded quotes are doubled, so the output has exactly EdgeCount()+1 lines
// as long as labels contain no line breaks (those are replaced by spaces).
//
// A graph without edges is an ErrCodeNoEdges error and nothing is written.
func WriteCSV(g *graph.Graph, w io.Writer) error {
	edges := g.Edges()
	if len(edges) == 0 {
		return errors.New(errors.ErrCodeNoEdges, "graph has no edges to export")
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(CSVHeader, ",") + "\n")
	for _, e := range edges {
		writeRow(bw, endpointLabel(g, e.Source), endpointLabel(g, e.Target), edgeType(e))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ExportCSV writes the edge CSV of g to a file at path.
// The file is only created when the graph has edges.
func ExportCSV(g *graph.Graph, path string) error {
	if g.EdgeCount() == 0 {
		return errors.New(errors.ErrCodeNoEdges, "graph has no edges to export")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// MarshalCSV returns the edge CSV of g as bytes.
func MarshalCSV(g *graph.Graph) ([]byte, error) {
	var sb strings.Builder
	if err := WriteCSV(g, &sb); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func endpointLabel(g *graph.Graph, id string) string {
	if n, ok := g.Node(id); ok {
		return n.DisplayLabel()
	}
	return id
}

func edgeType(e graph.Edge) string {
	if t := e.Type(); t != "" {
		return t
	}
	return fallbackType
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func writeRow(w *bufio.Writer, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(lineBreaks.Replace(f), `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteByte('\n')
}
