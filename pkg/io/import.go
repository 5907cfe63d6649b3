package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/codegraph/pkg/tree"
)

// WriteTree encodes a tree as indented JSON and writes it to w.
// The output can be re-imported with [ReadTree].
func WriteTree(root *tree.Node, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportTree writes a tree to a JSON file at path.
func ExportTree(root *tree.Node, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteTree(root, f)
}

// ReadTree decodes a JSON tree from r.
//
// The input is the nested form WriteTree produces:
//
//	{"name": "project", "kind": "folder", "children": [
//	  {"name": "index.ts", "kind": "file", "size": 512}
//	]}
//
// ReadTree returns an error if the JSON is malformed, a node has an empty
// name or an unknown kind, or a file has children. ReadTree does not close r.
func ReadTree(r io.Reader) (*tree.Node, error) {
	var root tree.Node
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	err := tree.Walk(&root, func(v tree.Visit) error {
		n := v.Node
		switch {
		case slices.Contains(n.Children, nil):
			return fmt.Errorf("%s: null child", v.Path)
		case n.Name == "":
			return fmt.Errorf("node at depth %d under %q: empty name", v.Depth, parentName(v))
		case n.Kind != tree.KindFile && n.Kind != tree.KindFolder:
			return fmt.Errorf("%s: unknown kind %q", v.Path, n.Kind)
		case n.IsFile() && len(n.Children) > 0:
			return fmt.Errorf("%s: file with children", v.Path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &root, nil
}

// ImportTree reads a JSON file at path and returns the decoded tree.
func ImportTree(path string) (*tree.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTree(f)
}

func parentName(v tree.Visit) string {
	if v.Parent == nil {
		return ""
	}
	return v.Parent.Name
}
