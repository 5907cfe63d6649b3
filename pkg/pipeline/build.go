package pipeline

import (
	"github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/random"
	"github.com/matzehuels/codegraph/pkg/sample"
	"github.com/matzehuels/codegraph/pkg/tree"
)

// Synthesize produces the tree for opts.Source, drawing from rng.
// The sample source ignores rng.
func Synthesize(rng random.Source, opts Options) (*tree.Node, error) {
	switch opts.Source {
	case SourceSample:
		return sample.Tree(sample.Files()), nil
	case SourceSelection:
		return tree.FromSelection(rng, opts.Selection(), opts.TreeOptions())
	case SourceSynthetic, "":
		return tree.Synthesize(rng, opts.TreeOptions()), nil
	default:
		return nil, ValidateSource(opts.Source)
	}
}

// Build synthesizes a tree and turns it into a graph. Both stages share one
// random source, so a seeded run is reproducible end to end.
//
// The sample source does not go through the graph builder: its graph comes
// from resolving the sample's import names and has no builder positions.
func Build(opts Options) (*tree.Node, *graph.Graph, error) {
	rng := opts.RandomSource()

	root, err := Synthesize(rng, opts)
	if err != nil {
		return nil, nil, err
	}

	if opts.Source == SourceSample {
		g, err := sample.Graph(sample.Files())
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeAnalysis, err, "load sample")
		}
		return root, g, nil
	}

	g, err := graph.Build(root, opts.BuildOptions(rng))
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeAnalysis, err, "build graph")
	}
	return root, g, nil
}

// BuildTree turns an existing tree, such as one read from a file, into a
// graph. The sample source is not special here: every tree goes through the
// graph builder.
func BuildTree(root *tree.Node, opts Options) (*graph.Graph, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree is empty")
	}
	g, err := graph.Build(root, opts.BuildOptions(opts.RandomSource()))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAnalysis, err, "build graph")
	}
	return g, nil
}
