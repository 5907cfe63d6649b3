package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/codegraph/pkg/graph"
	graphio "github.com/matzehuels/codegraph/pkg/io"
	"github.com/matzehuels/codegraph/pkg/render/nodelink"
)

// maxRenderWorkers bounds concurrent Graphviz instances.
const maxRenderWorkers = 4

// Render generates output artifacts in the requested formats. Formats are
// rendered concurrently; the first failure cancels the rest.
func Render(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, error) {
	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
	)

	dot := nodelink.ToDOT(g, opts.Settings, nodelink.Options{
		Detailed:  opts.Detailed,
		Highlight: opts.Highlight,
	})

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxRenderWorkers)
	for _, format := range opts.Formats {
		eg.Go(func() error {
			data, err := renderFormat(ctx, g, dot, format, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, g *graph.Graph, dot, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return graph.MarshalGraph(g)
	case FormatCSV:
		return graphio.MarshalCSV(g)
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot, opts.Scale)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	default:
		return nil, ValidateFormat(format)
	}
}
