package pipeline

import (
	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/layout"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout positions g according to opts.Mode.
//
// ModeBuilder returns g unchanged with a zero Result. ModeLayered returns a
// laid-out copy; g is never modified. Orphans are reported in the Result and
// logged as a warning.
func GenerateLayout(g *graph.Graph, opts Options) (*graph.Graph, layout.Result) {
	if !opts.IsLayered() {
		return g, layout.Result{OrphanLevel: -1}
	}

	out, res := layout.Layered(g, opts.LayoutOptions())
	if res.HasOrphans() && opts.Logger != nil {
		opts.Logger.Warn("nodes unreachable from any root",
			"orphans", len(res.Orphans),
			"mode", opts.Orphans)
	}
	return out, res
}

// =============================================================================
// Serialization
// =============================================================================

// layoutRecord is the cached form of a layout run.
type layoutRecord struct {
	Graph       graph.Document `json:"graph"`
	Levels      [][]string     `json:"levels"`
	Orphans     []string       `json:"orphans,omitempty"`
	OrphanLevel int            `json:"orphan_level"`
}

func newLayoutRecord(g *graph.Graph, res layout.Result) layoutRecord {
	return layoutRecord{
		Graph:       g.Document(),
		Levels:      res.Levels,
		Orphans:     res.Orphans,
		OrphanLevel: res.OrphanLevel,
	}
}

func (r layoutRecord) decode() (*graph.Graph, layout.Result, error) {
	g, err := graph.FromDocument(r.Graph)
	if err != nil {
		return nil, layout.Result{}, err
	}
	return g, layout.Result{Levels: r.Levels, Orphans: r.Orphans, OrphanLevel: r.OrphanLevel}, nil
}
