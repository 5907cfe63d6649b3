package layout

import (
	"fmt"
	"slices"

	"github.com/matzehuels/codegraph/pkg/graph"
)

// Default spacing.
const (
	DefaultNodeWidth   = 200.0
	DefaultLevelHeight = 150.0
)

// OrphanMode decides what happens to nodes no sweep reaches.
type OrphanMode int

const (
	// OrphanAppend places orphans on one extra level below the deepest one.
	OrphanAppend OrphanMode = iota
	// OrphanDrop leaves orphans where they were and only reports them.
	OrphanDrop
)

// String returns the flag spelling of the mode.
func (m OrphanMode) String() string {
	switch m {
	case OrphanDrop:
		return "drop"
	default:
		return "append"
	}
}

// ParseOrphanMode parses "append" or "drop".
func ParseOrphanMode(s string) (OrphanMode, error) {
	switch s {
	case "", "append":
		return OrphanAppend, nil
	case "drop":
		return OrphanDrop, nil
	default:
		return OrphanAppend, fmt.Errorf("unknown orphan mode %q (want append or drop)", s)
	}
}

// Strategy selects the level assignment.
type Strategy string

const (
	// StrategyReachability assigns the breadth-first discovery level.
	StrategyReachability Strategy = "reachability"
	// StrategyLongestPath assigns one plus the deepest parent level.
	StrategyLongestPath Strategy = "longest-path"
)

// Options configures a layout run. The zero value uses the defaults.
type Options struct {
	NodeWidth   float64
	LevelHeight float64
	Orphans     OrphanMode
	Strategy    Strategy
}

func (o Options) withDefaults() Options {
	if o.NodeWidth <= 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.LevelHeight <= 0 {
		o.LevelHeight = DefaultLevelHeight
	}
	if o.Strategy == "" {
		o.Strategy = StrategyReachability
	}
	return o
}

// Result describes a layout run.
type Result struct {
	// Levels lists node IDs per level, each in node order. With OrphanAppend
	// the last entry holds the orphans.
	Levels [][]string

	// Orphans lists nodes no sweep reached, in node order.
	Orphans []string

	// OrphanLevel is the level orphans were placed on, or -1 if they were
	// not placed (none exist, or OrphanDrop).
	OrphanLevel int
}

// HasOrphans reports whether some nodes were unreachable.
func (r Result) HasOrphans() bool { return len(r.Orphans) > 0 }

// Layered returns a copy of g with every node's level and position set by
// the layered layout. g itself is not modified.
func Layered(g *graph.Graph, opts Options) (*graph.Graph, Result) {
	opts = opts.withDefaults()

	var levels [][]string
	var orphans []string
	switch opts.Strategy {
	case StrategyLongestPath:
		levels, orphans = LongestPath(g)
	default:
		levels, orphans = Reachability(g)
	}

	res := Result{Orphans: orphans, OrphanLevel: -1}
	if len(orphans) > 0 && opts.Orphans == OrphanAppend {
		res.OrphanLevel = len(levels)
		levels = append(levels, orphans)
	}
	res.Levels = levels

	out := g.Clone()
	for level, ids := range levels {
		width := float64(len(ids)) * opts.NodeWidth
		for i, id := range ids {
			p := graph.Position{
				X: float64(i)*opts.NodeWidth - width/2 + opts.NodeWidth/2,
				Y: float64(level) * opts.LevelHeight,
			}
			// ids come from g, so the setters cannot fail.
			_ = out.SetPosition(id, p)
			_ = out.SetLevel(id, level)
		}
	}
	return out, res
}

// Reachability groups nodes into levels by breadth-first discovery from the
// root set. Level 0 holds the nodes without incoming edges; level k+1 holds
// the not yet assigned targets of edges leaving level k. Every level is in
// node order. Nodes never discovered are returned as orphans, in node order.
func Reachability(g *graph.Graph) (levels [][]string, orphans []string) {
	nodes := g.Nodes()
	order := make(map[string]int, len(nodes))
	for i, n := range nodes {
		order[n.ID] = i
	}

	assigned := make(map[string]bool, len(nodes))
	current := g.Roots()
	for len(current) > 0 {
		for _, id := range current {
			assigned[id] = true
		}
		levels = append(levels, current)

		seen := make(map[string]bool)
		var next []string
		for _, id := range current {
			for _, child := range g.Children(id) {
				if assigned[child] || seen[child] {
					continue
				}
				seen[child] = true
				next = append(next, child)
			}
		}
		slices.SortFunc(next, func(a, b string) int { return order[a] - order[b] })
		current = next
	}

	for _, n := range nodes {
		if !assigned[n.ID] {
			orphans = append(orphans, n.ID)
		}
	}
	return levels, orphans
}

// LongestPath assigns each node one level below its deepest parent using
// Kahn's algorithm, so every edge points strictly downward. Nodes on or below
// a cycle never reach in-degree zero and are returned as orphans.
func LongestPath(g *graph.Graph) (levels [][]string, orphans []string) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	rows := make(map[string]int, len(nodes))
	done := make(map[string]bool, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	maxRow := -1
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		done[curr] = true
		maxRow = max(maxRow, rows[curr])

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	levels = make([][]string, maxRow+1)
	for _, n := range nodes {
		if !done[n.ID] {
			orphans = append(orphans, n.ID)
			continue
		}
		levels[rows[n.ID]] = append(levels[rows[n.ID]], n.ID)
	}
	return levels, orphans
}
