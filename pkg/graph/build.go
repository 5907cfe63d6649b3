package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/random"
	"github.com/matzehuels/codegraph/pkg/tree"
)

// Builder defaults.
const (
	DefaultHorizontalSpacing     = 200.0
	DefaultVerticalSpacing       = 150.0
	DefaultJitter                = 50.0
	DefaultDependencyProbability = 0.3
	DefaultMinNodesForDependency = 6
)

// minDependencyPool is the smallest emitted-node count that leaves at least one
// candidate once the node itself and its parent are excluded.
const minDependencyPool = 3

// BuildOptions configures [Build]. The zero value uses the defaults above and
// an unseeded random source.
type BuildOptions struct {
	// Rand drives identifiers, jitter and simulated dependencies.
	// Nil means random.NewUnseeded().
	Rand random.Source

	HorizontalSpacing float64
	VerticalSpacing   float64

	// Jitter bounds the random horizontal offset of non-root nodes.
	Jitter   float64
	NoJitter bool

	// DependencyProbability is the chance that an eligible file gets a
	// simulated dependency edge.
	DependencyProbability float64
	NoDependencies        bool

	// MinNodesForDependency is how many nodes (the current one included) must
	// have been emitted before simulated dependencies are considered.
	MinNodesForDependency int
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.Rand == nil {
		o.Rand = random.NewUnseeded()
	}
	if o.HorizontalSpacing <= 0 {
		o.HorizontalSpacing = DefaultHorizontalSpacing
	}
	if o.VerticalSpacing <= 0 {
		o.VerticalSpacing = DefaultVerticalSpacing
	}
	if o.Jitter <= 0 {
		o.Jitter = DefaultJitter
	}
	if o.NoJitter {
		o.Jitter = 0
	}
	if o.DependencyProbability <= 0 {
		o.DependencyProbability = DefaultDependencyProbability
	}
	if o.MinNodesForDependency <= 0 {
		o.MinNodesForDependency = DefaultMinNodesForDependency
	}
	o.MinNodesForDependency = max(o.MinNodesForDependency, minDependencyPool)
	return o
}

// frame is one pending tree node of the build traversal.
type frame struct {
	node      *tree.Node
	parentID  string
	parentIdx int // index of the parent in emitted, -1 for the root
	parentPos Position
	depth     int
	index     int
	siblings  int
	path      string
}

// Build converts a tree into a graph.
//
// The tree is walked depth-first in pre-order with an explicit stack. Each
// visited tree node yields exactly one graph node with a fresh identifier
// drawn from opts.Rand, a level equal to its depth and a position derived
// from its parent's position and its sibling index:
//
//	y = level * VerticalSpacing
//	x = parent.x + (index - (siblings-1)/2) * HorizontalSpacing + jitter
//
// The root sits at (0, 0). Every non-root node gets a containment edge from
// its parent. A file below the root may also get one simulated dependency
// edge to a uniformly chosen earlier node other than itself and its parent;
// see [BuildOptions] for the knobs.
//
// Build returns an INVALID_INPUT error for a nil root. Identifiers are random
// per call, so building the same tree twice with different sources yields
// different ids.
func Build(root *tree.Node, opts BuildOptions) (*Graph, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree is empty")
	}
	opts = opts.withDefaults()
	b := &builder{
		opts:    opts,
		g:       New(),
		issued:  make(map[string]struct{}),
		emitted: make([]string, 0, 64),
	}

	stack := []frame{{node: root, parentIdx: -1, siblings: 1, path: root.Name}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id, pos, err := b.emit(f)
		if err != nil {
			return nil, err
		}
		self := len(b.emitted) - 1

		kids := f.node.Children
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				node:      kids[i],
				parentID:  id,
				parentIdx: self,
				parentPos: pos,
				depth:     f.depth + 1,
				index:     i,
				siblings:  len(kids),
				path:      f.path + tree.PathSeparator + kids[i].Name,
			})
		}
	}
	return b.g, nil
}

type builder struct {
	opts    BuildOptions
	g       *Graph
	issued  map[string]struct{}
	emitted []string // node IDs in emission order
}

func (b *builder) emit(f frame) (string, Position, error) {
	id, err := b.newID()
	if err != nil {
		return "", Position{}, err
	}
	pos := b.position(f)
	n := Node{
		ID:       id,
		Label:    f.node.Name,
		Kind:     string(f.node.Kind),
		Level:    f.depth,
		Position: pos,
		Path:     f.path,
	}
	if err := b.g.AddNode(n); err != nil {
		return "", Position{}, errors.Wrap(errors.ErrCodeInternal, err, "add node %s", f.path)
	}
	b.emitted = append(b.emitted, id)

	if f.parentIdx >= 0 {
		if err := b.addEdge(f.parentID, id, EdgeContainment, LabelContains); err != nil {
			return "", Position{}, err
		}
	}
	if err := b.maybeDependency(f, id); err != nil {
		return "", Position{}, err
	}
	return id, pos, nil
}

// newID draws UUIDs from the injected source until one is unused in this pass.
func (b *builder) newID() (string, error) {
	for {
		u, err := uuid.NewRandomFromReader(b.opts.Rand)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInternal, err, "generate node id")
		}
		id := u.String()
		if _, taken := b.issued[id]; taken {
			continue
		}
		b.issued[id] = struct{}{}
		return id, nil
	}
}

func (b *builder) position(f frame) Position {
	if f.parentIdx < 0 {
		return Position{}
	}
	offset := float64(f.index) - float64(f.siblings-1)/2
	x := f.parentPos.X + offset*b.opts.HorizontalSpacing
	if b.opts.Jitter > 0 {
		x += random.Jitter(b.opts.Rand, b.opts.Jitter)
	}
	return Position{X: x, Y: float64(f.depth) * b.opts.VerticalSpacing}
}

func (b *builder) maybeDependency(f frame, id string) error {
	if b.opts.NoDependencies || !f.node.IsFile() || f.depth == 0 {
		return nil
	}
	n := len(b.emitted)
	if n < b.opts.MinNodesForDependency {
		return nil
	}
	if !random.Chance(b.opts.Rand, b.opts.DependencyProbability) {
		return nil
	}

	// Candidates are emitted[:n-1] without the parent.
	k := b.opts.Rand.IntN(n - 2)
	if k >= f.parentIdx {
		k++
	}
	other := b.emitted[k]

	if random.Chance(b.opts.Rand, 0.5) {
		return b.addEdge(id, other, EdgeDependency, LabelImports)
	}
	return b.addEdge(other, id, EdgeDependency, LabelExports)
}

func (b *builder) addEdge(src, dst, kind, label string) error {
	id := src + "-" + dst
	for i := 2; b.g.HasEdge(id); i++ {
		id = fmt.Sprintf("%s-%s-%d", src, dst, i)
	}
	e := Edge{ID: id, Source: src, Target: dst, Kind: kind, Label: label}
	if err := b.g.AddEdge(e); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "add edge %s", id)
	}
	return nil
}
