// Package workspace holds the state behind the interactive views: the current
// tree and graph, the cosmetic settings and the selected node.
//
// A [Workspace] is shared by the HTTP server and the terminal browser. It
// exposes the three things a presentation layer needs from the core:
//
//   - a rebuild trigger ([Workspace.Rebuild]) that regenerates tree and graph
//     wholesale from the sample, a synthetic tree or a file selection
//   - selection sync between the side tree and the canvas
//     ([Workspace.SelectNode], [Workspace.SelectPath])
//   - cosmetic settings applied after the fact ([Workspace.ApplySettings])
//
// # Rebuild ordering
//
// Rebuilds may overlap. Each one takes a generation number from a monotonic
// counter when it starts; when it finishes it commits only if no newer
// rebuild has started in the meantime. Otherwise its result is discarded and
// Rebuild returns an ErrCodeStale error. The artificial delay that simulates
// slow analysis honours context cancellation.
//
// # Notices
//
// Failures never leave the workspace in a broken state. They are returned to
// the caller and also fanned out as [Notice] values to every subscriber:
//
//   - no files selected: no-op, no notice
//   - build failure: error notice, previous state kept
//   - export without edges: warning notice, export aborted
package workspace

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/graph"
	graphio "github.com/matzehuels/codegraph/pkg/io"
	"github.com/matzehuels/codegraph/pkg/layout"
	"github.com/matzehuels/codegraph/pkg/observability"
	"github.com/matzehuels/codegraph/pkg/pipeline"
	"github.com/matzehuels/codegraph/pkg/render"
	"github.com/matzehuels/codegraph/pkg/tree"
)

// Request describes one rebuild.
type Request struct {
	Source  string            `json:"source"`
	Seed    uint64            `json:"seed,omitempty"`
	Folders int               `json:"folders,omitempty"`
	Files   []tree.FileHandle `json:"files,omitempty"`
	Refresh bool              `json:"refresh,omitempty"`

	// Delay overrides the workspace's artificial delay when positive.
	Delay time.Duration `json:"-"`
}

// Options configures a Workspace.
type Options struct {
	// Runner builds and lays out graphs. Nil means an uncached runner.
	Runner *pipeline.Runner

	Logger *log.Logger

	// Base supplies builder spacing, layout mode and the other pipeline
	// settings a Request does not carry.
	Base pipeline.Options

	// Settings are the initial cosmetic settings, merged over the defaults.
	Settings render.Settings

	// Delay is the artificial delay before every rebuild.
	Delay time.Duration
}

// Snapshot is the committed state at one point in time. Tree and Graph are
// shared with the workspace and must not be modified.
type Snapshot struct {
	Generation uint64          `json:"generation"`
	Source     string          `json:"source,omitempty"`
	Tree       *tree.Node      `json:"-"`
	Graph      *graph.Graph    `json:"-"`
	Layout     layout.Result   `json:"-"`
	Settings   render.Settings `json:"settings"`
	Selected   string          `json:"selected,omitempty"`
	BuiltAt    time.Time       `json:"built_at,omitzero"`
	CacheHit   bool            `json:"cache_hit,omitempty"`
}

// Loaded reports whether a graph has been committed.
func (s Snapshot) Loaded() bool { return s.Graph != nil }

// Workspace is the shared, concurrency-safe shell state.
type Workspace struct {
	runner *pipeline.Runner
	logger *log.Logger
	base   pipeline.Options
	delay  time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	gen atomic.Uint64

	mu    sync.RWMutex
	state Snapshot

	subsMu  sync.Mutex
	subs    map[int]chan Notice
	nextSub int
}

// New creates an empty workspace. It fails only if opts.Settings are invalid.
func New(opts Options) (*Workspace, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	runner := opts.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	settings := opts.Settings.WithDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &Workspace{
		runner: runner,
		logger: logger,
		base:   opts.Base,
		delay:  max(opts.Delay, 0),
		now:    time.Now,
		sleep:  sleepContext,
		state:  Snapshot{Settings: settings},
		subs:   make(map[int]chan Notice),
	}, nil
}

// Rebuild regenerates tree and graph for req and commits them if no newer
// rebuild started meanwhile.
//
// An empty selection is a no-op: the ErrCodeNoSelection error is returned and
// nothing else happens. Other failures publish an error notice and keep the
// previous state.
func (w *Workspace) Rebuild(ctx context.Context, req Request) (Snapshot, error) {
	opts := w.optionsFor(req)
	if err := opts.ValidateForBuild(); err != nil {
		if errors.IsNoOp(err) {
			w.logger.Debug("rebuild skipped", "reason", errors.UserMessage(err))
			return Snapshot{}, err
		}
		w.publish(ctx, noticeFor(LevelError, err, 0))
		return Snapshot{}, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		w.publish(ctx, noticeFor(LevelError, err, 0))
		return Snapshot{}, err
	}

	gen := w.gen.Add(1)
	logger := w.logger.With("generation", gen, "source", opts.Source)
	start := time.Now()

	snap, err := w.rebuild(ctx, gen, opts, req.Delay)
	observability.Workspace().OnRebuild(ctx, opts.Source, gen, errors.Is(err, errors.ErrCodeStale), time.Since(start), err)

	switch {
	case err == nil:
	case errors.Is(err, errors.ErrCodeStale):
		logger.Debug("discarded stale rebuild", "latest", w.gen.Load())
		return Snapshot{}, err
	case ctx.Err() != nil:
		logger.Debug("rebuild canceled", "error", ctx.Err())
		return Snapshot{}, err
	default:
		logger.Error("rebuild failed", "error", err)
		w.publish(ctx, noticeFor(LevelError, err, gen))
		return Snapshot{}, err
	}

	logger.Info("rebuilt graph",
		"nodes", snap.Graph.NodeCount(),
		"edges", snap.Graph.EdgeCount(),
		"cached", snap.CacheHit,
		"duration", time.Since(start))

	if snap.Layout.HasOrphans() {
		w.publish(ctx, Notice{
			Level:      LevelWarn,
			Message:    orphanMessage(len(snap.Layout.Orphans), opts.Orphans),
			Generation: gen,
		})
	}
	w.publish(ctx, Notice{
		Level:      LevelInfo,
		Message:    "analysis complete",
		Generation: gen,
	})
	return snap, nil
}

func (w *Workspace) rebuild(ctx context.Context, gen uint64, opts pipeline.Options, delay time.Duration) (Snapshot, error) {
	if delay <= 0 {
		delay = w.delay
	}
	if delay > 0 {
		if err := w.sleep(ctx, delay); err != nil {
			return Snapshot{}, err
		}
	}
	if w.stale(gen) {
		return Snapshot{}, staleError(gen)
	}

	root, g, hit, err := w.runner.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return Snapshot{}, err
	}
	laid, res, _, err := w.runner.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return Snapshot{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stale(gen) {
		return Snapshot{}, staleError(gen)
	}
	w.state = Snapshot{
		Generation: gen,
		Source:     opts.Source,
		Tree:       root,
		Graph:      laid,
		Layout:     res,
		Settings:   w.state.Settings,
		BuiltAt:    w.now(),
		CacheHit:   hit,
	}
	return w.state, nil
}

func (w *Workspace) stale(gen uint64) bool { return gen != w.gen.Load() }

func staleError(gen uint64) error {
	return errors.New(errors.ErrCodeStale, "rebuild %d superseded by a newer rebuild", gen)
}

func (w *Workspace) optionsFor(req Request) pipeline.Options {
	opts := w.base
	opts.Source = req.Source
	opts.Seed = req.Seed
	opts.Folders = req.Folders
	opts.Files = req.Files
	opts.Refresh = req.Refresh
	opts.Logger = w.logger
	opts.Rand = nil
	return opts
}

// Generation returns the number of the most recently started rebuild.
func (w *Workspace) Generation() uint64 { return w.gen.Load() }

// Snapshot returns the committed state.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// =============================================================================
// Selection
// =============================================================================

// SelectNode selects the node with the given id, typically after a canvas
// click. The node's Path locates it in the side tree.
func (w *Workspace) SelectNode(ctx context.Context, id string) (graph.Node, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Graph == nil {
		return graph.Node{}, errNotLoaded()
	}
	n, ok := w.state.Graph.Node(id)
	observability.Workspace().OnSelect(ctx, ok)
	if !ok {
		return graph.Node{}, errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}
	w.state.Selected = id
	return n, nil
}

// SelectPath selects the node at a side-tree path and returns it, so the
// canvas can highlight it.
func (w *Workspace) SelectPath(ctx context.Context, path string) (graph.Node, error) {
	if err := errors.ValidateTreePath(path); err != nil {
		return graph.Node{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Graph == nil {
		return graph.Node{}, errNotLoaded()
	}
	n, ok := w.state.Graph.NodeByPath(path)
	observability.Workspace().OnSelect(ctx, ok)
	if !ok {
		return graph.Node{}, errors.New(errors.ErrCodeNotFound, "no node at %q", path)
	}
	w.state.Selected = n.ID
	return n, nil
}

// ClearSelection drops the current selection.
func (w *Workspace) ClearSelection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Selected = ""
}

// Search returns a filtered copy of the current tree. The committed tree is
// not modified.
func (w *Workspace) Search(query string) (*tree.Node, error) {
	if err := errors.ValidateQuery(query); err != nil {
		return nil, err
	}
	snap := w.Snapshot()
	if snap.Tree == nil {
		return nil, errNotLoaded()
	}
	return tree.Filter(snap.Tree, query), nil
}

// =============================================================================
// Settings
// =============================================================================

// Settings returns the current cosmetic settings.
func (w *Workspace) Settings() render.Settings {
	return w.Snapshot().Settings
}

// ApplySettings applies the set fields of patch to the current settings,
// validates the result and stores it. Topology and positions are never
// touched.
func (w *Workspace) ApplySettings(ctx context.Context, patch render.Patch) (render.Settings, error) {
	w.mu.Lock()
	next := w.state.Settings.With(patch)
	if err := next.Validate(); err != nil {
		w.mu.Unlock()
		w.publish(ctx, noticeFor(LevelError, err, 0))
		return render.Settings{}, err
	}
	w.state.Settings = next
	w.mu.Unlock()
	return next, nil
}

// Styled returns the current graph with the current settings applied.
func (w *Workspace) Styled() (render.Styled, error) {
	snap := w.Snapshot()
	if snap.Graph == nil {
		return render.Styled{}, errNotLoaded()
	}
	return render.Apply(snap.Graph, snap.Settings), nil
}

// RenderSVG renders the current graph with the current settings, highlighting
// the selected node.
func (w *Workspace) RenderSVG(ctx context.Context) ([]byte, error) {
	snap := w.Snapshot()
	if snap.Graph == nil {
		return nil, errNotLoaded()
	}
	artifacts, err := w.runner.Render(ctx, snap.Graph, pipeline.Options{
		Formats:   []string{pipeline.FormatSVG},
		Settings:  snap.Settings,
		Highlight: snap.Selected,
		Logger:    w.logger,
	})
	if err != nil {
		return nil, err
	}
	return artifacts[pipeline.FormatSVG], nil
}

// =============================================================================
// Export
// =============================================================================

// ExportCSV writes the current edge list as CSV to dst and returns the number
// of rows written. A graph without edges aborts the export with a warning
// notice and an ErrCodeNoEdges error; nothing is written to dst.
func (w *Workspace) ExportCSV(ctx context.Context, dst io.Writer) (int, error) {
	snap := w.Snapshot()
	if snap.Graph == nil {
		err := errors.New(errors.ErrCodeNoEdges, "nothing to export; load a graph first")
		w.exportFailed(ctx, err)
		return 0, err
	}

	var buf bytes.Buffer
	if err := graphio.WriteCSV(snap.Graph, &buf); err != nil {
		w.exportFailed(ctx, err)
		return 0, err
	}
	if _, err := buf.WriteTo(dst); err != nil {
		w.exportFailed(ctx, err)
		return 0, err
	}

	rows := snap.Graph.EdgeCount()
	observability.Workspace().OnExport(ctx, rows, nil)
	return rows, nil
}

func (w *Workspace) exportFailed(ctx context.Context, err error) {
	observability.Workspace().OnExport(ctx, 0, err)
	level := LevelError
	if errors.Is(err, errors.ErrCodeNoEdges) {
		level = LevelWarn
	}
	w.publish(ctx, noticeFor(level, err, 0))
}

// =============================================================================
// Helpers
// =============================================================================

func errNotLoaded() error {
	return errors.New(errors.ErrCodeNotFound, "no graph loaded; rebuild first")
}

func orphanMessage(n int, mode string) string {
	noun := "nodes are"
	if n == 1 {
		noun = "node is"
	}
	if mode == layout.OrphanDrop.String() {
		return strconv.Itoa(n) + " " + noun + " unreachable from any root and not placed"
	}
	return strconv.Itoa(n) + " " + noun + " unreachable from any root, placed on an extra level"
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
