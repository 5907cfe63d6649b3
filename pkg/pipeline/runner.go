package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/codegraph/pkg/cache"
	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/layout"
	"github.com/matzehuels/codegraph/pkg/observability"
	"github.com/matzehuels/codegraph/pkg/tree"
)

// Cache key types reported to observability hooks.
const (
	keyTypeGraph    = "graph"
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the server and the workspace all use it so cache keys and
// defaults stay identical.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage cache TTLs when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	buildStart := time.Now()
	root, g, buildHit, err := r.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	buildTime := time.Since(buildStart)

	r.Logger.Info("built graph",
		"source", opts.Source,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", buildTime)

	result, err := r.ExecuteGraph(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Tree = root
	result.Stats.BuildTime = buildTime
	result.CacheInfo.BuildHit = buildHit
	return result, nil
}

// ExecuteGraph runs layout and render on a graph that was built elsewhere,
// such as a graph JSON file given to the CLI.
func (r *Runner) ExecuteGraph(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	if data, err := graph.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(data)
	}

	layoutStart := time.Now()
	laid, res, layoutHit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Graph = laid
	result.Layout = res
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"mode", opts.Mode,
		"levels", len(res.Levels),
		"orphans", len(res.Orphans),
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, laid, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// buildRecord is the cached form of a build.
type buildRecord struct {
	Tree  *tree.Node     `json:"tree"`
	Graph graph.Document `json:"graph"`
}

// BuildWithCacheInfo builds the tree and graph with caching and returns cache
// hit info. Only reproducible builds (the sample, seeded synthesis) are cached.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, opts Options) (*tree.Node, *graph.Graph, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBuild(); err != nil {
		return nil, nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, opts.Source)
	start := time.Now()

	cacheable := opts.Cacheable()
	cacheKey := r.Keyer.GraphKey(opts.GraphKeyOpts())

	if cacheable && !opts.Refresh {
		if root, g, ok := r.cachedBuild(ctx, cacheKey); ok {
			hooks.OnBuildComplete(ctx, opts.Source, g.NodeCount(), g.EdgeCount(), time.Since(start), nil)
			return root, g, true, nil
		}
	}

	root, g, err := Build(opts)
	if err != nil {
		hooks.OnBuildComplete(ctx, opts.Source, 0, 0, time.Since(start), err)
		return nil, nil, false, err
	}
	hooks.OnBuildComplete(ctx, opts.Source, g.NodeCount(), g.EdgeCount(), time.Since(start), nil)

	if cacheable {
		if data, err := json.Marshal(buildRecord{Tree: root, Graph: g.Document()}); err == nil {
			r.set(ctx, keyTypeGraph, cacheKey, data, cache.TTLGraph)
		}
	}

	return root, g, false, nil
}

func (r *Runner) cachedBuild(ctx context.Context, key string) (*tree.Node, *graph.Graph, bool) {
	data, ok := r.get(ctx, keyTypeGraph, key)
	if !ok {
		return nil, nil, false
	}
	var rec buildRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		r.Logger.Debug("discarding unreadable cached build", "error", err)
		return nil, nil, false
	}
	g, err := graph.FromDocument(rec.Graph)
	if err != nil {
		r.Logger.Debug("discarding invalid cached graph", "error", err)
		return nil, nil, false
	}
	return rec.Tree, g, true
}

// Build is a convenience wrapper that calls BuildWithCacheInfo and discards the cache hit info.
func (r *Runner) Build(ctx context.Context, opts Options) (*tree.Node, *graph.Graph, error) {
	root, g, _, err := r.BuildWithCacheInfo(ctx, opts)
	return root, g, err
}

// LayoutWithCacheInfo lays out g with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (*graph.Graph, layout.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, layout.Result{}, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Mode, g.NodeCount())
	start := time.Now()

	if !opts.IsLayered() {
		laid, res := GenerateLayout(g, opts)
		hooks.OnLayoutComplete(ctx, opts.Mode, 0, time.Since(start), nil)
		return laid, res, false, nil
	}

	graphData, err := graph.MarshalGraph(g)
	if err != nil {
		hooks.OnLayoutComplete(ctx, opts.Mode, 0, time.Since(start), err)
		return nil, layout.Result{}, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(graphData), opts.LayoutKeyOpts())

	if data, ok := r.get(ctx, keyTypeLayout, cacheKey); ok {
		var rec layoutRecord
		if err := json.Unmarshal(data, &rec); err == nil {
			if laid, res, err := rec.decode(); err == nil {
				hooks.OnLayoutComplete(ctx, opts.Mode, len(res.Orphans), time.Since(start), nil)
				return laid, res, true, nil
			}
		}
		// If deserialization fails, fall through to recompute
	}

	laid, res := GenerateLayout(g, opts)
	hooks.OnLayoutComplete(ctx, opts.Mode, len(res.Orphans), time.Since(start), nil)

	if data, err := json.Marshal(newLayoutRecord(laid, res)); err == nil {
		r.set(ctx, keyTypeLayout, cacheKey, data, cache.TTLLayout)
	}

	return laid, res, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, g *graph.Graph, opts Options) (*graph.Graph, layout.Result, error) {
	laid, res, _, err := r.LayoutWithCacheInfo(ctx, g, opts)
	return laid, res, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// Only the formats missing from the cache are rendered.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	graphData, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	graphHash := cache.Hash(graphData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if _, dup := artifacts[format]; dup || slices.Contains(missing, format) {
			continue
		}
		key := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		if data, ok := r.get(ctx, keyTypeArtifact, key); ok {
			artifacts[format] = data
			continue
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, g, renderOpts)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		r.set(ctx, keyTypeArtifact, key, data, cache.TTLArtifact)
		artifacts[format] = data
	}

	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// get reads from the cache, reporting the outcome to the cache hooks.
// Cache errors count as misses.
func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "type", keyType, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// set writes to the cache. Failures are logged and otherwise ignored.
func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
