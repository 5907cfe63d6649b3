// Package pipeline provides the core visualization pipeline for codegraph.
//
// This package implements the complete synthesize → build → layout → render
// pipeline used by the CLI, the HTTP server and the workspace. Centralizing
// it keeps defaults and cache keys identical across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: synthesize a tree (or load the sample) and turn it into a graph
//  2. Layout: keep the builder's positions or run the layered layout
//  3. Render: produce output in various formats (JSON, CSV, DOT, SVG, PNG, PDF)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  pipeline.SourceSynthetic,
//	    Seed:    42,
//	    Formats: []string{"svg", "csv"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	root, g, err := runner.Build(ctx, opts)
//	laid, res, err := runner.Layout(ctx, g, opts)
//	artifacts, err := runner.Render(ctx, laid, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/codegraph/pkg/cache"
	"github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/layout"
	"github.com/matzehuels/codegraph/pkg/random"
	"github.com/matzehuels/codegraph/pkg/render"
	"github.com/matzehuels/codegraph/pkg/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Workspace
// =============================================================================

// Graph sources.
const (
	SourceSample    = "sample"
	SourceSynthetic = "synthetic"
	SourceSelection = "selection"
)

// Layout modes.
const (
	// ModeBuilder keeps the positions computed by the graph builder.
	ModeBuilder = "builder"
	// ModeLayered overwrites positions with the layered layout.
	ModeLayered = "layered"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

const (
	// DefaultSource is the graph source used when none is given.
	DefaultSource = SourceSynthetic

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0
)

// ValidSources is the set of supported graph sources.
var ValidSources = map[string]bool{
	SourceSample:    true,
	SourceSynthetic: true,
	SourceSelection: true,
}

// ValidModes is the set of supported layout modes.
var ValidModes = map[string]bool{
	ModeBuilder: true,
	ModeLayered: true,
}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatCSV:  true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	Source   string            `json:"source,omitempty"`
	Seed     uint64            `json:"seed,omitempty"` // 0 means unseeded: every run differs and nothing is cached
	Folders  int               `json:"folders,omitempty"`
	RootName string            `json:"root_name,omitempty"`
	Files    []tree.FileHandle `json:"files,omitempty"` // selection source only
	NoJitter bool              `json:"no_jitter,omitempty"`
	NoDeps   bool              `json:"no_deps,omitempty"`

	// HorizontalSpacing and VerticalSpacing override the builder spacing.
	HorizontalSpacing float64 `json:"horizontal_spacing,omitempty"`
	VerticalSpacing   float64 `json:"vertical_spacing,omitempty"`

	// Layout options
	Mode        string  `json:"mode,omitempty"`
	Strategy    string  `json:"strategy,omitempty"`
	Orphans     string  `json:"orphans,omitempty"`
	NodeWidth   float64 `json:"node_width,omitempty"`
	LevelHeight float64 `json:"level_height,omitempty"`

	// Render options
	Formats   []string        `json:"formats,omitempty"`
	Settings  render.Settings `json:"settings,omitzero"`
	Detailed  bool            `json:"detailed,omitempty"`
	Highlight string          `json:"highlight,omitempty"`
	Scale     float64         `json:"scale,omitempty"`

	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger   `json:"-"`
	Rand   random.Source `json:"-"` // overrides Seed when set

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the synthesized tree, nil when the graph was supplied directly.
	Tree *tree.Node

	// Graph is the laid-out graph.
	Graph *graph.Graph

	// GraphHash is the content hash of the graph before layout.
	GraphHash string

	// Layout describes the layered layout run. Zero for ModeBuilder.
	Layout layout.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the graph came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateSource checks that a graph source is valid.
func ValidateSource(source string) error {
	if !ValidSources[source] {
		return errors.New(errors.ErrCodeInvalidSource, "invalid source: %q (must be one of: sample, synthetic, selection)", source)
	}
	return nil
}

// ValidateMode checks that a layout mode is valid.
func ValidateMode(mode string) error {
	if !ValidModes[mode] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid mode: %q (must be one of: builder, layered)", mode)
	}
	return nil
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, csv, dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStrategy checks that a layering strategy is valid.
func ValidateStrategy(strategy string) error {
	switch layout.Strategy(strategy) {
	case layout.StrategyReachability, layout.StrategyLongestPath:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid strategy: %q (must be one of: reachability, longest-path)", strategy)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks the build fields and applies their defaults.
func (o *Options) ValidateForBuild() error {
	if o.Source == "" {
		o.Source = DefaultSource
	}
	if err := ValidateSource(o.Source); err != nil {
		return err
	}
	if o.Source == SourceSelection && len(o.Files) == 0 {
		return errors.New(errors.ErrCodeNoSelection, "no files selected")
	}
	if o.Folders < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "folders must not be negative")
	}
	if o.Folders == 0 {
		o.Folders = tree.DefaultFolders
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
// The sample has no builder positions, so it defaults to the layered layout.
func (o *Options) SetLayoutDefaults() {
	if o.Mode == "" {
		o.Mode = ModeBuilder
		if o.Source == SourceSample {
			o.Mode = ModeLayered
		}
	}
	if o.Strategy == "" {
		o.Strategy = string(layout.StrategyReachability)
	}
	if o.Orphans == "" {
		o.Orphans = layout.OrphanAppend.String()
	}
	if o.NodeWidth == 0 {
		o.NodeWidth = layout.DefaultNodeWidth
	}
	if o.LevelHeight == 0 {
		o.LevelHeight = layout.DefaultLevelHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	if _, err := layout.ParseOrphanMode(o.Orphans); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid orphans")
	}
	if o.NodeWidth < 0 || o.LevelHeight < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout spacing must not be negative")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.Settings = o.Settings.WithDefaults()
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must not be negative")
	}
	return o.Settings.Validate()
}

// IsLayered returns true if the layered layout replaces builder positions.
func (o *Options) IsLayered() bool {
	return o.Mode == ModeLayered
}

// Cacheable reports whether the build stage is reproducible, which is the
// case for the sample and for seeded synthesis.
func (o *Options) Cacheable() bool {
	return o.Rand == nil && (o.Source == SourceSample || o.Seed != 0)
}

// RandomSource returns the source that drives synthesis and building.
func (o *Options) RandomSource() random.Source {
	switch {
	case o.Rand != nil:
		return o.Rand
	case o.Seed != 0:
		return random.New(o.Seed)
	default:
		return random.NewUnseeded()
	}
}

// Selection returns the file selection of the selection source.
func (o *Options) Selection() tree.Selection {
	return tree.Selection{Files: o.Files}
}

// TreeOptions returns synthesizer options.
func (o *Options) TreeOptions() tree.Options {
	return tree.Options{Folders: o.Folders, RootName: o.RootName}
}

// BuildOptions returns graph builder options drawing from rng.
func (o *Options) BuildOptions(rng random.Source) graph.BuildOptions {
	return graph.BuildOptions{
		Rand:              rng,
		HorizontalSpacing: o.HorizontalSpacing,
		VerticalSpacing:   o.VerticalSpacing,
		NoJitter:          o.NoJitter,
		NoDependencies:    o.NoDeps,
	}
}

// LayoutOptions returns layered layout options.
func (o *Options) LayoutOptions() layout.Options {
	mode, _ := layout.ParseOrphanMode(o.Orphans)
	return layout.Options{
		NodeWidth:   o.NodeWidth,
		LevelHeight: o.LevelHeight,
		Orphans:     mode,
		Strategy:    layout.Strategy(o.Strategy),
	}
}

// GraphKeyOpts returns cache key options for the build stage.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	opts := cache.GraphKeyOpts{
		Source:   o.Source,
		Seed:     o.Seed,
		Folders:  o.Folders,
		NoJitter: o.NoJitter,
		NoDeps:   o.NoDeps,
	}
	if o.Source == SourceSample {
		opts.Seed, opts.Folders = 0, 0
	}
	if o.Source == SourceSelection {
		paths := make([]string, 0, len(o.Files))
		for _, f := range o.Files {
			paths = append(paths, f.Path+"/"+f.Name)
		}
		opts.Selection = cache.HashPaths(paths)
	}
	return opts
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	opts := cache.LayoutKeyOpts{Mode: o.Mode}
	if o.IsLayered() {
		opts.Strategy = o.Strategy
		opts.Orphans = o.Orphans
		opts.NodeWidth = o.NodeWidth
		opts.LevelHeight = o.LevelHeight
	}
	return opts
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatDOT, FormatSVG, FormatPNG, FormatPDF:
		opts.NodeSize = o.Settings.NodeSize
		opts.NodePadding = o.Settings.NodePadding
		opts.EdgeStyle = o.Settings.EdgeStyle
		opts.ColorScheme = o.Settings.ColorScheme
		opts.Detailed = o.Detailed
		opts.Highlight = o.Highlight
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
