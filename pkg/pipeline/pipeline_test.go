package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/codegraph/pkg/cache"
	"github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/layout"
	"github.com/matzehuels/codegraph/pkg/render"
	"github.com/matzehuels/codegraph/pkg/tree"
)

func quietRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	return NewRunner(c, nil, log.New(&bytes.Buffer{}))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"csv", false},
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "csv"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateSource(t *testing.T) {
	for _, s := range []string{"sample", "synthetic", "selection"} {
		if err := ValidateSource(s); err != nil {
			t.Errorf("ValidateSource(%q) = %v", s, err)
		}
	}
	err := ValidateSource("upload")
	if !errors.Is(err, errors.ErrCodeInvalidSource) {
		t.Errorf("ValidateSource(upload) = %v, want INVALID_SOURCE", err)
	}
}

func TestValidateStrategy(t *testing.T) {
	if err := ValidateStrategy("reachability"); err != nil {
		t.Error(err)
	}
	if err := ValidateStrategy("longest-path"); err != nil {
		t.Error(err)
	}
	if err := ValidateStrategy("spring"); err == nil {
		t.Error("unknown strategy should fail")
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	if opts.Source != DefaultSource {
		t.Errorf("Source = %q, want %q", opts.Source, DefaultSource)
	}
	if opts.Folders != tree.DefaultFolders {
		t.Errorf("Folders = %d, want %d", opts.Folders, tree.DefaultFolders)
	}
	if opts.Mode != ModeBuilder {
		t.Errorf("Mode = %q, want builder", opts.Mode)
	}
	if opts.NodeWidth != layout.DefaultNodeWidth || opts.LevelHeight != layout.DefaultLevelHeight {
		t.Errorf("spacing = %v x %v", opts.NodeWidth, opts.LevelHeight)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Settings != render.DefaultSettings() {
		t.Errorf("Settings = %+v", opts.Settings)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestSampleDefaultsToLayered(t *testing.T) {
	opts := Options{Source: SourceSample}
	opts.SetLayoutDefaults()
	if opts.Mode != ModeLayered {
		t.Errorf("Mode = %q, want layered", opts.Mode)
	}
}

func TestValidateForBuild(t *testing.T) {
	opts := Options{Source: SourceSelection}
	if err := opts.ValidateForBuild(); !errors.Is(err, errors.ErrCodeNoSelection) {
		t.Errorf("empty selection = %v, want NO_SELECTION", err)
	}

	opts = Options{Folders: -1}
	if err := opts.ValidateForBuild(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("negative folders = %v, want INVALID_INPUT", err)
	}

	opts = Options{Source: SourceSelection, Files: []tree.FileHandle{{Name: "a.go", Path: "cmd"}}}
	if err := opts.ValidateForBuild(); err != nil {
		t.Errorf("selection with files: %v", err)
	}
}

func TestValidateForRenderSettings(t *testing.T) {
	opts := Options{Settings: render.Settings{NodeSize: 1000}}
	err := opts.ValidateForRender()
	if !errors.Is(err, errors.ErrCodeInvalidSettings) {
		t.Errorf("err = %v, want INVALID_SETTINGS", err)
	}

	opts = Options{Settings: render.Settings{EdgeStyle: render.EdgeStep}}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatal(err)
	}
	if opts.Settings.EdgeStyle != render.EdgeStep || opts.Settings.NodeSize != render.DefaultSettings().NodeSize {
		t.Errorf("partial settings should merge over defaults: %+v", opts.Settings)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Source: SourceSample}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	before := opts

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Mode != before.Mode || opts.Folders != before.Folders || opts.Settings != before.Settings {
		t.Error("second call changed options")
	}
}

func TestCacheable(t *testing.T) {
	tests := []struct {
		opts Options
		want bool
	}{
		{Options{Source: SourceSynthetic}, false},
		{Options{Source: SourceSynthetic, Seed: 1}, true},
		{Options{Source: SourceSample}, true},
		{Options{Source: SourceSelection, Seed: 3}, true},
	}
	for _, tt := range tests {
		if got := tt.opts.Cacheable(); got != tt.want {
			t.Errorf("Cacheable(%+v) = %v, want %v", tt.opts, got, tt.want)
		}
	}
}

func TestArtifactKeyOptsIgnoreStyleForData(t *testing.T) {
	a := Options{Settings: render.Settings{ColorScheme: render.SchemeOcean}}
	b := Options{Settings: render.Settings{ColorScheme: render.SchemeForest}}
	_ = a.ValidateForRender()
	_ = b.ValidateForRender()

	keyer := cache.NewDefaultKeyer()
	if keyer.ArtifactKey("h", a.ArtifactKeyOpts(FormatCSV)) != keyer.ArtifactKey("h", b.ArtifactKeyOpts(FormatCSV)) {
		t.Error("csv key should not depend on the color scheme")
	}
	if keyer.ArtifactKey("h", a.ArtifactKeyOpts(FormatSVG)) == keyer.ArtifactKey("h", b.ArtifactKeyOpts(FormatSVG)) {
		t.Error("svg key should depend on the color scheme")
	}
}

func TestGraphKeyOptsSelectionOrderInsensitive(t *testing.T) {
	a := Options{Source: SourceSelection, Files: []tree.FileHandle{{Name: "a", Path: "x"}, {Name: "b", Path: "y"}}}
	b := Options{Source: SourceSelection, Files: []tree.FileHandle{{Name: "b", Path: "y"}, {Name: "a", Path: "x"}}}
	if a.GraphKeyOpts() != b.GraphKeyOpts() {
		t.Error("selection order should not change the graph key")
	}
}

func TestBuildSeededIsReproducible(t *testing.T) {
	opts := Options{Seed: 99, Folders: 3}
	if err := opts.ValidateForBuild(); err != nil {
		t.Fatal(err)
	}

	_, g1, err := Build(opts)
	if err != nil {
		t.Fatal(err)
	}
	_, g2, err := Build(opts)
	if err != nil {
		t.Fatal(err)
	}

	d1, _ := graph.MarshalGraph(g1)
	d2, _ := graph.MarshalGraph(g2)
	if !bytes.Equal(d1, d2) {
		t.Error("same seed should produce identical graphs")
	}
}

func TestBuildSelection(t *testing.T) {
	opts := Options{
		Source: SourceSelection,
		Seed:   5,
		Files: []tree.FileHandle{
			{Name: "main.go", Path: "cmd/main.go"},
			{Name: "server.go", Path: "internal/server.go"},
		},
	}
	if err := opts.ValidateForBuild(); err != nil {
		t.Fatal(err)
	}
	root, g, err := Build(opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(root.Children) != 2 {
		t.Errorf("top-level folders = %d, want 2", len(root.Children))
	}
	if g.NodeCount() != tree.Count(root) {
		t.Errorf("nodes = %d, tree = %d", g.NodeCount(), tree.Count(root))
	}
}

func TestExecuteSampleLayered(t *testing.T) {
	r := quietRunner(t, nil)
	res, err := r.Execute(context.Background(), Options{
		Source:  SourceSample,
		Formats: []string{FormatJSON, FormatCSV},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Layout.Levels) != 3 || res.Layout.HasOrphans() {
		t.Fatalf("levels = %v, orphans = %v", res.Layout.Levels, res.Layout.Orphans)
	}
	n, _ := res.Graph.Node("main.tsx")
	if n.Level != 0 {
		t.Errorf("main.tsx level = %d, want 0", n.Level)
	}
	n, _ = res.Graph.Node("pages/Index.tsx")
	if n.Level != 2 || n.Position.Y != 2*layout.DefaultLevelHeight {
		t.Errorf("Index.tsx = %+v", n)
	}

	csv := string(res.Artifacts[FormatCSV])
	if lines := strings.Count(csv, "\n"); lines != res.Graph.EdgeCount()+1 {
		t.Errorf("csv lines = %d, want %d", lines, res.Graph.EdgeCount()+1)
	}
	if res.Tree == nil || res.Tree.Name != "sample" {
		t.Errorf("tree = %v", res.Tree)
	}
}

func TestExecuteUsesCache(t *testing.T) {
	mem, err := cache.NewMemoryCache(64)
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(t, mem)
	opts := Options{
		Seed:    7,
		Mode:    ModeLayered,
		Formats: []string{FormatJSON, FormatDOT},
	}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.BuildHit || first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.BuildHit || !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatJSON], second.Artifacts[FormatJSON]) {
		t.Error("cached json differs")
	}
	if first.GraphHash != second.GraphHash {
		t.Error("graph hash differs between runs")
	}
	if tree.Count(second.Tree) != tree.Count(first.Tree) {
		t.Error("cached tree differs")
	}
}

func TestExecuteUnseededSkipsBuildCache(t *testing.T) {
	mem, err := cache.NewMemoryCache(64)
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(t, mem)
	opts := Options{Formats: []string{FormatJSON}}

	for range 2 {
		res, err := r.Execute(context.Background(), opts)
		if err != nil {
			t.Fatal(err)
		}
		if res.CacheInfo.BuildHit {
			t.Error("unseeded builds must not be cached")
		}
	}
}

func TestRenderCSVWithoutEdges(t *testing.T) {
	g := graph.New()
	if err := g.AddNode(graph.Node{ID: "root", Label: "project"}); err != nil {
		t.Fatal(err)
	}

	r := quietRunner(t, nil)
	_, err := r.Render(context.Background(), g, Options{Formats: []string{FormatCSV}})
	if !errors.Is(err, errors.ErrCodeNoEdges) {
		t.Errorf("err = %v, want NO_EDGES", err)
	}
}

func TestRenderDuplicateFormats(t *testing.T) {
	r := quietRunner(t, nil)
	_, g, err := r.Build(context.Background(), Options{Source: SourceSample})
	if err != nil {
		t.Fatal(err)
	}
	artifacts, err := r.Render(context.Background(), g, Options{Formats: []string{FormatDOT, FormatDOT}})
	if err != nil {
		t.Fatal(err)
	}
	if len(artifacts) != 1 || !strings.HasPrefix(string(artifacts[FormatDOT]), "digraph") {
		t.Errorf("artifacts = %v", artifacts)
	}
}

func TestGenerateLayoutBuilderKeepsPositions(t *testing.T) {
	opts := Options{Seed: 1}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	_, g, err := Build(opts)
	if err != nil {
		t.Fatal(err)
	}
	laid, res := GenerateLayout(g, opts)
	if laid != g {
		t.Error("builder mode should return the input graph")
	}
	if res.OrphanLevel != -1 || len(res.Levels) != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestBuildTreeMatchesTreeCount(t *testing.T) {
	root := tree.NewFolder("repo",
		tree.NewFolder("a", tree.NewFile("x.go", 10)),
		tree.NewFolder("b", tree.NewFile("y.go", 20)),
	)
	g, err := BuildTree(root, Options{Seed: 5, NoDeps: true})
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != tree.Count(root) {
		t.Errorf("nodes = %d, want %d", g.NodeCount(), tree.Count(root))
	}
	if g.EdgeCount() != tree.Count(root)-1 {
		t.Errorf("edges = %d, want %d", g.EdgeCount(), tree.Count(root)-1)
	}

	if _, err := BuildTree(nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nil tree: err = %v", err)
	}
}

// ttlCache records the TTL of every write.
type ttlCache struct {
	cache.Cache
	ttls []time.Duration
}

func (c *ttlCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.ttls = append(c.ttls, ttl)
	return c.Cache.Set(ctx, key, data, ttl)
}

func TestRunnerTTLOverride(t *testing.T) {
	rec := &ttlCache{Cache: cache.NewNullCache()}
	r := quietRunner(t, rec)
	r.TTL = time.Minute

	if _, err := r.Execute(context.Background(), Options{Source: SourceSample, Formats: []string{FormatJSON}}); err != nil {
		t.Fatal(err)
	}
	if len(rec.ttls) == 0 {
		t.Fatal("no cache writes recorded")
	}
	for _, ttl := range rec.ttls {
		if ttl != time.Minute {
			t.Errorf("ttl = %v, want %v", ttl, time.Minute)
		}
	}
}
