package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/pkg/pipeline"
	"github.com/matzehuels/codegraph/pkg/tree"
)

// sourceFlags are the build flags shared by generate, build and render.
// Only flags the user actually set override the configuration.
type sourceFlags struct {
	source   string
	seed     uint64
	folders  int
	dir      string
	noJitter bool
	noDeps   bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "graph source: synthetic (default), sample, selection")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed (0: different every run, never cached)")
	cmd.Flags().IntVar(&f.folders, "folders", 0, "number of top-level folders to synthesize")
	cmd.Flags().StringVar(&f.dir, "select", "", "list file handles from a directory (implies --source selection)")
	cmd.Flags().BoolVar(&f.noJitter, "no-jitter", false, "place nodes on the exact grid")
	cmd.Flags().BoolVar(&f.noDeps, "no-deps", false, "skip simulated import edges")

	_ = cmd.RegisterFlagCompletionFunc("source", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{pipeline.SourceSynthetic, pipeline.SourceSample, pipeline.SourceSelection}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.MarkFlagDirname("select")
}

// apply copies the flags the user set onto opts.
func (f *sourceFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	flags := cmd.Flags()
	if flags.Changed("source") {
		opts.Source = f.source
	}
	if flags.Changed("seed") {
		opts.Seed = f.seed
	}
	if flags.Changed("folders") {
		opts.Folders = f.folders
	}
	if flags.Changed("no-jitter") {
		opts.NoJitter = f.noJitter
	}
	if flags.Changed("no-deps") {
		opts.NoDeps = f.noDeps
	}
	if f.dir != "" {
		sel, err := tree.SelectionFromDir(f.dir)
		if err != nil {
			return fmt.Errorf("list %s: %w", f.dir, err)
		}
		opts.Source = pipeline.SourceSelection
		opts.Files = sel.Files
		if opts.RootName == "" {
			opts.RootName = rootNameFor(f.dir)
		}
	}
	return nil
}

// renderFlags are the per-run render options shared by render and browse.
type renderFlags struct {
	scheme    string
	edgeStyle string
	nodeSize  int
	detailed  bool
	highlight string
	scale     float64
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.scheme, "scheme", "", "color scheme: default, ocean, forest, sunset, mono")
	cmd.Flags().StringVar(&f.edgeStyle, "edge-style", "", "edge style: straight, curved, step")
	cmd.Flags().IntVar(&f.nodeSize, "node-size", 0, "node size in pixels")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show paths and sizes on nodes")
	cmd.Flags().StringVar(&f.highlight, "highlight", "", "node ID to highlight")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
}

// apply merges the set flags into opts.Settings and validates the result.
func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	patch := opts.Settings
	if f.scheme != "" {
		patch.ColorScheme = f.scheme
	}
	if f.edgeStyle != "" {
		patch.EdgeStyle = f.edgeStyle
	}
	if f.nodeSize != 0 {
		patch.NodeSize = f.nodeSize
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	opts.Settings = patch
	opts.Detailed = f.detailed
	opts.Highlight = f.highlight
	if cmd.Flags().Changed("scale") {
		opts.Scale = f.scale
	}
	return nil
}

// layoutFlags are the layout options shared by layout, render and browse.
type layoutFlags struct {
	mode        string
	strategy    string
	orphans     string
	nodeWidth   float64
	levelHeight float64
}

func (f *layoutFlags) register(cmd *cobra.Command, defaultMode string) {
	cmd.Flags().StringVarP(&f.mode, "mode", "m", defaultMode, "layout mode: layered, builder")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "level assignment: reachability (default), longest-path")
	cmd.Flags().StringVar(&f.orphans, "orphans", "", "unreachable nodes: append (default), drop")
	cmd.Flags().Float64Var(&f.nodeWidth, "node-width", 0, "horizontal distance between nodes of a level")
	cmd.Flags().Float64Var(&f.levelHeight, "level-height", 0, "vertical distance between levels")

	_ = cmd.RegisterFlagCompletionFunc("mode", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{pipeline.ModeLayered, pipeline.ModeBuilder}, cobra.ShellCompDirectiveNoFileComp
	})
}

// apply copies the flags the user set onto opts. The mode flag always
// applies when it has a default.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	flags := cmd.Flags()
	if f.mode != "" && (flags.Changed("mode") || opts.Mode == "") {
		opts.Mode = f.mode
	}
	if flags.Changed("strategy") {
		opts.Strategy = f.strategy
	}
	if flags.Changed("orphans") {
		opts.Orphans = f.orphans
	}
	if flags.Changed("node-width") {
		opts.NodeWidth = f.nodeWidth
	}
	if flags.Changed("level-height") {
		opts.LevelHeight = f.levelHeight
	}
}
