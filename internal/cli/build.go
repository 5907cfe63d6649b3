package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/pkg/graph"
	graphio "github.com/matzehuels/codegraph/pkg/io"
	"github.com/matzehuels/codegraph/pkg/pipeline"
)

// buildCommand creates the build command for turning trees into graphs.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		src     sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "build [tree.json]",
		Short: "Turn a codebase tree into a graph",
		Long: `Turn a codebase tree into a graph of containment and simulated import edges.

With a tree file (as written by 'generate') that tree is used. Otherwise a
tree is synthesized from --source first, exactly like 'generate' would.

The graph is written as JSON and can be laid out with 'layout', rendered
with 'render' or exported with 'export'. Seeded builds are cached.`,
		Example: `  codegraph build tree.json
  codegraph build --seed 7 --folders 5 -o graph.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			if err := src.apply(cmd, &opts); err != nil {
				return err
			}
			if len(args) == 1 {
				return c.runBuildTree(cmd.Context(), args[0], opts, output)
			}
			return c.runBuild(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultGraphFile, "output file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	src.register(cmd)

	return cmd
}

// runBuild synthesizes a tree from opts and builds its graph.
func (c *CLI) runBuild(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Building %s graph...", sourceName(opts)))
	spinner.Start()

	_, g, cacheHit, err := runner.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return c.writeGraph(g, output, cacheHit)
}

// runBuildTree builds the graph of a tree file.
func (c *CLI) runBuildTree(ctx context.Context, input string, opts pipeline.Options, output string) error {
	root, err := graphio.ImportTree(input)
	if err != nil {
		return fmt.Errorf("load tree %s: %w", input, err)
	}
	prog := newProgress(loggerFromContext(ctx))

	g, err := pipeline.BuildTree(root, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built graph of %s", input))

	return c.writeGraph(g, output, false)
}

func (c *CLI) writeGraph(g *graph.Graph, output string, cacheHit bool) error {
	if err := graph.WriteGraphFile(g, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Graph built")
	printFile(output)
	printStats(g.NodeCount(), g.EdgeCount(), cacheHit)
	printKeyValue("Imports", fmt.Sprint(len(g.EdgesOfKind(graph.EdgeDependency))))
	printNewline()
	printNextStep("Lay out", "codegraph layout "+output)

	return nil
}

func sourceName(opts pipeline.Options) string {
	if opts.Source == "" {
		return pipeline.DefaultSource
	}
	return opts.Source
}
