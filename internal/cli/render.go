package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/pipeline"
)

// renderCommand creates the render command for generating output artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
		src        sourceFlags
		lay        layoutFlags
		rf         renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render a graph to JSON, CSV, DOT, SVG, PNG or PDF",
		Long: `Render a graph to one or more output formats.

With a graph file (from 'build' or 'layout') that graph is rendered.
Otherwise the whole pipeline runs: a tree is synthesized from --source, built
into a graph, laid out and rendered.

SVG is drawn by Graphviz at the node positions; PNG and PDF are converted
from the SVG with rsvg-convert. Several formats can be given at once, in
which case --output is used as the base path.`,
		Example: `  codegraph render --seed 7 -f svg,csv
  codegraph render codegraph.json -m layered --scheme ocean -o graph.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			if err := src.apply(cmd, &opts); err != nil {
				return err
			}
			lay.apply(cmd, &opts)
			if err := rf.apply(cmd, &opts); err != nil {
				return err
			}
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd.Context(), input, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, csv, dot, png, pdf (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	src.register(cmd)
	lay.register(cmd, "")
	rf.register(cmd)

	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// runRender runs the pipeline for input (or for the configured source when
// input is empty) and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var (
		result  *pipeline.Result
		spinner *Spinner
	)
	if input != "" {
		g, err := graph.ReadGraphFile(input)
		if err != nil {
			return fmt.Errorf("load graph %s: %w", input, err)
		}
		spinner = newSpinnerWithContext(ctx, "Rendering "+input+"...")
		spinner.Start()
		result, err = runner.ExecuteGraph(ctx, g, opts)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
	} else {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s graph...", sourceName(opts)))
		spinner.Start()
		result, err = runner.Execute(ctx, opts)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
	}
	if ctx.Err() != nil {
		spinner.Stop()
		return ctx.Err()
	}

	spinner.SetMessage("Writing files...")
	paths, err := writeArtifacts(result.Artifacts, opts.Formats, output, input)
	if err != nil {
		spinner.StopWithError("Write failed")
		return err
	}
	spinner.Stop()

	printSuccess("Rendered %d %s", len(paths), plural(len(paths), "file", "files"))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	printLevels(result.Layout)
	printOrphans(result.Layout, opts.Orphans)
	return nil
}

// writeArtifacts writes artifacts in the order of formats and returns the
// paths written. A single format with an explicit output goes to output
// verbatim; otherwise every file is <base>.<format>.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	var unique []string
	for _, f := range formats {
		if !slices.Contains(unique, f) {
			unique = append(unique, f)
		}
	}
	formats = unique
	base := basePath(output, input)

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			return paths, fmt.Errorf("no %s output produced", format)
		}
		path := base + "." + format
		if len(formats) == 1 && output != "" {
			path = output
		}
		if path == input {
			path = base + ".rendered." + format
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write output %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
