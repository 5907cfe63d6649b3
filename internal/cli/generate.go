package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	graphio "github.com/matzehuels/codegraph/pkg/io"
	"github.com/matzehuels/codegraph/pkg/pipeline"
	"github.com/matzehuels/codegraph/pkg/tree"
)

// defaultTreeFile is written by generate when no output is given.
const defaultTreeFile = "tree.json"

// generateCommand creates the generate command for synthesizing trees.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		output string
		src    sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Synthesize a codebase tree",
		Long: `Synthesize a codebase tree and write it as JSON.

Without flags a random project with a handful of top-level folders is
synthesized. Use --seed for a reproducible tree, --source sample for the
built-in sample project, or --select to list the files of a real directory
(only names, paths and sizes are read).

The tree can be edited and passed to 'build'.`,
		Example: `  codegraph generate --seed 7
  codegraph generate --select ./src -o src.tree.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			if err := src.apply(cmd, &opts); err != nil {
				return err
			}
			return c.runGenerate(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultTreeFile, "output file")
	src.register(cmd)

	return cmd
}

// runGenerate synthesizes the tree and writes it to output.
func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, output string) error {
	if err := opts.ValidateForBuild(); err != nil {
		return err
	}
	prog := newProgress(loggerFromContext(ctx))

	root, err := pipeline.Synthesize(opts.RandomSource(), opts)
	if err != nil {
		return fmt.Errorf("synthesize tree: %w", err)
	}
	if err := graphio.ExportTree(root, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	prog.done(fmt.Sprintf("Synthesized %d nodes", tree.Count(root)))

	printSuccess("Generated %s tree", opts.Source)
	printFile(output)
	printKeyValue("Folders", fmt.Sprint(tree.CountKind(root, tree.KindFolder)))
	printKeyValue("Files", fmt.Sprint(tree.CountKind(root, tree.KindFile)))
	printKeyValue("Depth", fmt.Sprint(tree.Depth(root)))
	printNewline()
	printNextStep("Build the graph", "codegraph build "+output)

	return nil
}

// rootNameFor names the tree root after the selected directory.
func rootNameFor(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	name := filepath.Base(dir)
	if name == "." || name == string(filepath.Separator) {
		return tree.DefaultRootName
	}
	return name
}
