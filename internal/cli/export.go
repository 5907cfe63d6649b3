package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/graph"
	graphio "github.com/matzehuels/codegraph/pkg/io"
)

// defaultCSVFile is the file name the browser download uses as well.
const defaultCSVFile = "codebase-graph.csv"

// exportCommand creates the export command for writing edge lists.
func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [graph.json]",
		Short: "Write the edge list of a graph as CSV",
		Long: `Write the edge list of a graph as CSV.

Every row holds the labels of both endpoints and the edge type (contains,
imports or exports). A graph without edges is not exported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultCSVFile, "output file")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, input, output string) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	if err := graphio.ExportCSV(g, output); err != nil {
		if errors.Is(err, errors.ErrCodeNoEdges) {
			printWarning("Nothing to export: %s has no edges", input)
			return nil
		}
		return err
	}
	loggerFromContext(ctx).Debug("exported csv", "rows", g.EdgeCount(), "path", output)

	printSuccess("Exported %d edges", g.EdgeCount())
	printFile(output)
	return nil
}
