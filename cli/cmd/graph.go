package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stacklint/stacklint/internal/cli/render"
)

func newGraphCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "graph <template-path>",
		GroupID: groupUserFacing,
		Short:   "Print the cross-reference graph of a template",
		Example: `  stacklint graph stack.yaml
  stacklint graph stack.yaml --format tree
  stacklint graph stack.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, _, err := loadTemplateGraph(args[0])
			if err != nil {
				return err
			}
			return render.Graph(cmd.OutOrStdout(), graph, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", render.FormatText, "Output format: text, tree, or json")

	return cmd
}
