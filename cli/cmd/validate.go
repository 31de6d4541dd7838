package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stacklint/stacklint/diag"
	"github.com/stacklint/stacklint/internal/cli/render"
	"github.com/stacklint/stacklint/validate"
)

func newValidateCommand() *cobra.Command {
	var (
		schemaPath string
		format     string
		query      string
	)

	cmd := &cobra.Command{
		Use:     "validate <template-path>",
		GroupID: groupUserFacing,
		Short:   "Validate a template against the schema catalog",
		Long: `Parse the template, build its cross-reference graph, and check both against
the schema catalog. The exit code is 0 when no Error-severity diagnostics are
found; warnings alone never fail the run.`,
		Example: `  stacklint validate stack.yaml
  stacklint validate stack.yaml --schema catalog.yaml
  stacklint validate stack.yaml --format json --query '.[] | select(.severity == "Error")'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(schemaPath)
			if err != nil {
				return err
			}
			graph, structural, err := loadTemplateGraph(args[0])
			if err != nil {
				return err
			}

			diagnostics := validate.Run(graph, structural, catalog)
			if err := render.Diagnostics(cmd.OutOrStdout(), diagnostics, format, query); err != nil {
				return err
			}

			if diag.HasErrors(diagnostics) {
				return handledError{msg: "template has errors"}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "Path to a schema catalog document (default: built-in catalog)")
	cmd.Flags().StringVar(&format, "format", render.FormatText, "Output format: text, table, or json")
	cmd.Flags().StringVar(&query, "query", "", "jq expression applied to the JSON output")

	return cmd
}
