package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacklint/stacklint/internal/cli/render"
)

func newSchemaCommand() *cobra.Command {
	var schemaPath string

	cmd := &cobra.Command{
		Use:     "schema",
		GroupID: groupUserFacing,
		Short:   "Inspect the schema catalog",
	}

	cmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "Path to a schema catalog document (default: built-in catalog)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the resource types the catalog knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(schemaPath)
			if err != nil {
				return err
			}
			return render.SchemaTypeList(cmd.OutOrStdout(), catalog)
		},
	}

	show := &cobra.Command{
		Use:   "show <resource-type>",
		Short: "Show the properties and attributes of a resource type",
		Example: `  stacklint schema show AWS::EC2::Instance
  stacklint schema show AWS::KMS::Key --schema catalog.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(schemaPath)
			if err != nil {
				return err
			}
			entry, ok := catalog.Lookup(args[0])
			if !ok {
				return fmt.Errorf("resource type %q is not in the catalog", args[0])
			}
			return render.SchemaEntry(cmd.OutOrStdout(), entry)
		},
	}

	cmd.AddCommand(list)
	cmd.AddCommand(show)

	return cmd
}
