package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stacklint/stacklint/template"
)

func newFmtCommand() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:     "fmt <template-path>",
		GroupID: groupUserFacing,
		Short:   "Reprint a template in normalized short-tag form",
		Long: `Parse the template and re-emit it with long-form intrinsics rewritten to
their short tags and key order preserved. Output goes to stdout unless --write
rewrites the file in place.`,
		Example: `  stacklint fmt stack.yaml
  stacklint fmt stack.yaml --write`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("cannot read template: %w", err)
			}
			root, err := template.Parse(data)
			if err != nil {
				return err
			}
			normalized, err := template.Encode(root)
			if err != nil {
				return err
			}

			if write {
				return os.WriteFile(args[0], normalized, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(normalized)
			return err
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Rewrite the file instead of printing to stdout")

	return cmd
}
