package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	noColorOutput bool
	debugOutput   bool
)

var rootCmd = newRootCommand()

const (
	groupUtility    = "utility"
	groupUserFacing = "user"
)

func Execute() error {
	return rootCmd.Execute()
}

func NewRootCommand() *cobra.Command {
	return newRootCommand()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stacklint",
		Short: "Validate declarative stack templates before submission",
		Long: `stacklint parses a stack template, builds the cross-reference graph over its
Parameters, Mappings, Resources, and Outputs sections, and checks both against
a resource-type schema catalog.

Use the CLI to:
  - validate a template and get ordered diagnostics
  - inspect the reference graph a template declares
  - browse the schema catalog the checks run against`,
		Example: `  # Validate against the built-in catalog
  stacklint validate stack.yaml

  # Validate against a custom catalog and emit JSON
  stacklint validate stack.yaml --schema catalog.yaml --format json

  # Show the dependency tree of a template
  stacklint graph stack.yaml --format tree`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetHelpCommandGroupID(groupUtility)
	cmd.SetCompletionCommandGroupID(groupUtility)

	configureUsage(cmd)

	cmd.PersistentFlags().BoolVar(&noColorOutput, "no-color", false, "Disable colorized output")
	cmd.PersistentFlags().BoolVar(&debugOutput, "debug", false, "Print debug information to stderr")

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		if err == nil {
			return nil
		}
		return usageError(cmd, err.Error())
	})

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		configureOutputSettings(cmd)
	}

	cmd.AddGroup(&cobra.Group{ID: groupUserFacing, Title: "Commands:"})
	cmd.AddGroup(&cobra.Group{ID: groupUtility, Title: "Utility Commands:"})

	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newGraphCommand())
	cmd.AddCommand(newSchemaCommand())
	cmd.AddCommand(newFmtCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}
