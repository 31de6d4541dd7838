package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// usageTemplate is cobra's default trimmed to what stacklint declares: grouped
// commands on the root, a flat list on subcommands, and inherited flags folded
// into one Global Flags block. No command here has aliases or help topics.
const usageTemplate = `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}

Available Commands:{{range $cmds}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{else}}{{range $group := .Groups}}

{{.Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{end}}{{if .LocalNonPersistentFlags.HasAvailableFlags}}

Flags:
{{.LocalNonPersistentFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if hasGlobalFlags .}}

Global Flags:
{{globalFlagUsages . | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

func configureUsage(cmd *cobra.Command) {
	cobra.AddTemplateFunc("hasGlobalFlags", hasGlobalFlags)
	cobra.AddTemplateFunc("globalFlagUsages", globalFlagUsages)
	cmd.SetUsageTemplate(usageTemplate)

	if cmd.PersistentFlags().Lookup("help") == nil {
		cmd.PersistentFlags().BoolP("help", "h", false, "help for this command")
		_ = cmd.PersistentFlags().SetAnnotation("help", cobra.FlagSetByCobraAnnotation, []string{"true"})
	}
}

func hasGlobalFlags(cmd *cobra.Command) bool {
	return cmd.PersistentFlags().HasAvailableFlags() ||
		cmd.InheritedFlags().HasAvailableFlags()
}

func globalFlagUsages(cmd *cobra.Command) string {
	var sections []string
	for _, flags := range []*pflag.FlagSet{cmd.PersistentFlags(), cmd.InheritedFlags()} {
		if !flags.HasAvailableFlags() {
			continue
		}
		if usage := strings.TrimRight(flags.FlagUsages(), "\n"); usage != "" {
			sections = append(sections, usage)
		}
	}
	return strings.Join(sections, "\n")
}
