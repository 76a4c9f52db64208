package cmd

import (
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. cfgPath is shared by the subcommands
// reading a configuration file.
func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:          "taskgen",
		Short:        "Forecast-hour job grouping for NWP workflows",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	root.AddCommand(
		newGenerateCmd(&cfgPath),
		newGroupsCmd(),
		newHMSCmd(),
		newHistoryCmd(&cfgPath),
	)
	return root
}

// Execute runs the CLI.
func Execute() error { return newRootCmd().Execute() }
