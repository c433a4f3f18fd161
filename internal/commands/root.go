// Package commands wires the qifsync CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qifsync-dev/qifsync/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var opts globalOptions

	rootCmd := &cobra.Command{
		Use:     "qifsync",
		Short:   "Reconcile QIF ledgers with categorized spreadsheets",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "qifsync.yaml", "config file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(newInitCommand(&opts))
	rootCmd.AddCommand(newMatchCommand(&opts))
	rootCmd.AddCommand(newCategoriesCommand(&opts))

	return rootCmd
}

// globalOptions carries flags shared by every subcommand.
type globalOptions struct {
	configPath string
	verbose    bool
}
