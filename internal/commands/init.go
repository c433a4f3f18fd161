package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/qifsync-dev/qifsync/internal/config"
)

func newInitCommand(opts *globalOptions) *cobra.Command {
	var ledger string
	var spreadsheet string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a qifsync.yaml for a reconciliation project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(cmd, absDir, ledger, spreadsheet)
		},
	}

	cmd.Flags().StringVar(&ledger, "ledger", "", "QIF ledger file (required)")
	_ = cmd.MarkFlagRequired("ledger")
	cmd.Flags().StringVar(&spreadsheet, "sheet", "", "spreadsheet CSV file (required)")
	_ = cmd.MarkFlagRequired("sheet")

	return cmd
}

func runInit(cmd *cobra.Command, dir, ledger, spreadsheet string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	path := filepath.Join(dir, "qifsync.yaml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	if err := config.Save(path, config.Default(ledger, spreadsheet)); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", path)
	return nil
}
