package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qifsync-dev/qifsync/internal/match"
	"github.com/qifsync-dev/qifsync/internal/overrides"
	"github.com/qifsync-dev/qifsync/internal/sheet"
)

func newCategoriesCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Reconcile spreadsheet category labels with ledger categories",
	}
	cmd.AddCommand(newCategoriesShowCommand(opts))
	cmd.AddCommand(newCategoriesManualCommand(opts))
	cmd.AddCommand(newCategoriesUnmatchCommand(opts))
	cmd.AddCommand(newCategoriesApplyCommand(opts))
	return cmd
}

func newCategoriesShowCommand(opts *globalOptions) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Auto-match category names and report the mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(opts)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = ws.cfg.Matching.RatioThreshold
			}
			s, _, err := ws.categorySession(threshold)
			if err != nil {
				return err
			}
			return runCategoriesShow(cmd, s)
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", match.DefaultRatioThreshold, "similarity threshold")
	return cmd
}

func runCategoriesShow(cmd *cobra.Command, s *match.CategorySession) error {
	out := cmd.OutOrStdout()

	mapping := s.Mapping()
	// Stable order: follow the spreadsheet label list.
	fmt.Fprintf(out, "Mapped (%d):\n", len(mapping))
	for _, label := range s.Labels() {
		if canonical, ok := mapping[label]; ok {
			fmt.Fprintf(out, "  %-30s -> %s\n", label, canonical)
		}
	}

	uc, ul := s.Unmatched()
	fmt.Fprintf(out, "Unmatched ledger categories (%d): %s\n", len(uc), strings.Join(uc, ", "))
	fmt.Fprintf(out, "Unmatched spreadsheet labels (%d): %s\n", len(ul), strings.Join(ul, ", "))
	return nil
}

func newCategoriesManualCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "manual <label> <canonical>",
		Short: "Pin a spreadsheet label to a ledger category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCategoriesManual(cmd, opts, args[0], args[1])
		},
	}
}

func runCategoriesManual(cmd *cobra.Command, opts *globalOptions, label, canonical string) error {
	ws, err := openWorkspace(opts)
	if err != nil {
		return err
	}
	s, o, err := ws.categorySession(ws.cfg.Matching.RatioThreshold)
	if err != nil {
		return err
	}

	ok, msg := s.ManualMatch(label, canonical)
	if !ok {
		fmt.Fprintf(cmd.OutOrStdout(), "No: %s\n", msg)
		return nil
	}

	o.SetCategoryMatch(label, canonical)
	if err := overrides.Save(ws.overridesPath(), o); err != nil {
		return err
	}
	ws.audit("category-match", label, "", canonical)
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func newCategoriesUnmatchCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unmatch <label>",
		Short: "Remove a label's category mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCategoriesUnmatch(cmd, opts, args[0])
		},
	}
}

func runCategoriesUnmatch(cmd *cobra.Command, opts *globalOptions, label string) error {
	ws, err := openWorkspace(opts)
	if err != nil {
		return err
	}
	s, o, err := ws.categorySession(ws.cfg.Matching.RatioThreshold)
	if err != nil {
		return err
	}

	if !s.ManualUnmatch(label) {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to unmatch.")
		return nil
	}

	o.SetCategoryUnmatch(label)
	if err := overrides.Save(ws.overridesPath(), o); err != nil {
		return err
	}
	ws.audit("category-unmatch", label, "", "")
	fmt.Fprintln(cmd.OutOrStdout(), "Unmatched.")
	return nil
}

func newCategoriesApplyCommand(opts *globalOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Rewrite the spreadsheet's category column to canonical names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCategoriesApply(cmd, opts, outPath)
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "output CSV path (default: <spreadsheet>_normalized.csv)")
	return cmd
}

func runCategoriesApply(cmd *cobra.Command, opts *globalOptions, outPath string) error {
	ws, err := openWorkspace(opts)
	if err != nil {
		return err
	}
	s, _, err := ws.categorySession(ws.cfg.Matching.RatioThreshold)
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = ws.cfg.Files.SheetOut
	}
	if outPath == "" {
		outPath = normalizedName(ws.cfg.Files.Spreadsheet)
	}
	outPath = ws.resolve(outPath)

	in, err := os.Open(ws.resolve(ws.cfg.Files.Spreadsheet))
	if err != nil {
		return fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating spreadsheet output: %w", err)
	}
	if err := sheet.RewriteCategories(in, out, s.Mapping()); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing spreadsheet output: %w", err)
	}

	ws.audit("rewrite-categories", "", "", fmt.Sprintf("%d labels mapped", len(s.Mapping())))
	ws.log.Info().Int("labels", len(s.Mapping())).Str("path", outPath).Msg("spreadsheet written")
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
	return nil
}

// normalizedName derives the default output name: sheet.csv ->
// sheet_normalized.csv.
func normalizedName(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_normalized" + ext
}
