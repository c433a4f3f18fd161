package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/qifsync-dev/qifsync/internal/gitops"
	"github.com/qifsync-dev/qifsync/internal/match"
	"github.com/qifsync-dev/qifsync/internal/overrides"
	"github.com/qifsync-dev/qifsync/internal/qif"
)

func newMatchCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Reconcile ledger transactions with spreadsheet groups",
	}
	cmd.AddCommand(newMatchShowCommand(opts))
	cmd.AddCommand(newMatchManualCommand(opts))
	cmd.AddCommand(newMatchUnmatchCommand(opts))
	cmd.AddCommand(newMatchWhyCommand(opts))
	cmd.AddCommand(newMatchApplyCommand(opts))
	return cmd
}

func newMatchShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Auto-match and report matched and unmatched items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(opts)
			if err != nil {
				return err
			}
			s, _, err := ws.session()
			if err != nil {
				return err
			}
			return runMatchShow(cmd, s)
		},
	}
}

func runMatchShow(cmd *cobra.Command, s *match.Session) error {
	out := cmd.OutOrStdout()

	pairs := s.MatchedPairs()
	fmt.Fprintf(out, "Matched (%d):\n", len(pairs))
	for _, p := range pairs {
		fmt.Fprintf(out, "  %s  <->  %s  (day diff %d)\n", describeView(p.View), describeGroup(p.Group), p.Cost)
	}

	unmatchedL := s.UnmatchedLedger()
	fmt.Fprintf(out, "Unmatched ledger (%d):\n", len(unmatchedL))
	for _, v := range unmatchedL {
		fmt.Fprintf(out, "  %s\n", describeView(v))
	}

	unmatchedG := s.UnmatchedGroups()
	fmt.Fprintf(out, "Unmatched groups (%d):\n", len(unmatchedG))
	for _, g := range unmatchedG {
		fmt.Fprintf(out, "  %s\n", describeGroup(g))
	}
	return nil
}

func newMatchManualCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "manual <txn-index> <group-id>",
		Short: "Pin a ledger transaction to a spreadsheet group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ti, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("transaction index %q is not a number", args[0])
			}
			return runMatchManual(cmd, opts, ti, args[1])
		},
	}
}

func runMatchManual(cmd *cobra.Command, opts *globalOptions, ti int, groupID string) error {
	ws, err := openWorkspace(opts)
	if err != nil {
		return err
	}
	s, o, err := ws.session()
	if err != nil {
		return err
	}

	gi := groupIndexByID(s, groupID)
	if gi < 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No: group %q not found.\n", groupID)
		return nil
	}

	ok, msg := s.ManualMatch(match.Key(ti), gi)
	if !ok {
		// Expected outcome of probing; report, don't fail.
		fmt.Fprintf(cmd.OutOrStdout(), "No: %s\n", msg)
		return nil
	}

	o.SetMatch(ti, groupID)
	if err := overrides.Save(ws.overridesPath(), o); err != nil {
		return err
	}
	ws.audit("manual-match", txnKeyLabel(match.Key(ti)), groupID, msg)
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func newMatchUnmatchCommand(opts *globalOptions) *cobra.Command {
	var txnIndex int
	var groupID string

	cmd := &cobra.Command{
		Use:   "unmatch",
		Short: "Remove a match by ledger transaction or by group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("txn") && groupID == "" {
				return fmt.Errorf("one of --txn or --group is required")
			}
			return runMatchUnmatch(cmd, opts, cmd.Flags().Changed("txn"), txnIndex, groupID)
		},
	}
	cmd.Flags().IntVar(&txnIndex, "txn", 0, "ledger transaction index")
	cmd.Flags().StringVar(&groupID, "group", "", "spreadsheet group id")
	return cmd
}

func runMatchUnmatch(cmd *cobra.Command, opts *globalOptions, byTxn bool, ti int, groupID string) error {
	ws, err := openWorkspace(opts)
	if err != nil {
		return err
	}
	s, o, err := ws.session()
	if err != nil {
		return err
	}

	var removed bool
	if byTxn {
		key := match.Key(ti)
		removed = s.ManualUnmatch(&key, nil)
	} else {
		gi := groupIndexByID(s, groupID)
		if gi < 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No: group %q not found.\n", groupID)
			return nil
		}
		key, ok := keyForGroup(s, gi)
		if !ok {
			removed = false
		} else {
			ti = key.TxnIndex
			removed = s.ManualUnmatch(nil, &gi)
		}
	}

	if !removed {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to unmatch.")
		return nil
	}

	o.SetUnmatch(ti)
	if err := overrides.Save(ws.overridesPath(), o); err != nil {
		return err
	}
	ws.audit("manual-unmatch", txnKeyLabel(match.Key(ti)), groupID, "")
	fmt.Fprintln(cmd.OutOrStdout(), "Unmatched.")
	return nil
}

func newMatchWhyCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "why <txn-index> <group-id>",
		Short: "Explain why a transaction and a group are not matched",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ti, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("transaction index %q is not a number", args[0])
			}
			return runMatchWhy(cmd, opts, ti, args[1])
		},
	}
}

func runMatchWhy(cmd *cobra.Command, opts *globalOptions, ti int, groupID string) error {
	ws, err := openWorkspace(opts)
	if err != nil {
		return err
	}
	s, _, err := ws.session()
	if err != nil {
		return err
	}

	views := s.Views()
	if ti < 0 || ti >= len(views) {
		fmt.Fprintf(cmd.OutOrStdout(), "Transaction index %d out of range.\n", ti)
		return nil
	}
	gi := groupIndexByID(s, groupID)
	if gi < 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Group %q not found.\n", groupID)
		return nil
	}

	if mapped, ok := mappedGroup(s, match.Key(ti)); ok && mapped == gi {
		fmt.Fprintln(cmd.OutOrStdout(), "These are matched to each other.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), s.NonmatchReason(views[ti], s.Groups()[gi]))
	return nil
}

func newMatchApplyCommand(opts *globalOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Write matched spreadsheet rows back into the ledger's splits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatchApply(cmd, opts, outPath)
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "output QIF path (default: overwrite the ledger)")
	return cmd
}

func runMatchApply(cmd *cobra.Command, opts *globalOptions, outPath string) error {
	ws, err := openWorkspace(opts)
	if err != nil {
		return err
	}
	s, _, err := ws.session()
	if err != nil {
		return err
	}

	s.ApplyUpdates()

	if outPath == "" {
		outPath = ws.cfg.Files.LedgerOut
	}
	if outPath == "" {
		outPath = ws.cfg.Files.Ledger
	}
	outPath = ws.resolve(outPath)

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating ledger output: %w", err)
	}
	if err := qif.Write(f, ws.txns); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing ledger output: %w", err)
	}

	applied := len(s.MatchedPairs())
	ws.audit("apply", "", "", fmt.Sprintf("updated %d transactions", applied))
	ws.log.Info().Int("updated", applied).Str("path", outPath).Msg("ledger written")

	if ws.cfg.Git.AutoCommit && gitops.IsRepo(ws.dir) {
		hash, err := gitops.CommitFiles(ws.dir,
			fmt.Sprintf("Apply %d matched spreadsheet updates", applied),
			ws.cfg.Git.AuthorName, ws.cfg.Git.AuthorEmail,
			[]string{outPath, "qifsync-audit.csv"})
		if err != nil {
			ws.log.Warn().Err(err).Msg("auto-commit failed")
		} else {
			ws.log.Info().Str("commit", hash).Msg("changes committed")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated %d transactions; wrote %s\n", applied, outPath)
	return nil
}

func groupIndexByID(s *match.Session, id string) int {
	for gi, g := range s.Groups() {
		if g.ID == id {
			return gi
		}
	}
	return -1
}

func keyForGroup(s *match.Session, gi int) (match.ItemKey, bool) {
	for _, p := range s.MatchedPairs() {
		if p.Group.ID == s.Groups()[gi].ID {
			return p.View.Key, true
		}
	}
	return match.ItemKey{}, false
}

func mappedGroup(s *match.Session, key match.ItemKey) (int, bool) {
	for _, p := range s.MatchedPairs() {
		if p.View.Key == key {
			return groupIndexByID(s, p.Group.ID), true
		}
	}
	return 0, false
}
