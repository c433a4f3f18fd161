package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/qifsync-dev/qifsync/internal/auditlog"
	"github.com/qifsync-dev/qifsync/internal/config"
	"github.com/qifsync-dev/qifsync/internal/logging"
	"github.com/qifsync-dev/qifsync/internal/match"
	"github.com/qifsync-dev/qifsync/internal/model"
	"github.com/qifsync-dev/qifsync/internal/overrides"
	"github.com/qifsync-dev/qifsync/internal/qif"
	"github.com/qifsync-dev/qifsync/internal/sheet"
)

// workspace bundles everything a subcommand needs: config, logger, and
// the loaded inputs.
type workspace struct {
	dir  string // directory holding the config; audit log lives here
	cfg  *config.Config
	log  zerolog.Logger
	txns []*model.Transaction
	rows []model.Row
}

// openWorkspace loads the config and both input files.
func openWorkspace(opts *globalOptions) (*workspace, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	ws := &workspace{
		dir: filepath.Dir(opts.configPath),
		cfg: cfg,
		log: logging.New(opts.verbose),
	}

	f, err := os.Open(ws.resolve(cfg.Files.Ledger))
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	ws.txns, err = qif.Parse(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	sf, err := os.Open(ws.resolve(cfg.Files.Spreadsheet))
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	ws.rows, err = sheet.ReadRows(sf)
	sf.Close()
	if err != nil {
		return nil, err
	}

	ws.log.Debug().
		Int("transactions", len(ws.txns)).
		Int("rows", len(ws.rows)).
		Msg("inputs loaded")
	return ws, nil
}

// resolve interprets a config-relative path.
func (ws *workspace) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(ws.dir, path)
}

func (ws *workspace) overridesPath() string {
	return filepath.Join(ws.dir, "qifsync-overrides.yaml")
}

// session builds the transaction matching session: auto-match plus the
// replayed operator overrides. Stale overrides surface as warnings.
func (ws *workspace) session() (*match.Session, *overrides.Overrides, error) {
	o, err := overrides.Load(ws.overridesPath())
	if err != nil {
		return nil, nil, err
	}

	s := match.NewSession(ws.txns, sheet.GroupRows(ws.rows))
	s.AutoMatch()
	for _, w := range o.Apply(s) {
		ws.log.Warn().Msg(w)
	}

	ws.log.Info().
		Int("matched", len(s.MatchedPairs())).
		Int("unmatched_ledger", len(s.UnmatchedLedger())).
		Int("unmatched_groups", len(s.UnmatchedGroups())).
		Msg("matching complete")
	return s, o, nil
}

// categorySession builds the category matching session the same way.
func (ws *workspace) categorySession(threshold float64) (*match.CategorySession, *overrides.Overrides, error) {
	o, err := overrides.Load(ws.overridesPath())
	if err != nil {
		return nil, nil, err
	}

	s := match.NewCategorySession(qif.Categories(ws.txns), sheet.Categories(ws.rows))
	s.AutoMatch(threshold)
	for _, w := range o.ApplyCategories(s) {
		ws.log.Warn().Msg(w)
	}
	return s, o, nil
}

// audit appends one action to the audit trail. Audit failures are logged
// but never abort an operation already performed.
func (ws *workspace) audit(action, ledgerKey, groupID, detail string) {
	err := auditlog.Append(ws.dir, []auditlog.Entry{{
		Timestamp: time.Now().UTC(),
		Action:    action,
		LedgerKey: ledgerKey,
		GroupID:   groupID,
		Detail:    detail,
	}})
	if err != nil {
		ws.log.Warn().Err(err).Msg("audit log append failed")
	}
}

func txnKeyLabel(key match.ItemKey) string {
	return fmt.Sprintf("txn:%d", key.TxnIndex)
}

// describeView formats a view for report output.
func describeView(v match.TxnView) string {
	payee := v.Payee
	if payee == "" {
		payee = v.Memo
	}
	return fmt.Sprintf("#%d %s %s %s", v.Key.TxnIndex, v.Date.Format("2006-01-02"), v.Amount, payee)
}

// describeGroup formats a group for report output.
func describeGroup(g model.RecordGroup) string {
	items := make([]string, 0, len(g.Rows))
	for _, r := range g.Rows {
		items = append(items, r.Item)
	}
	return fmt.Sprintf("%s %s %s (%s)", g.ID, g.Date.Format("2006-01-02"), g.Total, strings.Join(items, "; "))
}
