package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("ledger.qif", "sheet.csv")
	cfg.Files.LedgerOut = "out.qif"
	cfg.Git.AutoCommit = true

	path := filepath.Join(t.TempDir(), "qifsync.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Files.Ledger, got.Files.Ledger)
	assert.Equal(t, cfg.Files.Spreadsheet, got.Files.Spreadsheet)
	assert.Equal(t, cfg.Files.LedgerOut, got.Files.LedgerOut)
	assert.InDelta(t, cfg.Matching.RatioThreshold, got.Matching.RatioThreshold, 0.001)
	assert.Equal(t, cfg.Git.AutoCommit, got.Git.AutoCommit)
	assert.Equal(t, cfg.Git.AuthorName, got.Git.AuthorName)
}

func TestDefaults(t *testing.T) {
	cfg := Default("ledger.qif", "sheet.csv")

	assert.Equal(t, "ledger.qif", cfg.Files.Ledger)
	assert.Equal(t, "sheet.csv", cfg.Files.Spreadsheet)
	assert.InDelta(t, 0.84, cfg.Matching.RatioThreshold, 0.001)
	assert.False(t, cfg.Git.AutoCommit)
}

func TestLoadFillsThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qifsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("files:\n  ledger: a.qif\n"), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.84, got.Matching.RatioThreshold, 0.001, "unset threshold defaults")
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
