package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gitAvailable() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

func TestIsRepo(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsRepo(dir))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	assert.True(t, IsRepo(dir))
}

func TestCommitFiles(t *testing.T) {
	if !gitAvailable() {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	init := exec.Command("git", "init")
	init.Dir = dir
	require.NoError(t, init.Run())

	path := filepath.Join(dir, "ledger.qif")
	require.NoError(t, os.WriteFile(path, []byte("!Type:Bank\n"), 0o644))

	hash, err := CommitFiles(dir, "apply matched updates", "Tester", "tester@example.com", []string{"ledger.qif"})
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}
