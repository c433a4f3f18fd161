// Package gitops shells out to git so a reconciliation run can commit
// the rewritten ledger alongside its audit trail.
package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// CommitFiles stages the given paths and creates a commit. Returns the
// short commit hash.
func CommitFiles(dir, message, authorName, authorEmail string, paths []string) (string, error) {
	if _, err := runGit(dir, append([]string{"add", "--"}, paths...)...); err != nil {
		return "", err
	}

	author := fmt.Sprintf("%s <%s>", authorName, authorEmail)
	if _, err := runGit(dir, "commit", "-m", message, "--author", author); err != nil {
		return "", err
	}

	hash, err := runGit(dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return hash, nil
}

func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}
