package gitrepo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowpine/kiln/internal/model"
)

// setupSourceRepo creates a temporary directory with an initialized Git
// repository containing a single commit, suitable as a clone source.
//
// The function uses t.TempDir() which automatically cleans up after the
// test. It also configures a local user.name and user.email so that
// `git commit` works in CI environments where global git config may not
// be set.
func setupSourceRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	runTestGit(t, dir, "init")
	runTestGit(t, dir, "config", "user.email", "test@example.com")
	runTestGit(t, dir, "config", "user.name", "Test User")

	// A clone of an empty repository succeeds but warns; a commit makes
	// the fixture behave like the real application repository.
	initialFile := filepath.Join(dir, "README.md")
	err := os.WriteFile(initialFile, []byte("# Test Repo\n"), 0644)
	require.NoError(t, err, "failed to create initial file")

	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "initial commit")

	return dir
}

// runTestGit is a test helper that runs a git command in the specified
// directory and fails the test immediately if the command exits with a
// non-zero status.
func runTestGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
	return string(output)
}

// TestClone verifies that Clone produces a working checkout, creating
// missing parent directories along the way.
func TestClone(t *testing.T) {
	source := setupSourceRepo(t)
	f := NewFetcher()

	// A nested target whose parents do not exist yet.
	target := filepath.Join(t.TempDir(), "apps", "studio")

	err := f.Clone(context.Background(), source, target)
	require.NoError(t, err, "Clone should succeed")

	// The checkout contains the committed file and a .git directory.
	_, statErr := os.Stat(filepath.Join(target, "README.md"))
	assert.NoError(t, statErr, "cloned file should exist")
	assert.True(t, f.IsCheckout(target), "target should be detected as a checkout")
}

// TestCloneBadRemote verifies that a failing clone surfaces a CLIError
// with the git exit code classification.
func TestCloneBadRemote(t *testing.T) {
	f := NewFetcher()
	target := filepath.Join(t.TempDir(), "dest")

	err := f.Clone(context.Background(), filepath.Join(t.TempDir(), "no-such-repo"), target)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitGitError, cliErr.Code)
}

// TestIsCheckout verifies checkout detection across the interesting
// shapes: real checkout, plain directory, missing path, and a .git file
// (worktree-style) which must also count as present.
func TestIsCheckout(t *testing.T) {
	f := NewFetcher()

	// A real repository counts.
	repo := setupSourceRepo(t)
	assert.True(t, f.IsCheckout(repo))

	// A plain directory without .git does not.
	assert.False(t, f.IsCheckout(t.TempDir()))

	// A missing path does not.
	assert.False(t, f.IsCheckout(filepath.Join(t.TempDir(), "missing")))

	// A file (not a directory) does not.
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.False(t, f.IsCheckout(file))

	// A directory whose .git is a file (git worktree layout) counts:
	// the clone must still be skipped.
	wt := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(wt, ".git"),
		[]byte("gitdir: /somewhere/.git/worktrees/wt\n"), 0644))
	assert.True(t, f.IsCheckout(wt))
}

// TestIsInstalled verifies binary resolution.
func TestIsInstalled(t *testing.T) {
	assert.True(t, NewFetcher().IsInstalled(), "git is required to run this test suite")
	assert.False(t, NewFetcherWithBinary("definitely-not-git-xyz").IsInstalled())
}
