package gitrepo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hollowpine/kiln/internal/model"
)

// Fetcher provides git checkout operations by invoking the git CLI.
//
// The binary name is a field rather than a constant so tests can point
// the Fetcher at a stub and so custom git installations remain possible.
type Fetcher struct {
	// bin is the git executable to invoke. Defaults to "git",
	// resolved through PATH.
	bin string
}

// NewFetcher creates a Fetcher that invokes "git" from PATH.
func NewFetcher() *Fetcher {
	return &Fetcher{bin: "git"}
}

// NewFetcherWithBinary creates a Fetcher that invokes the given git
// executable.
func NewFetcherWithBinary(bin string) *Fetcher {
	return &Fetcher{bin: bin}
}

// IsInstalled reports whether the git binary can be resolved.
func (f *Fetcher) IsInstalled() bool {
	_, err := exec.LookPath(f.bin)
	return err == nil
}

// IsCheckout reports whether the given path looks like a git checkout:
// a directory containing a .git entry. Both a .git directory (normal
// clone) and a .git file (worktree or submodule) count — either way,
// the clone step must be skipped. A directory without a .git entry is
// deliberately treated as absent: cloning into it then fails, which
// surfaces the conflicting content instead of silently adopting a
// directory that holds who-knows-what.
func (f *Fetcher) IsCheckout(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}

	// os.Lstat avoids following a symlinked .git, which would not be a
	// checkout this tool produced.
	if _, err := os.Lstat(filepath.Join(path, ".git")); err != nil {
		return false
	}
	return true
}

// Clone clones the remote into the target path:
//
//	git clone <remote> <target>
//
// Parent directories of target are created first, since the default
// checkout location is a nested path that may not exist yet. The clone
// itself has no depth or branch options: the application expects a full
// default-branch checkout.
func (f *Fetcher) Clone(ctx context.Context, remote, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return model.WrapCLIError(model.ExitGitError,
			fmt.Sprintf("failed to create parent directory for %s", target), err)
	}

	_, err := f.run(ctx, "clone", remote, target)
	return err
}

// run executes a git command with the given arguments.
//
// It captures stdout and stderr separately. On success (exit code 0) it
// returns the stdout output. On failure it returns a model.CLIError with
// ExitGitError, including the stderr output in the error message for
// diagnostics — git writes its useful failure detail to stderr.
func (f *Fetcher) run(ctx context.Context, args ...string) (string, error) {
	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, f.bin, args...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitGitError, message, err)
	}

	return stdout.String(), nil
}
