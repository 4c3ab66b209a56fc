package pip

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/hollowpine/kiln/internal/model"
)

// Installer runs pip inside a specific environment by invoking the
// environment's interpreter with `-m pip`.
type Installer struct {
	// python is the absolute path of the target environment's
	// interpreter (conda.Env.Python).
	python string
}

// NewInstaller creates an Installer targeting the given interpreter.
func NewInstaller(python string) *Installer {
	return &Installer{python: python}
}

// InstallPinned installs the pinned package set from the given index:
//
//	<python> -m pip install --index-url <indexURL> <pkg>...
//
// The packages are exact "name==version" specifiers; the index URL
// points at the wheel index they must come from (the CUDA-specific
// PyTorch index in the default configuration). An empty indexURL falls
// back to pip's configured default index.
func (i *Installer) InstallPinned(ctx context.Context, packages []string, indexURL string) error {
	if len(packages) == 0 {
		return nil
	}

	args := []string{"-m", "pip", "install"}
	if indexURL != "" {
		args = append(args, "--index-url", indexURL)
	}
	args = append(args, packages...)

	return i.run(ctx, args...)
}

// InstallManifest installs every entry of the dependency manifest:
//
//	<python> -m pip install -r <path>
//
// Returns (false, nil) when the manifest file is absent — the caller
// treats that as a warning, not an abort (the application may ship
// without one). Any pip failure is fatal.
func (i *Installer) InstallManifest(ctx context.Context, path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, model.WrapCLIError(model.ExitInstallFailed,
			fmt.Sprintf("failed to inspect manifest %s", path), err)
	}

	if err := i.run(ctx, "-m", "pip", "install", "-r", path); err != nil {
		return true, err
	}
	return true, nil
}

// run executes the interpreter with the given arguments.
//
// pip's output is long and mostly noise on success, so stdout and
// stderr are captured rather than streamed; on failure the tail of
// stderr is folded into the error message, which is where pip reports
// resolver and build problems.
func (i *Installer) run(ctx context.Context, args ...string) error {
	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, i.python, args...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("pip %s failed", strings.Join(args[2:], " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, tail(stderrStr, 20))
		}
		return model.WrapCLIError(model.ExitInstallFailed, message, err)
	}
	return nil
}

// tail returns the last n lines of s. pip errors end with the useful
// part; the preceding download progress is dead weight in an error
// message.
func tail(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
