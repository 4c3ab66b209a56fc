package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/hollowpine/kiln/internal/model"
)

// Launcher starts the application entry point inside a specific
// environment.
type Launcher struct {
	// python is the absolute path of the target environment's
	// interpreter (conda.Env.Python).
	python string
}

// NewLauncher creates a Launcher targeting the given interpreter.
func NewLauncher(python string) *Launcher {
	return &Launcher{python: python}
}

// Run launches the entry point and blocks until it exits:
//
//	<python> <entrypoint> <args...>
//
// executed with the working directory set to workdir (the application
// checkout — entry points load assets relative to it). Stdio is
// inherited so the application's console output, progress bars, and
// interactive prompts reach the operator directly.
//
// Error semantics:
//   - the process could not be started at all → CLIError with
//     ExitLaunchFailed
//   - the process ran and exited non-zero → CLIError whose Code is the
//     application's own exit code, propagated unchanged
//   - the process exited zero → nil
func (l *Launcher) Run(ctx context.Context, workdir, entrypoint string, args []string) error {
	full := append([]string{entrypoint}, args...)

	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, l.python, full...)
	cmd.Dir = workdir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		// The application started and chose its own exit status;
		// kiln passes it through rather than re-classifying it.
		return model.WrapCLIError(model.ExitCode(exitErr.ExitCode()),
			fmt.Sprintf("%s exited with status %d", entrypoint, exitErr.ExitCode()), err)
	}

	return model.WrapCLIError(model.ExitLaunchFailed,
		fmt.Sprintf("failed to launch %s", entrypoint), err)
}
