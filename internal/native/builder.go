package native

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hollowpine/kiln/internal/model"
)

// Builder compiles and installs native extension modules into a
// specific environment through that environment's interpreter.
type Builder struct {
	// python is the absolute path of the target environment's
	// interpreter (conda.Env.Python).
	python string
}

// NewBuilder creates a Builder targeting the given interpreter.
func NewBuilder(python string) *Builder {
	return &Builder{python: python}
}

// Build verifies that moduleDir exists and then builds and installs the
// module it contains:
//
//	<python> -m pip install .
//
// run with the working directory set to moduleDir via cmd.Dir. A missing
// directory is a fatal error — it means the checkout does not match the
// expected application layout, and launching without the extension would
// fail much later with a far worse message.
func (b *Builder) Build(ctx context.Context, moduleDir string) error {
	info, err := os.Stat(moduleDir)
	if err != nil {
		return model.WrapCLIError(model.ExitBuildFailed,
			fmt.Sprintf("native module directory %s not found", moduleDir), err)
	}
	if !info.IsDir() {
		return model.NewCLIError(model.ExitBuildFailed,
			fmt.Sprintf("native module path %s is not a directory", moduleDir))
	}

	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, b.python, "-m", "pip", "install", ".")
	cmd.Dir = moduleDir

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("build of native module %s failed", filepath.Base(moduleDir))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, tail(stderrStr, 20))
		}
		return model.WrapCLIError(model.ExitBuildFailed, message, err)
	}
	return nil
}

// tail returns the last n lines of s. Compiler output buries the actual
// error at the end; the error message keeps only that part.
func tail(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
