package conda

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hollowpine/kiln/internal/model"
)

// Env describes a provisioned conda environment. It is the explicit
// context record handed to every later pipeline stage: instead of
// "activating" the environment (process-global shell state), kiln
// resolves the environment's interpreter once and passes it around.
type Env struct {
	// Name is the conda environment name.
	Name string

	// Prefix is the absolute path of the environment's root directory.
	Prefix string

	// Python is the absolute path of the environment's interpreter.
	// Every pip invocation, native build, and the final launch run
	// through this path.
	Python string
}

// Manager provides conda operations by invoking the conda CLI.
//
// The binary name is a field rather than a constant so tests can point
// the Manager at a stub executable, and so a future --conda-path flag
// has somewhere to land.
type Manager struct {
	// bin is the conda executable to invoke. Defaults to "conda",
	// resolved through PATH.
	bin string
}

// NewManager creates a Manager that invokes "conda" from PATH.
func NewManager() *Manager {
	return &Manager{bin: "conda"}
}

// NewManagerWithBinary creates a Manager that invokes the given conda
// executable. Used by tests and available for custom installations.
func NewManagerWithBinary(bin string) *Manager {
	return &Manager{bin: bin}
}

// IsInstalled reports whether the conda binary can be resolved.
//
// This is the pipeline's very first gate: when conda is missing, kiln
// aborts before touching the network or the filesystem.
func (m *Manager) IsInstalled() bool {
	_, err := exec.LookPath(m.bin)
	return err == nil
}

// envList mirrors the JSON document printed by `conda env list --json`:
//
//	{"envs": ["/opt/conda", "/opt/conda/envs/trellis"]}
//
// The first entry is the base prefix; named environments live under
// <base>/envs/<name>.
type envList struct {
	Envs []string `json:"envs"`
}

// EnvExists reports whether a conda environment with the given name
// exists. It matches on the final path element of each listed prefix,
// which is how conda itself maps names to prefixes.
func (m *Manager) EnvExists(ctx context.Context, name string) (bool, error) {
	prefix, err := m.envPrefix(ctx, name)
	if err != nil {
		return false, err
	}
	return prefix != "", nil
}

// EnvPrefix returns the absolute prefix directory of the named
// environment. Returns a CLIError if the environment does not exist.
func (m *Manager) EnvPrefix(ctx context.Context, name string) (string, error) {
	prefix, err := m.envPrefix(ctx, name)
	if err != nil {
		return "", err
	}
	if prefix == "" {
		return "", model.NewCLIError(model.ExitCondaNotFound,
			fmt.Sprintf("conda environment %q not found", name))
	}
	return prefix, nil
}

// envPrefix looks the named environment up in `conda env list --json`.
// Returns "" (and no error) when the environment is absent.
func (m *Manager) envPrefix(ctx context.Context, name string) (string, error) {
	output, err := m.run(ctx, "env", "list", "--json")
	if err != nil {
		return "", err
	}

	var list envList
	if err := json.Unmarshal([]byte(output), &list); err != nil {
		return "", model.WrapCLIError(model.ExitCondaNotFound,
			"failed to parse conda env list output", err)
	}

	for _, prefix := range list.Envs {
		// The base environment is listed as the bare install prefix
		// (e.g., /opt/conda). Only prefixes under an envs/ directory
		// correspond to named environments, so a repo named like the
		// install directory is not mistaken for an environment.
		if filepath.Base(filepath.Dir(prefix)) != "envs" {
			continue
		}
		if filepath.Base(prefix) == name {
			return prefix, nil
		}
	}
	return "", nil
}

// CreateEnv creates a new conda environment with the given name and
// Python interpreter pin:
//
//	conda create -y -n <name> python=<version>
//
// The -y flag suppresses the interactive confirmation prompt; kiln is
// non-interactive end to end.
func (m *Manager) CreateEnv(ctx context.Context, name, pythonVersion string) error {
	if err := model.ValidateEnvName(name); err != nil {
		return model.WrapCLIError(model.ExitCondaNotFound, "cannot create environment", err)
	}
	if err := model.ValidatePythonVersion(pythonVersion); err != nil {
		return model.WrapCLIError(model.ExitCondaNotFound, "cannot create environment", err)
	}

	_, err := m.run(ctx, "create", "-y", "-n", name, "python="+pythonVersion)
	return err
}

// CreateEnvFromFile creates a conda environment from an environment.yml:
//
//	conda env create -f <file>
//
// The file carries the environment name and interpreter pin itself
// (see ParseEnvFile).
func (m *Manager) CreateEnvFromFile(ctx context.Context, file string) error {
	_, err := m.run(ctx, "env", "create", "-f", file)
	return err
}

// PythonPath returns the interpreter path inside an environment prefix.
// The layout differs per platform: POSIX condas put the interpreter
// under bin/, while Windows condas put python.exe at the prefix root.
func PythonPath(prefix string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(prefix, "python.exe")
	}
	return filepath.Join(prefix, "bin", "python")
}

// Resolve returns the full Env record for an existing environment,
// including its resolved interpreter path.
func (m *Manager) Resolve(ctx context.Context, name string) (*Env, error) {
	prefix, err := m.EnvPrefix(ctx, name)
	if err != nil {
		return nil, err
	}
	return &Env{
		Name:   name,
		Prefix: prefix,
		Python: PythonPath(prefix),
	}, nil
}

// run executes a conda command with the given arguments.
//
// It captures stdout and stderr separately. On success (exit code 0) it
// returns the stdout output. On failure it returns a model.CLIError with
// ExitCondaNotFound, including the stderr output in the error message
// for diagnostics.
func (m *Manager) run(ctx context.Context, args ...string) (string, error) {
	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, m.bin, args...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("conda %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitCondaNotFound, message, err)
	}

	return stdout.String(), nil
}
