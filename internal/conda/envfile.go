// envfile.go handles parsing of conda environment.yml files.
//
// When the configuration points at an environment.yml, kiln creates the
// environment via `conda env create -f` instead of assembling a
// `conda create` command line. The file still needs to be parsed on the
// kiln side, because the pipeline must know the environment's NAME (for
// the existence check that makes provisioning idempotent) before conda
// ever runs.
package conda

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hollowpine/kiln/internal/model"
)

// EnvFile represents the subset of a conda environment.yml that kiln
// cares about. Other fields (channels, pip sections, variables) are
// passed through to conda untouched.
type EnvFile struct {
	// Name is the environment name declared in the file. Required —
	// kiln cannot run its existence check without it.
	Name string `yaml:"name"`

	// Dependencies is the raw dependency list. Entries are usually
	// strings ("python=3.10", "numpy"), but conda also allows nested
	// maps (the pip: sub-list), so the element type is any.
	Dependencies []any `yaml:"dependencies"`
}

// ParseEnvFile reads and parses a conda environment.yml.
func ParseEnvFile(path string) (*EnvFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitCondaNotFound,
			fmt.Sprintf("failed to read environment file %s", path), err)
	}

	var f EnvFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, model.WrapCLIError(model.ExitCondaNotFound,
			fmt.Sprintf("failed to parse environment file %s", path), err)
	}

	if f.Name == "" {
		return nil, model.NewCLIError(model.ExitCondaNotFound,
			fmt.Sprintf("environment file %s does not declare a name", path))
	}
	return &f, nil
}

// EffectiveEnvName resolves the environment name the pipeline operates
// on: the name declared in the environment.yml when one is configured
// (the file is authoritative), otherwise the configured fallback name.
//
// Every command that checks for the environment's existence must go
// through this resolution — a file-declared name that differs from the
// configured one would otherwise make the commands disagree about which
// environment they are talking about.
func EffectiveEnvName(envFile, fallback string) (string, error) {
	if envFile == "" {
		return fallback, nil
	}
	f, err := ParseEnvFile(envFile)
	if err != nil {
		return "", err
	}
	return f.Name, nil
}

// PythonVersion returns the interpreter pin declared in the dependency
// list ("python=3.10" → "3.10"), or "" if the file does not pin Python.
//
// conda accepts both "python=3.10" (fuzzy) and "python==3.10.14"
// (exact); both forms are recognized here.
func (f *EnvFile) PythonVersion() string {
	for _, dep := range f.Dependencies {
		spec, ok := dep.(string)
		if !ok {
			// Nested structures (e.g., the pip: map) are not interpreter pins.
			continue
		}
		name, version, found := strings.Cut(spec, "=")
		if !found || strings.TrimSpace(name) != "python" {
			continue
		}
		// "python==3.10.14" leaves a leading "=" on the version after
		// the first Cut; strip it.
		return strings.TrimPrefix(strings.TrimSpace(version), "=")
	}
	return ""
}
