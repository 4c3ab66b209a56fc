package doctor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hollowpine/kiln/internal/conda"
	"github.com/hollowpine/kiln/internal/config"
	"github.com/hollowpine/kiln/internal/gitrepo"
)

// Status classifies a check outcome.
type Status string

const (
	// StatusOK means the check passed.
	StatusOK Status = "ok"

	// StatusWarn means the check found something suboptimal that will
	// not stop the pipeline.
	StatusWarn Status = "warn"

	// StatusFail means the pipeline cannot succeed until this is fixed.
	StatusFail Status = "fail"
)

// Result is the outcome of a single preflight check.
type Result struct {
	// Status is the check's classification.
	Status Status `json:"status"`

	// CheckName identifies the check (stable, machine-matchable).
	CheckName string `json:"check"`

	// Message describes what was found, in one line.
	Message string `json:"message"`

	// Recommendation tells the operator what to do about a non-OK
	// result. Empty for OK results.
	Recommendation string `json:"recommendation,omitempty"`
}

// CheckTools verifies the prerequisite binaries are resolvable. conda
// is the hard gate — the pipeline refuses to start without it; git is
// equally required but only once the clone step is reached, so both
// report as failures here.
func CheckTools(condaMgr *conda.Manager, git *gitrepo.Fetcher) []Result {
	var results []Result

	if condaMgr.IsInstalled() {
		results = append(results, Result{
			Status:    StatusOK,
			CheckName: "conda",
			Message:   "conda found on PATH",
		})
	} else {
		results = append(results, Result{
			Status:         StatusFail,
			CheckName:      "conda",
			Message:        "conda not found on PATH",
			Recommendation: "install Miniconda or Miniforge and ensure `conda` resolves in your shell",
		})
	}

	if git.IsInstalled() {
		results = append(results, Result{
			Status:    StatusOK,
			CheckName: "git",
			Message:   "git found on PATH",
		})
	} else {
		results = append(results, Result{
			Status:         StatusFail,
			CheckName:      "git",
			Message:        "git not found on PATH",
			Recommendation: "install git; the application checkout is cloned with the git CLI",
		})
	}

	return results
}

// CheckConfig verifies that the configuration loads and validates.
// On success the loaded config is returned so later checks can use it;
// on failure the result carries the load error and the config is nil.
func CheckConfig(path string) ([]Result, *config.Config) {
	cfg, err := config.Load(path)
	if err != nil {
		return []Result{{
			Status:         StatusFail,
			CheckName:      "config",
			Message:        fmt.Sprintf("configuration failed to load: %v", err),
			Recommendation: "fix the kiln.jsonc reported above, or remove it to use the built-in defaults",
		}}, nil
	}

	return []Result{{
		Status:    StatusOK,
		CheckName: "config",
		Message:   "configuration loaded and valid",
	}}, cfg
}

// CheckEnvFile verifies that a configured environment.yml exists and
// parses — a broken file would abort provisioning at its very first
// step. Returns no results when no file is configured.
func CheckEnvFile(cfg *config.Config) []Result {
	if cfg.EnvFile == "" {
		return nil
	}

	if _, err := conda.ParseEnvFile(cfg.EnvFile); err != nil {
		return []Result{{
			Status:         StatusFail,
			CheckName:      "env-file",
			Message:        fmt.Sprintf("environment file failed to load: %v", err),
			Recommendation: "fix the environment.yml (it must exist and declare a name), or drop envFile to pin the interpreter directly",
		}}
	}

	return []Result{{
		Status:    StatusOK,
		CheckName: "env-file",
		Message:   fmt.Sprintf("environment file %s loaded", cfg.EnvFile),
	}}
}

// CheckDestinations verifies that the checkout and model asset
// destinations are usable: either they already exist (the pipeline will
// skip them) or their nearest existing ancestor is writable so creation
// can succeed.
func CheckDestinations(cfg *config.Config) []Result {
	var results []Result
	for _, target := range []struct {
		name string
		path string
	}{
		{"checkout-dir", cfg.CheckoutDir},
		{"model-path", cfg.ModelPath},
	} {
		if _, err := os.Stat(target.path); err == nil {
			results = append(results, Result{
				Status:    StatusOK,
				CheckName: target.name,
				Message:   fmt.Sprintf("%s already present (pipeline will skip it)", target.path),
			})
			continue
		}

		if dir, ok := writableAncestor(target.path); ok {
			results = append(results, Result{
				Status:    StatusOK,
				CheckName: target.name,
				Message:   fmt.Sprintf("%s can be created under %s", target.path, dir),
			})
		} else {
			results = append(results, Result{
				Status:         StatusFail,
				CheckName:      target.name,
				Message:        fmt.Sprintf("no writable ancestor for %s", target.path),
				Recommendation: "choose a destination inside your home directory, or fix the permissions",
			})
		}
	}
	return results
}

// HasFailures reports whether any result is a failure. The doctor
// command uses this to pick its exit status.
func HasFailures(results []Result) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// writableAncestor walks up from path to the nearest existing directory
// and probes it for writability with a temp file. Returns the directory
// found and whether it is writable.
func writableAncestor(path string) (string, bool) {
	dir := filepath.Dir(path)
	for {
		if info, err := os.Stat(dir); err == nil {
			if !info.IsDir() {
				return dir, false
			}
			probe, err := os.CreateTemp(dir, ".kiln-doctor-*")
			if err != nil {
				return dir, false
			}
			name := probe.Name()
			_ = probe.Close()
			_ = os.Remove(name)
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir, false
		}
		dir = parent
	}
}
