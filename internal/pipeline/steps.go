// steps.go defines the concrete pipeline steps in their provisioning
// order. Each step is a thin adapter between the Step contract and one
// of the domain packages (conda, gitrepo, asset, pip, native, launch);
// the idempotence guards live here, next to the sequencing they protect.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hollowpine/kiln/internal/asset"
	"github.com/hollowpine/kiln/internal/conda"
	"github.com/hollowpine/kiln/internal/gitrepo"
	"github.com/hollowpine/kiln/internal/launch"
	"github.com/hollowpine/kiln/internal/model"
	"github.com/hollowpine/kiln/internal/native"
	"github.com/hollowpine/kiln/internal/pip"
)

// Step name constants. These appear in progress output, JSON reports,
// and failure messages, so they are fixed identifiers rather than
// display strings.
const (
	StepEnvironment   = "environment"
	StepCheckout      = "checkout"
	StepModelAsset    = "model-asset"
	StepDependencies  = "dependencies"
	StepNativeModules = "native-modules"
	StepLaunch        = "launch"
)

// DefaultSteps assembles the standard pipeline against the real domain
// implementations. When withLaunch is false the terminal launch step is
// omitted (provision-only mode).
func DefaultSteps(withLaunch bool) []Step {
	steps := []Step{
		&EnvironmentStep{Manager: conda.NewManager()},
		&CheckoutStep{Fetcher: gitrepo.NewFetcher()},
		&AssetStep{Fetcher: asset.NewFetcher()},
		&DependenciesStep{},
		&NativeModulesStep{},
	}
	if withLaunch {
		steps = append(steps, &LaunchStep{})
	}
	return steps
}

// EnvironmentStep ensures the conda environment exists and resolves its
// interpreter path into the pipeline state. It is always the first
// step: when conda itself is missing, the pipeline aborts here, before
// any network or filesystem action has happened.
type EnvironmentStep struct {
	Manager *conda.Manager
}

// Name implements Step.
func (s *EnvironmentStep) Name() string { return StepEnvironment }

// Run implements Step.
func (s *EnvironmentStep) Run(ctx context.Context, st *State) (model.StepReport, error) {
	report := model.StepReport{Step: s.Name()}

	if !s.Manager.IsInstalled() {
		return report, model.NewCLIError(model.ExitCondaNotFound,
			"conda not found on PATH — install Miniconda or Miniforge and retry")
	}

	// The environment name comes from the environment.yml when one is
	// configured; the file is authoritative for both name and pin.
	cfg := st.Config
	name, err := conda.EffectiveEnvName(cfg.EnvFile, cfg.EnvName)
	if err != nil {
		return report, err
	}
	report.Resource = name

	exists, err := s.Manager.EnvExists(ctx, name)
	if err != nil {
		return report, err
	}

	if exists {
		report.Action = model.ActionSkipped
	} else {
		if cfg.EnvFile != "" {
			err = s.Manager.CreateEnvFromFile(ctx, cfg.EnvFile)
		} else {
			err = s.Manager.CreateEnv(ctx, name, cfg.PythonVersion)
		}
		if err != nil {
			return report, err
		}
		report.Action = model.ActionCreated
	}

	// Resolve the interpreter once; everything downstream targets it
	// explicitly instead of relying on activation.
	env, err := s.Manager.Resolve(ctx, name)
	if err != nil {
		return report, err
	}
	st.Env = env
	return report, nil
}

// CheckoutStep ensures the application checkout exists, cloning it if
// absent. An existing checkout is never updated (skip by design).
type CheckoutStep struct {
	Fetcher *gitrepo.Fetcher
}

// Name implements Step.
func (s *CheckoutStep) Name() string { return StepCheckout }

// Run implements Step.
func (s *CheckoutStep) Run(ctx context.Context, st *State) (model.StepReport, error) {
	cfg := st.Config
	report := model.StepReport{Step: s.Name(), Resource: cfg.CheckoutDir}

	if s.Fetcher.IsCheckout(cfg.CheckoutDir) {
		report.Action = model.ActionSkipped
		return report, nil
	}

	if err := s.Fetcher.Clone(ctx, cfg.RepoURL, cfg.CheckoutDir); err != nil {
		return report, err
	}
	report.Action = model.ActionCreated
	return report, nil
}

// AssetStep ensures the pretrained model asset exists, downloading it
// if absent.
type AssetStep struct {
	Fetcher *asset.Fetcher
}

// Name implements Step.
func (s *AssetStep) Name() string { return StepModelAsset }

// Run implements Step.
func (s *AssetStep) Run(ctx context.Context, st *State) (model.StepReport, error) {
	cfg := st.Config
	report := model.StepReport{Step: s.Name(), Resource: cfg.ModelPath}

	if s.Fetcher.Exists(cfg.ModelPath) {
		report.Action = model.ActionSkipped
		return report, nil
	}

	if err := s.Fetcher.Download(ctx, cfg.ModelURL, cfg.ModelPath); err != nil {
		return report, err
	}
	report.Action = model.ActionCreated
	return report, nil
}

// DependenciesStep installs the pinned package set and the application's
// dependency manifest into the provisioned environment. It has no
// existence guard: pip is idempotent for already-satisfied requirements,
// and kiln does not second-guess it.
type DependenciesStep struct{}

// Name implements Step.
func (s *DependenciesStep) Name() string { return StepDependencies }

// Run implements Step.
func (s *DependenciesStep) Run(ctx context.Context, st *State) (model.StepReport, error) {
	cfg := st.Config
	report := model.StepReport{
		Step:     s.Name(),
		Resource: fmt.Sprintf("%d pinned package(s) + %s", len(cfg.PinnedPackages), cfg.Manifest),
	}

	if st.Env == nil {
		return report, model.NewCLIError(model.ExitGeneralError,
			"dependencies step ran before the environment was provisioned")
	}
	installer := pip.NewInstaller(st.Env.Python)

	if err := installer.InstallPinned(ctx, cfg.PinnedPackages, cfg.IndexURL); err != nil {
		return report, err
	}

	found, err := installer.InstallManifest(ctx, cfg.ManifestPath())
	if err != nil {
		return report, err
	}
	if !found {
		// Soft condition: the application may ship without a manifest.
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("dependency manifest %s not found — skipping", cfg.ManifestPath()))
	}

	report.Action = model.ActionRan
	return report, nil
}

// NativeModulesStep builds the application's native extension modules,
// strictly in the configured order.
type NativeModulesStep struct{}

// Name implements Step.
func (s *NativeModulesStep) Name() string { return StepNativeModules }

// Run implements Step.
func (s *NativeModulesStep) Run(ctx context.Context, st *State) (model.StepReport, error) {
	cfg := st.Config

	names := make([]string, 0, len(cfg.NativeModules))
	for _, mod := range cfg.NativeModules {
		names = append(names, filepath.Base(mod))
	}
	report := model.StepReport{Step: s.Name(), Resource: strings.Join(names, ", ")}

	if st.Env == nil {
		return report, model.NewCLIError(model.ExitGeneralError,
			"native modules step ran before the environment was provisioned")
	}
	builder := native.NewBuilder(st.Env.Python)

	for _, dir := range cfg.ModuleDirs() {
		if err := builder.Build(ctx, dir); err != nil {
			return report, err
		}
	}

	report.Action = model.ActionRan
	return report, nil
}

// LaunchStep starts the application. It is the pipeline's terminal,
// blocking step; it only returns when the application exits.
type LaunchStep struct{}

// Name implements Step.
func (s *LaunchStep) Name() string { return StepLaunch }

// Run implements Step.
func (s *LaunchStep) Run(ctx context.Context, st *State) (model.StepReport, error) {
	cfg := st.Config
	report := model.StepReport{
		Step:     s.Name(),
		Resource: fmt.Sprintf("%s %s", cfg.Entrypoint, strings.Join(cfg.LaunchArgs, " ")),
	}

	if st.Env == nil {
		return report, model.NewCLIError(model.ExitGeneralError,
			"launch step ran before the environment was provisioned")
	}

	launcher := launch.NewLauncher(st.Env.Python)
	if err := launcher.Run(ctx, cfg.CheckoutDir, cfg.Entrypoint, cfg.LaunchArgs); err != nil {
		return report, err
	}

	report.Action = model.ActionRan
	return report, nil
}
