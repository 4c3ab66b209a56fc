// Package cli — status.go implements the "kiln status" command.
//
// The status command reports the presence of every resource the
// provisioning pipeline manages — the conda environment, the
// application checkout, and the model asset — without mutating
// anything. It is the read-only view of the same existence checks the
// pipeline uses as idempotence guards, so "all present" here means a
// subsequent "kiln up" would skip straight to the install/build/launch
// steps.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hollowpine/kiln/internal/asset"
	"github.com/hollowpine/kiln/internal/conda"
	"github.com/hollowpine/kiln/internal/config"
	"github.com/hollowpine/kiln/internal/gitrepo"
	"github.com/hollowpine/kiln/internal/model"
)

// ResourceStatus pairs a managed resource with its observed state.
type ResourceStatus struct {
	// Resource is the pipeline's name for the resource (matches the
	// step names used by "kiln up").
	Resource string `json:"resource"`

	// Detail identifies the concrete instance (environment name or
	// filesystem path).
	Detail string `json:"detail"`

	// State is absent or present.
	State model.ResourceState `json:"state"`
}

// NewStatusCommand creates the "status" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which provisioned resources exist",
		Long: `Report the presence of each resource the pipeline manages: the conda
environment, the application checkout, and the model asset.

Examples:
  kiln status
  kiln status --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}

	return cmd
}

// runStatus is the main logic function for the status command.
func runStatus(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	statuses, err := collectStatuses(ctx, cfg,
		conda.NewManager(), gitrepo.NewFetcher(), asset.NewFetcher())
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(statuses, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	printStatusText(statuses)
	return nil
}

// collectStatuses runs the pipeline's existence checks read-only and
// returns one status per managed resource. conda must be installed:
// without it, the environment's state cannot be determined.
func collectStatuses(ctx context.Context, cfg *config.Config, mgr *conda.Manager, git *gitrepo.Fetcher, assets *asset.Fetcher) ([]ResourceStatus, error) {
	if !mgr.IsInstalled() {
		return nil, model.NewCLIError(model.ExitCondaNotFound,
			"conda not found on PATH — run `kiln doctor` for details")
	}

	// Resolve the same name the pipeline would operate on — with an
	// environment.yml configured, the file's declared name is the one
	// that matters, not the configured fallback.
	envName, err := conda.EffectiveEnvName(cfg.EnvFile, cfg.EnvName)
	if err != nil {
		return nil, err
	}

	envExists, err := mgr.EnvExists(ctx, envName)
	if err != nil {
		return nil, err
	}

	return []ResourceStatus{
		{Resource: "environment", Detail: envName, State: stateOf(envExists)},
		{Resource: "checkout", Detail: cfg.CheckoutDir, State: stateOf(git.IsCheckout(cfg.CheckoutDir))},
		{Resource: "model-asset", Detail: cfg.ModelPath, State: stateOf(assets.Exists(cfg.ModelPath))},
	}, nil
}

// stateOf converts an existence check result to a ResourceState.
func stateOf(present bool) model.ResourceState {
	if present {
		return model.StatePresent
	}
	return model.StateAbsent
}

// printStatusText renders the statuses as a simple aligned table.
func printStatusText(statuses []ResourceStatus) {
	// Column width chosen to fit the longest resource name.
	for _, s := range statuses {
		fmt.Printf("%-12s %-8s %s\n", s.Resource, s.State, s.Detail)
	}
}
