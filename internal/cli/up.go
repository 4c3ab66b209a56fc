// Package cli — up.go implements the "kiln up" command.
//
// The up command is the primary user-facing operation: it runs the full
// provisioning pipeline and, unless --no-launch is given, ends by
// launching the studio application.
//
// Orchestration steps:
//  1. Load configuration (kiln.jsonc or built-in defaults) and .env
//  2. Export the mirror endpoint for this process and all children
//  3. Provision the conda environment (create if absent)
//  4. Clone the application checkout (if absent)
//  5. Download the model asset (if absent)
//  6. Install pinned packages and the dependency manifest
//  7. Build the native extension modules
//  8. Launch the application (unless --no-launch)
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hollowpine/kiln/internal/config"
	"github.com/hollowpine/kiln/internal/model"
	"github.com/hollowpine/kiln/internal/pipeline"
)

// upFlags holds the flag values for the up command.
// These are bound to cobra flags in NewUpCommand.
type upFlags struct {
	noLaunch bool // --no-launch: provision everything but skip the launch step
}

// NewUpCommand creates the "up" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewUpCommand() *cobra.Command {
	flags := &upFlags{}

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Provision the studio environment and launch the application",
		Long: `Run the full provisioning pipeline:

  environment → checkout → model asset → dependencies → native modules → launch

Steps that manage a resource (environment, checkout, model asset) check for
its existence first and skip creation when it is already present, so "kiln up"
is safe to re-run after a partial failure. The first failing step aborts the
pipeline; nothing is rolled back.

Examples:
  kiln up
  kiln up --no-launch
  kiln up --config ./lab.jsonc`,

		// No positional arguments; everything comes from configuration.
		Args: cobra.NoArgs,

		// RunE is used instead of Run so we can return errors. Cobra will
		// pass them to the Execute error handler in root.go.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noLaunch, "no-launch", false, "Provision only, don't launch the application")

	return cmd
}

// runUp is the main orchestration function for the up command.
func runUp(ctx context.Context, flags *upFlags) error {
	// Step 1: Load .env (if present) and the configuration. The .env is
	// loaded first so its variables can influence nothing yet — it only
	// feeds the child process environment — but loading it early keeps
	// the precedence story simple: shell > .env > config defaults.
	cwd, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}
	if loaded, err := config.LoadDotenv(cwd); err != nil {
		return err
	} else if loaded {
		VerboseLog("Loaded .env from %s", cwd)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	VerboseLog("Environment: %s (python %s)", cfg.EnvName, cfg.PythonVersion)
	VerboseLog("Checkout: %s → %s", cfg.RepoURL, cfg.CheckoutDir)

	// Step 2: Export the mirror endpoint. os.Setenv makes it visible to
	// this process and every child (conda, pip, the launched app) — the
	// one piece of ambient state the pipeline deliberately keeps. A
	// value already present in the environment (shell or .env) wins.
	if cfg.MirrorVar != "" && os.Getenv(cfg.MirrorVar) == "" {
		if err := os.Setenv(cfg.MirrorVar, cfg.MirrorURL); err != nil {
			return model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to set %s", cfg.MirrorVar), err)
		}
		VerboseLog("Exported %s=%s", cfg.MirrorVar, cfg.MirrorURL)
	}

	// Step 3: Assemble and run the pipeline. Progress goes to stdout
	// unless --json asked for a machine-readable report instead.
	printer := pipeline.NewPrinter(os.Stdout)
	printer.Quiet = IsJSONOutput()

	steps := pipeline.DefaultSteps(!flags.noLaunch)
	runner := pipeline.NewRunner(steps, printer)

	st := &pipeline.State{Config: cfg}
	reports, runErr := runner.Run(ctx, st)

	if IsJSONOutput() {
		printUpReportJSON(reports, runErr)
	}
	if runErr != nil {
		return runErr
	}

	if !IsJSONOutput() && flags.noLaunch {
		fmt.Println()
		fmt.Printf("Provisioning complete. Launch with: kiln launch\n")
	}
	return nil
}

// printUpReportJSON renders the step reports (and failure, if any) as a
// single JSON document on stdout.
func printUpReportJSON(reports []model.StepReport, runErr error) {
	type upJSON struct {
		Steps []model.StepReport `json:"steps"`
		Error string             `json:"error,omitempty"`
	}

	out := upJSON{Steps: reports}
	if runErr != nil {
		out.Error = runErr.Error()
	}

	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
}
