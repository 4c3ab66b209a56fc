// Package cli — launch.go implements the "kiln launch" command.
//
// The launch command starts the studio application without running the
// provisioning pipeline first. It verifies that the environment and the
// checkout exist (the two resources the application cannot run without)
// and then execs the entrypoint inside the checkout with the
// environment's interpreter, propagating the application's exit code.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hollowpine/kiln/internal/conda"
	"github.com/hollowpine/kiln/internal/config"
	"github.com/hollowpine/kiln/internal/gitrepo"
	"github.com/hollowpine/kiln/internal/launch"
	"github.com/hollowpine/kiln/internal/model"
)

// NewLaunchCommand creates the "launch" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewLaunchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch the application without re-running provisioning",
		Long: `Start the studio application directly, assuming the machine is already
provisioned (e.g. after "kiln up --no-launch"). Fails if the conda
environment or the checkout is missing; run "kiln up" to create them.

The command blocks until the application exits and mirrors its exit code.

Examples:
  kiln launch`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd.Context())
		},
	}

	return cmd
}

// runLaunch is the main logic function for the launch command.
func runLaunch(ctx context.Context) error {
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

	// The application reads the mirror endpoint at startup, so export it
	// here too — launch must behave the same whether it runs standalone
	// or as the last pipeline step.
	if cfg.MirrorVar != "" && os.Getenv(cfg.MirrorVar) == "" {
		if err := os.Setenv(cfg.MirrorVar, cfg.MirrorURL); err != nil {
			return model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to set %s", cfg.MirrorVar), err)
		}
	}

	mgr := conda.NewManager()
	if !mgr.IsInstalled() {
		return model.NewCLIError(model.ExitCondaNotFound,
			"conda not found on PATH — run `kiln doctor` for details")
	}

	// The environment.yml's declared name wins over the configured one,
	// exactly as it does during provisioning.
	envName, err := conda.EffectiveEnvName(cfg.EnvFile, cfg.EnvName)
	if err != nil {
		return err
	}

	exists, err := mgr.EnvExists(ctx, envName)
	if err != nil {
		return err
	}
	if !exists {
		return model.NewCLIError(model.ExitLaunchFailed,
			fmt.Sprintf("environment %q does not exist — run `kiln up` first", envName))
	}

	env, err := mgr.Resolve(ctx, envName)
	if err != nil {
		return err
	}

	if !gitrepo.NewFetcher().IsCheckout(cfg.CheckoutDir) {
		return model.NewCLIError(model.ExitLaunchFailed,
			fmt.Sprintf("checkout %s does not exist — run `kiln up` first", cfg.CheckoutDir))
	}

	VerboseLog("Launching %s %v in %s with %s", cfg.Entrypoint, cfg.LaunchArgs, cfg.CheckoutDir, env.Python)
	return launch.NewLauncher(env.Python).Run(ctx, cfg.CheckoutDir, cfg.Entrypoint, cfg.LaunchArgs)
}
