// Package cli — doctor.go implements the "kiln doctor" command.
//
// The doctor command runs preflight checks without provisioning
// anything: prerequisite tools on PATH, configuration loadability, and
// writability of the destinations the pipeline would create. It exits
// non-zero when any check fails, so it can gate CI or a first run.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hollowpine/kiln/internal/conda"
	"github.com/hollowpine/kiln/internal/doctor"
	"github.com/hollowpine/kiln/internal/gitrepo"
	"github.com/hollowpine/kiln/internal/model"
)

// NewDoctorCommand creates the "doctor" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run preflight checks without provisioning anything",
		Long: `Check that the machine is ready for "kiln up": prerequisite tools
(conda, git), a loadable configuration, and writable destinations.

Examples:
  kiln doctor
  kiln doctor --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor()
		},
	}

	return cmd
}

// runDoctor is the main logic function for the doctor command.
func runDoctor() error {
	results := doctor.CheckTools(conda.NewManager(), gitrepo.NewFetcher())

	configResults, cfg := doctor.CheckConfig(configPath)
	results = append(results, configResults...)

	// The remaining checks need a loaded config; skip them when the
	// config itself failed, the config failure already explains why.
	if cfg != nil {
		results = append(results, doctor.CheckEnvFile(cfg)...)
		results = append(results, doctor.CheckDestinations(cfg)...)
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(data))
	} else {
		printDoctorText(results)
	}

	if doctor.HasFailures(results) {
		return model.NewCLIError(model.ExitGeneralError, "one or more preflight checks failed")
	}
	return nil
}

// printDoctorText renders the check results with colorized status
// markers. Color is disabled when stdout is not a terminal.
func printDoctorText(results []doctor.Result) {
	okMark := color.New(color.FgGreen)
	warnMark := color.New(color.FgYellow)
	failMark := color.New(color.FgRed)
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		for _, c := range []*color.Color{okMark, warnMark, failMark} {
			c.DisableColor()
		}
	}

	for _, r := range results {
		switch r.Status {
		case doctor.StatusOK:
			okMark.Print("✓")
		case doctor.StatusWarn:
			warnMark.Print("!")
		default:
			failMark.Print("✗")
		}
		fmt.Printf(" %-14s %s\n", r.CheckName, r.Message)
		if r.Recommendation != "" {
			fmt.Printf("  %-14s → %s\n", "", r.Recommendation)
		}
	}
}
