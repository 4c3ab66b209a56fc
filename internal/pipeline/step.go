package pipeline

import (
	"context"

	"github.com/hollowpine/kiln/internal/conda"
	"github.com/hollowpine/kiln/internal/config"
	"github.com/hollowpine/kiln/internal/model"
)

// State is the context record threaded through every pipeline step.
// It replaces process-global state (an "activated" environment) with
// explicit data: later steps read the interpreter path the environment
// step resolved, instead of trusting whatever PATH happens to contain.
type State struct {
	// Config is the validated kiln configuration.
	Config *config.Config

	// Env is the provisioned conda environment, including its resolved
	// interpreter path. Nil until the environment step has run; every
	// step that needs it guards against nil and fails loudly, since
	// that would mean the pipeline was assembled out of order.
	Env *conda.Env
}

// Step is a single stage of the provisioning pipeline.
//
// Run performs the step's work and describes what happened in a
// StepReport. A returned error aborts the whole pipeline — steps return
// model.CLIError values so the CLI layer can map failures to exit
// codes. Non-fatal conditions (the missing dependency manifest) are
// reported as warnings on the StepReport, not as errors.
type Step interface {
	// Name is the step's stable identifier, used in progress output and
	// failure messages.
	Name() string

	// Run executes the step against the shared pipeline state.
	Run(ctx context.Context, st *State) (model.StepReport, error)
}
