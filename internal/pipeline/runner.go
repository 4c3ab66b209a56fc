package pipeline

import (
	"context"

	"github.com/hollowpine/kiln/internal/model"
)

// Runner executes a step sequence strictly in order, stopping at the
// first failure. It owns no policy beyond sequencing: idempotence lives
// in the steps, exit-code mapping lives in the CLI layer.
type Runner struct {
	steps   []Step
	printer *Printer
}

// NewRunner creates a Runner over the given steps, reporting progress
// through the given printer.
func NewRunner(steps []Step, printer *Printer) *Runner {
	return &Runner{steps: steps, printer: printer}
}

// Run executes the pipeline against the given state.
//
// It returns the reports of every step that completed, in order. On
// failure the returned error is the failing step's error (a
// model.CLIError) and the report slice covers only the steps that
// finished before it — there is no rollback of their effects; the next
// run's existence checks pick up from whatever was left behind.
func (r *Runner) Run(ctx context.Context, st *State) ([]model.StepReport, error) {
	reports := make([]model.StepReport, 0, len(r.steps))

	for i, step := range r.steps {
		r.printer.StepStart(i+1, len(r.steps), step.Name())

		report, err := step.Run(ctx, st)
		if err != nil {
			r.printer.StepFailed(step.Name(), err)
			return reports, err
		}

		for _, w := range report.Warnings {
			r.printer.Warn(w)
		}
		r.printer.StepDone(report)
		reports = append(reports, report)
	}

	return reports, nil
}
