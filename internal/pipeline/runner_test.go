package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowpine/kiln/internal/config"
	"github.com/hollowpine/kiln/internal/model"
)

// fakeStep is a scripted Step implementation that records how many
// times it ran, for verifying sequencing, fail-fast, and exactly-once
// semantics.
type fakeStep struct {
	name   string
	action model.StepAction
	err    error
	runs   int
	order  *[]string // shared execution trace across steps
}

func (f *fakeStep) Name() string { return f.name }

func (f *fakeStep) Run(_ context.Context, _ *State) (model.StepReport, error) {
	f.runs++
	if f.order != nil {
		*f.order = append(*f.order, f.name)
	}
	if f.err != nil {
		return model.StepReport{Step: f.name}, f.err
	}
	return model.StepReport{Step: f.name, Resource: f.name, Action: f.action}, nil
}

// quietPrinter returns a printer writing into a buffer, for assertions
// on rendered output.
func quietPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewPrinter(&buf), &buf
}

// TestRunnerSequential verifies that steps run in order, exactly once
// each, and that all reports come back on success.
func TestRunnerSequential(t *testing.T) {
	var order []string
	steps := []Step{
		&fakeStep{name: "environment", action: model.ActionCreated, order: &order},
		&fakeStep{name: "checkout", action: model.ActionCreated, order: &order},
		&fakeStep{name: "launch", action: model.ActionRan, order: &order},
	}

	p, _ := quietPrinter()
	r := NewRunner(steps, p)

	reports, err := r.Run(context.Background(), &State{Config: config.Default()})
	require.NoError(t, err)

	assert.Equal(t, []string{"environment", "checkout", "launch"}, order)
	require.Len(t, reports, 3)
	for i, s := range steps {
		assert.Equal(t, 1, s.(*fakeStep).runs)
		assert.Equal(t, s.Name(), reports[i].Step)
	}
}

// TestRunnerFailFast verifies that the first failure aborts the
// pipeline: later steps never run and the failing step's error comes
// back unchanged.
func TestRunnerFailFast(t *testing.T) {
	boom := model.NewCLIError(model.ExitBuildFailed, "native module missing")
	var order []string
	steps := []Step{
		&fakeStep{name: "environment", action: model.ActionSkipped, order: &order},
		&fakeStep{name: "native-modules", err: boom, order: &order},
		&fakeStep{name: "launch", action: model.ActionRan, order: &order},
	}

	p, _ := quietPrinter()
	r := NewRunner(steps, p)

	reports, err := r.Run(context.Background(), &State{Config: config.Default()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))

	// The launcher must not have been invoked after the build failure.
	assert.Equal(t, []string{"environment", "native-modules"}, order)
	assert.Equal(t, 0, steps[2].(*fakeStep).runs, "launch must not run after a failure")

	// Reports only cover steps that completed before the failure.
	require.Len(t, reports, 1)
	assert.Equal(t, "environment", reports[0].Step)
}

// TestRunnerRendersProgress verifies the printed progress lines for the
// created / skipped / ran shapes.
func TestRunnerRendersProgress(t *testing.T) {
	steps := []Step{
		&fakeStep{name: "environment", action: model.ActionCreated},
		&fakeStep{name: "checkout", action: model.ActionSkipped},
		&fakeStep{name: "launch", action: model.ActionRan},
	}

	p, buf := quietPrinter()
	r := NewRunner(steps, p)

	_, err := r.Run(context.Background(), &State{Config: config.Default()})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "[1/3] environment")
	assert.Contains(t, out, "environment created")
	assert.Contains(t, out, "checkout already present, skipped")
	assert.Contains(t, out, "[3/3] launch")
}

// TestRunnerRendersWarnings verifies that step warnings (the missing
// manifest case) are printed without aborting the run.
func TestRunnerRendersWarnings(t *testing.T) {
	warned := &fakeStep{name: "dependencies", action: model.ActionRan}
	steps := []Step{warned, &fakeStep{name: "launch", action: model.ActionRan}}

	p, buf := quietPrinter()
	// Wrap the fake so it emits a warning on its report.
	r := NewRunner([]Step{warningStep{warned}, steps[1]}, p)

	reports, err := r.Run(context.Background(), &State{Config: config.Default()})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "! warning: manifest not found")
	require.Len(t, reports, 2)
	assert.Equal(t, []string{"manifest not found"}, reports[0].Warnings)
}

// warningStep decorates a step with a fixed warning, for printer tests.
type warningStep struct{ inner Step }

func (w warningStep) Name() string { return w.inner.Name() }

func (w warningStep) Run(ctx context.Context, st *State) (model.StepReport, error) {
	report, err := w.inner.Run(ctx, st)
	report.Warnings = append(report.Warnings, "manifest not found")
	return report, err
}

// TestRunnerQuiet verifies that Quiet mode produces no output at all.
func TestRunnerQuiet(t *testing.T) {
	p, buf := quietPrinter()
	p.Quiet = true
	r := NewRunner([]Step{&fakeStep{name: "environment", action: model.ActionCreated}}, p)

	_, err := r.Run(context.Background(), &State{Config: config.Default()})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}
