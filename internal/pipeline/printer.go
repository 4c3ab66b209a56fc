package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/hollowpine/kiln/internal/model"
)

// Printer renders pipeline progress as human-readable lines. Color is
// used only when the destination is a terminal; redirected output (logs,
// CI) gets plain text.
type Printer struct {
	out io.Writer

	// Quiet suppresses all progress output. Used when the caller wants
	// machine-readable output only (--json mode prints the report slice
	// itself instead).
	Quiet bool

	ok   *color.Color
	skip *color.Color
	warn *color.Color
	fail *color.Color
}

// NewPrinter creates a Printer writing to out. When out is not a
// terminal (or NO_COLOR is honored by the color package), the styled
// output degrades to plain text automatically.
func NewPrinter(out io.Writer) *Printer {
	p := &Printer{
		out:  out,
		ok:   color.New(color.FgGreen),
		skip: color.New(color.Faint),
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed, color.Bold),
	}

	// fatih/color keys its global NoColor default off os.Stdout; when
	// printing elsewhere, disable styling unless that writer is itself
	// a terminal.
	if f, isFile := out.(*os.File); !isFile || !term.IsTerminal(int(f.Fd())) {
		for _, c := range []*color.Color{p.ok, p.skip, p.warn, p.fail} {
			c.DisableColor()
		}
	}
	return p
}

// StepStart announces a step before it runs, with its position in the
// pipeline.
func (p *Printer) StepStart(index, total int, name string) {
	if p.Quiet {
		return
	}
	fmt.Fprintf(p.out, "[%d/%d] %s\n", index, total, name)
}

// StepDone renders a completed step's report. Skipped steps are dimmed:
// on a re-run of a completed pipeline, every guarded step prints this
// form.
func (p *Printer) StepDone(report model.StepReport) {
	if p.Quiet {
		return
	}
	switch report.Action {
	case model.ActionSkipped:
		p.skip.Fprintf(p.out, "  - %s already present, skipped\n", report.Resource)
	case model.ActionCreated:
		p.ok.Fprintf(p.out, "  ✓ %s created\n", report.Resource)
	default:
		p.ok.Fprintf(p.out, "  ✓ %s\n", report.Resource)
	}
}

// Warn renders a non-fatal condition, such as the missing dependency
// manifest.
func (p *Printer) Warn(message string) {
	if p.Quiet {
		return
	}
	p.warn.Fprintf(p.out, "  ! warning: %s\n", message)
}

// StepFailed renders the failing step before the pipeline aborts.
func (p *Printer) StepFailed(name string, err error) {
	if p.Quiet {
		return
	}
	p.fail.Fprintf(p.out, "  ✗ step %s failed: %v\n", name, err)
}
