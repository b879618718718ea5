package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Display reports the phases of a validation run.
type Display struct {
	capabilities TerminalCapabilities
	symbols      ProgressSymbols
	out          io.Writer
	spinner      *spinner.Spinner
}

// NewDisplay creates a display writing status lines to out. The spinner, when
// shown, goes to stderr so stdout stays parseable.
func NewDisplay(caps TerminalCapabilities, out io.Writer) *Display {
	return &Display{
		capabilities: caps,
		symbols:      SelectSymbols(caps),
		out:          out,
	}
}

// Start begins a phase.
func (d *Display) Start(msg string) {
	d.Stop()
	if !d.capabilities.Animate {
		fmt.Fprintln(d.out, msg)
		return
	}
	d.spinner = spinner.New(spinner.CharSets[d.symbols.SpinnerSet], 100*time.Millisecond)
	d.spinner.Writer = os.Stderr
	d.spinner.Suffix = " " + msg
	d.spinner.Start()
}

// Done ends the current phase successfully.
func (d *Display) Done(msg string) {
	d.Stop()
	fmt.Fprintf(d.out, "%s %s\n", d.mark(d.symbols.Checkmark, color.FgGreen), msg)
}

// Fail ends the current phase with an error.
func (d *Display) Fail(msg string, err error) {
	d.Stop()
	fmt.Fprintf(d.out, "%s %s: %v\n", d.mark(d.symbols.Failure, color.FgRed), msg, err)
}

// Stop halts the spinner without printing anything.
func (d *Display) Stop() {
	if d.spinner != nil {
		d.spinner.Stop()
		d.spinner = nil
	}
}

func (d *Display) mark(symbol string, attr color.Attribute) string {
	if !d.capabilities.SupportsColor {
		return symbol
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(symbol)
}
