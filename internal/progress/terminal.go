package progress

import (
	"os"

	"golang.org/x/term"
)

// DetectTerminalCapabilities inspects stdout, stderr and the environment.
// With debug set the spinner stays off: debug logs share stderr with it and
// would tear its line.
func DetectTerminalCapabilities(debug bool) TerminalCapabilities {
	stdout := int(os.Stdout.Fd())
	env := terminalEnv{
		stdoutTTY: term.IsTerminal(stdout),
		stderrTTY: term.IsTerminal(int(os.Stderr.Fd())),
		noColor:   os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb",
		ascii:     os.Getenv("TOOLGUARD_ASCII") == "1",
		debug:     debug,
	}
	if env.stdoutTTY {
		if w, _, err := term.GetSize(stdout); err == nil {
			env.width = w
		}
	}
	return env.capabilities()
}

// terminalEnv is everything detection reads, gathered so the rules below can
// be exercised without a terminal.
type terminalEnv struct {
	stdoutTTY bool
	stderrTTY bool
	noColor   bool
	ascii     bool
	debug     bool
	width     int
}

func (e terminalEnv) capabilities() TerminalCapabilities {
	return TerminalCapabilities{
		IsTTY:           e.stdoutTTY,
		Animate:         e.stderrTTY && !e.debug,
		SupportsColor:   e.stdoutTTY && !e.noColor,
		SupportsUnicode: (e.stdoutTTY || e.stderrTTY) && !e.ascii,
		Width:           e.width,
	}
}

// SelectSymbols returns the appropriate symbol set based on terminal capabilities
func SelectSymbols(caps TerminalCapabilities) ProgressSymbols {
	if caps.SupportsUnicode {
		return ProgressSymbols{
			Checkmark:  "✓",
			Failure:    "✗",
			SpinnerSet: 14,
		}
	}

	return ProgressSymbols{
		Checkmark:  "[OK]",
		Failure:    "[FAIL]",
		SpinnerSet: 9,
	}
}
