// Package progress tests terminal capability rules without a real terminal.
// Related: internal/progress/terminal.go
// Tags: progress, terminal, tty, color, debug
package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalEnv_Capabilities(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		env  terminalEnv
		want TerminalCapabilities
	}{
		"piped everywhere": {
			env:  terminalEnv{},
			want: TerminalCapabilities{},
		},
		"interactive terminal": {
			env:  terminalEnv{stdoutTTY: true, stderrTTY: true, width: 120},
			want: TerminalCapabilities{IsTTY: true, Animate: true, SupportsColor: true, SupportsUnicode: true, Width: 120},
		},
		"debug logging keeps the spinner off": {
			env:  terminalEnv{stdoutTTY: true, stderrTTY: true, debug: true},
			want: TerminalCapabilities{IsTTY: true, SupportsColor: true, SupportsUnicode: true},
		},
		"stdout piped, stderr on terminal": {
			env:  terminalEnv{stderrTTY: true},
			want: TerminalCapabilities{Animate: true, SupportsUnicode: true},
		},
		"NO_COLOR or dumb terminal": {
			env:  terminalEnv{stdoutTTY: true, stderrTTY: true, noColor: true},
			want: TerminalCapabilities{IsTTY: true, Animate: true, SupportsUnicode: true},
		},
		"ascii override": {
			env:  terminalEnv{stdoutTTY: true, ascii: true},
			want: TerminalCapabilities{IsTTY: true, SupportsColor: true},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.env.capabilities())
		})
	}
}
