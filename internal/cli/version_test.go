// Package cli_test tests the version command output.
// Related: internal/cli/version.go
// Tags: cli, version, build-info
package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmdOutput(t *testing.T) {
	// No t.Parallel() - shares the global versionCmd and races on SetOut
	cmd := getCommand("version")
	require.NotNil(t, cmd)

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	defer cmd.SetOut(nil)
	cmd.Run(cmd, nil)

	out := buf.String()
	assert.Contains(t, out, "toolguard version dev\n")
	assert.Contains(t, out, "Built from commit: unknown\n")
	assert.Contains(t, out, "Go version: go")
}
