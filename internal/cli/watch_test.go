// Package cli_test tests watch mode: initial run, debounced re-validation, and shutdown.
// Related: internal/cli/watch.go
// Tags: cli, watch, fsnotify, debounce
package cli

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/toolnexus/toolguard/internal/testutil"
)

// syncBuffer guards console output written by the watch loop.
type syncBuffer struct {
	mu sync.Mutex
	sb strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.String()
}

func TestWatchDirs(t *testing.T) {
	t.Parallel()

	p := testutil.NewPlatform(t)
	p.AddTool("base64")
	cfg := fixtureConfig(p.Root)

	dirs := watchDirs(cfg)
	at := func(rel string) string { return filepath.Join(p.Root, filepath.FromSlash(rel)) }
	assert.Contains(t, dirs, at(testutil.ManifestDir))
	assert.Contains(t, dirs, at(testutil.TemplateDir))
	assert.Contains(t, dirs, at(testutil.ModuleDir))
	assert.Contains(t, dirs, at(testutil.ToolCSSDir))
	assert.Contains(t, dirs, at("web/css"))
	assert.NotContains(t, dirs, at(testutil.PageCSSDir), "missing directories are skipped")
}

func TestRunWatch_RevalidatesOnChange(t *testing.T) {
	t.Parallel()

	p := testutil.NewPlatform(t)
	p.AddTool("base64")
	cfg := fixtureConfig(p.Root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, out, cfg, zap.NewNop(), false)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Watching for changes")
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, testutil.ReadFile(t, cfg.ReportFile()), "## ARCHITECTURE SAFETY RESULT\n\nPASS")

	p.Write(testutil.TemplateDir+"/base64.html", "<div class=\"tool-runtime-widget\" data-tool-status></div>\n")

	require.Eventually(t, func() bool {
		return strings.Contains(testutil.ReadFile(t, cfg.ReportFile()), "illegal shell anchor data-tool-status")
	}, 5*time.Second, 50*time.Millisecond)
	require.Eventually(t, func() bool {
		return strings.Count(out.String(), "GLOBAL SCORE:") >= 2
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}
