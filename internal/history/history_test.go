// Package history_test tests score history loading, saving, and pruning.
// Related: internal/history/history.go, internal/history/writer.go
// Tags: history, yaml, pruning, corruption

package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHistory(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content     string
		write       bool
		wantEntries int
		wantBackup  bool
	}{
		"returns empty history when file doesn't exist": {
			wantEntries: 0,
		},
		"loads existing history file": {
			write: true,
			content: `entries:
  - timestamp: 2026-01-15T10:30:00Z
    global_score: 55
    safety: FAIL
    violations: 4
    entities: 1
  - timestamp: 2026-01-16T10:30:00Z
    global_score: 100
    safety: PASS
    violations: 0
    entities: 1
`,
			wantEntries: 2,
		},
		"handles corrupted file by backing up and returning empty": {
			write:       true,
			content:     `not valid yaml: [[[`,
			wantEntries: 0,
			wantBackup:  true,
		},
		"handles empty file gracefully": {
			write:       true,
			content:     "",
			wantEntries: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			if tt.write {
				require.NoError(t, os.WriteFile(filepath.Join(dir, HistoryFileName), []byte(tt.content), 0o644))
			}

			history, err := LoadHistory(dir)
			require.NoError(t, err)
			assert.Len(t, history.Entries, tt.wantEntries)

			_, statErr := os.Stat(filepath.Join(dir, HistoryFileName+BackupSuffix))
			assert.Equal(t, tt.wantBackup, statErr == nil)
		})
	}
}

func TestSaveHistory_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "state")
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := &HistoryFile{Entries: []HistoryEntry{
		{Timestamp: ts, GlobalScore: 72.5, Safety: "FAIL", Violations: 3, Entities: 2},
	}}

	require.NoError(t, SaveHistory(dir, in))

	out, err := LoadHistory(dir)
	require.NoError(t, err)
	require.Len(t, out.Entries, 1)
	assert.True(t, ts.Equal(out.Entries[0].Timestamp))
	assert.Equal(t, 72.5, out.Entries[0].GlobalScore)
	assert.Equal(t, "FAIL", out.Entries[0].Safety)

	_, err = os.Stat(filepath.Join(dir, HistoryFileName+".tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriter_RecordPrunes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := NewWriter(dir, 3, nil)
	for i := 0; i < 5; i++ {
		w.Record(HistoryEntry{GlobalScore: float64(i), Safety: "PASS"})
	}

	history, err := LoadHistory(dir)
	require.NoError(t, err)
	require.Len(t, history.Entries, 3)
	assert.Equal(t, 2.0, history.Entries[0].GlobalScore)

	latest, ok := history.Latest()
	require.True(t, ok)
	assert.Equal(t, 4.0, latest.GlobalScore)
}

func TestWriter_UnlimitedRetention(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := NewWriter(dir, 0, nil)
	for i := 0; i < 4; i++ {
		w.Record(HistoryEntry{GlobalScore: float64(i)})
	}

	history, err := LoadHistory(dir)
	require.NoError(t, err)
	assert.Len(t, history.Entries, 4)
}

func TestWriter_RecordAssignsID(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := NewWriter(dir, 0, nil)
	w.Record(HistoryEntry{GlobalScore: 90})
	w.Record(HistoryEntry{ID: "fixed", GlobalScore: 91})

	history, err := LoadHistory(dir)
	require.NoError(t, err)
	require.Len(t, history.Entries, 2)

	_, err = uuid.Parse(history.Entries[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, "fixed", history.Entries[1].ID)
}

func TestWriter_RecordFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	// A regular file where the directory should be makes saving fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	w := NewWriter(filepath.Join(blocker, "state"), 10, nil)
	assert.NotPanics(t, func() { w.Record(HistoryEntry{}) })
}

func TestHistoryFile_LatestEmpty(t *testing.T) {
	t.Parallel()

	_, ok := (&HistoryFile{}).Latest()
	assert.False(t, ok)
}
