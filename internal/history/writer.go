package history

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Writer appends run outcomes to the history file with automatic pruning.
type Writer struct {
	// Dir is the directory containing the history file.
	Dir string
	// MaxEntries is the maximum number of entries to retain; 0 keeps all.
	MaxEntries int
	logger     *zap.Logger
}

// NewWriter creates a new history writer.
func NewWriter(dir string, maxEntries int, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		Dir:        dir,
		MaxEntries: maxEntries,
		logger:     logger,
	}
}

// Record adds an entry, assigning a run ID when it has none. Failures are logged, never returned: history is an
// accessory to the report and must not fail a run.
func (w *Writer) Record(entry HistoryEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if err := w.append(entry); err != nil {
		w.logger.Warn("failed to record history", zap.String("dir", w.Dir), zap.Error(err))
	}
}

func (w *Writer) append(entry HistoryEntry) error {
	history, err := LoadHistory(w.Dir)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	history.Entries = append(history.Entries, entry)

	// Prune oldest entries if over limit
	if w.MaxEntries > 0 && len(history.Entries) > w.MaxEntries {
		excess := len(history.Entries) - w.MaxEntries
		history.Entries = history.Entries[excess:]
	}

	if err := SaveHistory(w.Dir, history); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}
