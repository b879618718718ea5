// Package history records the score of every validation run so the trend of
// the platform's architecture health can be followed over time.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// HistoryFileName is the name of the history file.
	HistoryFileName = "history.yaml"
	// BackupSuffix is the suffix for backup files when corruption is detected.
	BackupSuffix = ".backup"
)

// HistoryEntry is the outcome of one validation run.
type HistoryEntry struct {
	// ID identifies the run; assigned by Writer when empty.
	ID string `yaml:"id,omitempty"`
	// Timestamp is when the run finished (RFC3339 in YAML).
	Timestamp time.Time `yaml:"timestamp"`
	// GlobalScore is the platform score, one decimal.
	GlobalScore float64 `yaml:"global_score"`
	// Safety is PASS or FAIL.
	Safety string `yaml:"safety"`
	// Violations counts every violation of the run.
	Violations int `yaml:"violations"`
	// Entities counts the tools that were scanned.
	Entities int `yaml:"entities"`
}

// HistoryFile represents the YAML file containing all history entries.
type HistoryFile struct {
	// Entries are ordered oldest first.
	Entries []HistoryEntry `yaml:"entries"`
}

// Latest returns the newest entry, if any.
func (h *HistoryFile) Latest() (HistoryEntry, bool) {
	if len(h.Entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.Entries[len(h.Entries)-1], true
}

// LoadHistory loads the history file from the given directory.
// Returns empty history if file doesn't exist.
// Handles corrupted files by backing them up and creating a fresh history.
func LoadHistory(dir string) (*HistoryFile, error) {
	historyPath := filepath.Join(dir, HistoryFileName)

	data, err := os.ReadFile(historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &HistoryFile{Entries: []HistoryEntry{}}, nil
		}
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	var history HistoryFile
	if err := yaml.Unmarshal(data, &history); err != nil {
		if backupErr := backupCorruptedFile(historyPath); backupErr != nil {
			return nil, fmt.Errorf("backing up corrupted history file: %w", backupErr)
		}
		return &HistoryFile{Entries: []HistoryEntry{}}, nil
	}

	if history.Entries == nil {
		history.Entries = []HistoryEntry{}
	}

	return &history, nil
}

// backupCorruptedFile renames a corrupted file with a .backup suffix.
func backupCorruptedFile(path string) error {
	backupPath := path + BackupSuffix
	if err := os.Rename(path, backupPath); err != nil {
		return fmt.Errorf("renaming corrupted file to backup: %w", err)
	}
	return nil
}

// SaveHistory saves the history file to the given directory using atomic writes.
// Creates parent directories if needed.
func SaveHistory(dir string, history *HistoryFile) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	data, err := yaml.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	historyPath := filepath.Join(dir, HistoryFileName)
	tmpPath := historyPath + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp history file: %w", err)
	}

	if err := os.Rename(tmpPath, historyPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp history file: %w", err)
	}

	return nil
}
