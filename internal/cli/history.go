package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/toolnexus/toolguard/internal/cli/shared"
	"github.com/toolnexus/toolguard/internal/history"
)

var historyCmd = &cobra.Command{
	Use:          "history",
	Short:        "View the score history of past validations",
	Long:         `View the global score, safety verdict, violation count and tool count recorded by each validate run, oldest first.`,
	SilenceUsage: true,
	RunE:         runHistoryCmd,
}

func init() {
	historyCmd.GroupID = shared.GroupConfiguration
	historyCmd.Flags().IntP("limit", "n", 0, "Limit to last N entries (most recent)")
	historyCmd.Flags().Bool("clear", false, "Clear all history")
	rootCmd.AddCommand(historyCmd)
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	return runHistoryWithDir(cmd, cfg.HistoryPath())
}

// runHistoryWithDir runs the history command against a history directory.
func runHistoryWithDir(cmd *cobra.Command, dir string) error {
	clearFlag, _ := cmd.Flags().GetBool("clear")
	limit, _ := cmd.Flags().GetInt("limit")

	if limit < 0 {
		return shared.WithExitCode(shared.ExitInvalidArguments, fmt.Errorf("limit must be positive, got %d", limit))
	}

	if clearFlag {
		if err := history.SaveHistory(dir, &history.HistoryFile{Entries: []history.HistoryEntry{}}); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	}

	histFile, err := history.LoadHistory(dir)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	entries := histFile.Entries
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history available.")
		return nil
	}

	start := 0
	if limit > 0 && len(entries) > limit {
		start = len(entries) - limit
	}
	displayEntries(cmd, entries, start)
	return nil
}

// displayEntries prints entries[start:], each with its score change against
// the entry before it.
func displayEntries(cmd *cobra.Command, entries []history.HistoryEntry, start int) {
	out := cmd.OutOrStdout()

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for i := start; i < len(entries); i++ {
		entry := entries[i]
		timestamp := entry.Timestamp.Local().Format("2006-01-02 15:04:05")

		safety := green(entry.Safety)
		if entry.Safety != "PASS" {
			safety = red(entry.Safety)
		}

		delta := ""
		if i > 0 {
			delta = " " + formatDelta(entry.GlobalScore-entries[i-1].GlobalScore)
		}

		fmt.Fprintf(out, "%s  score %s%s  %s  violations %d  tools %d\n",
			cyan(timestamp),
			fmt.Sprintf("%5.1f", entry.GlobalScore),
			delta,
			safety,
			entry.Violations,
			entry.Entities,
		)
	}
}

func formatDelta(d float64) string {
	switch {
	case d > 0.05:
		return fmt.Sprintf("(+%.1f)", d)
	case d < -0.05:
		return fmt.Sprintf("(%.1f)", d)
	default:
		return "(=)"
	}
}
