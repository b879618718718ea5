// toolguard - Tool Platform Architecture Validator
// Source: https://github.com/toolnexus/toolguard

// Package cli provides Cobra-based CLI commands for toolguard.
// It defines the validation commands (validate, watch) and the inspection
// commands (history, version).
package cli

import (
	"github.com/spf13/cobra"

	"github.com/toolnexus/toolguard/internal/cli/shared"
)

var rootCmd = &cobra.Command{
	Use:   "toolguard",
	Short: "Architecture conformance validator for the tool platform",
	Long: `toolguard checks every tool of the platform against the architecture rulebook:
template structure, shell/tool ownership boundaries, layout density and the
runtime lifecycle contract. It scores each tool, writes a Markdown report and
prints the architecture safety verdict.

Running toolguard without a subcommand is the same as "toolguard validate".`,
	Example: `  # Validate the platform in the current directory
  toolguard

  # Validate another checkout and also write a JSON report
  toolguard validate --root ../ToolNexus --json-report docs/reports/validation.json

  # Fail the build on any violation
  toolguard validate --strict

  # Re-validate on every change
  toolguard watch`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runValidateCmd,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddGroup(&cobra.Group{ID: shared.GroupValidation, Title: "Validation:"})
	rootCmd.AddGroup(&cobra.Group{ID: shared.GroupConfiguration, Title: "Configuration:"})

	rootCmd.SetHelpCommandGroupID(shared.GroupConfiguration)
	rootCmd.SetCompletionCommandGroupID(shared.GroupConfiguration)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default .toolguard/config.json)")
	rootCmd.PersistentFlags().StringP("root", "r", "", "Project root to validate (overrides config)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")

	addValidateFlags(rootCmd)
}
