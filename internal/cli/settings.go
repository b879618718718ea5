package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toolnexus/toolguard/internal/cli/shared"
	"github.com/toolnexus/toolguard/internal/config"
	"github.com/toolnexus/toolguard/internal/logging"
)

// addValidateFlags registers the flags shared by every command that runs a
// validation.
func addValidateFlags(cmd *cobra.Command) {
	cmd.Flags().String("report", "", "Markdown report path (overrides config)")
	cmd.Flags().String("json-report", "", "Also write a JSON report to this path")
	cmd.Flags().IntP("workers", "w", 0, "Tools evaluated concurrently (overrides config)")
	cmd.Flags().Bool("strict", false, "Exit non-zero when architecture safety fails")
	cmd.Flags().Bool("no-history", false, "Do not record this run in the score history")
}

// loadSettings builds the configuration for a command: config file and
// environment first, then explicitly set flags.
func loadSettings(cmd *cobra.Command) (*config.Configuration, *zap.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	logger, err := logging.New(debug)
	if err != nil {
		return nil, nil, shared.WithExitCode(shared.ExitInvalidArguments, err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, shared.WithExitCode(shared.ExitInvalidArguments, err)
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Root, _ = flags.GetString("root")
	}
	if f := flags.Lookup("report"); f != nil && f.Changed {
		cfg.ReportPath = f.Value.String()
	}
	if f := flags.Lookup("json-report"); f != nil && f.Changed {
		cfg.JSONReportPath = f.Value.String()
	}
	if f := flags.Lookup("workers"); f != nil && f.Changed {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if f := flags.Lookup("strict"); f != nil && f.Changed {
		cfg.Strict, _ = flags.GetBool("strict")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, shared.WithExitCode(shared.ExitInvalidArguments, fmt.Errorf("applying flags: %w", err))
	}

	logger.Debug("configuration loaded",
		zap.String("root", cfg.Root),
		zap.String("web_root", cfg.WebRoot),
		zap.Int("workers", cfg.Workers),
		zap.Bool("strict", cfg.Strict))
	return cfg, logger, nil
}
