package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/toolnexus/toolguard/internal/cli/shared"
	"github.com/toolnexus/toolguard/internal/config"
	"github.com/toolnexus/toolguard/internal/history"
	"github.com/toolnexus/toolguard/internal/progress"
	"github.com/toolnexus/toolguard/internal/report"
	"github.com/toolnexus/toolguard/internal/scan"
	"github.com/toolnexus/toolguard/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate every tool and write the report",
	Long: `Scan the tool manifests, evaluate each tool against the architecture rulebook,
score the results and write the validation report.

Violations never change the exit code unless strict mode is enabled (--strict
or TOOLGUARD_STRICT=true). A report that cannot be written always fails.`,
	Example: `  toolguard validate
  toolguard validate --workers 8 --json-report docs/reports/validation.json
  toolguard validate --strict --no-history`,
	SilenceUsage: true,
	RunE:         runValidateCmd,
}

func init() {
	validateCmd.GroupID = shared.GroupValidation
	addValidateFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}

func runValidateCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	noHistory, _ := cmd.Flags().GetBool("no-history")
	res, err := executeValidation(cmd.Context(), cmd.OutOrStdout(), cfg, logger, !noHistory)
	if err != nil {
		return err
	}
	if cfg.Strict && res.Safety == validation.Fail {
		return shared.WithExitCode(shared.ExitValidationFailed,
			fmt.Errorf("architecture safety failed with %d violation(s) in strict mode", res.ViolationCount()))
	}
	return nil
}

// executeValidation runs one scan, writes the report(s), records history and
// prints the console summary.
func executeValidation(ctx context.Context, out io.Writer, cfg *config.Configuration, logger *zap.Logger, record bool) (*scan.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	display := progress.NewDisplay(progress.DetectTerminalCapabilities(debugEnabled(logger)), out)

	display.Start("Scanning tool platform")
	res, err := scan.Run(ctx, scan.Options{
		Root:             cfg.Root,
		Layout:           cfg.Layout(),
		ShellStylesheets: cfg.ShellStylesheetPaths(),
		Thresholds:       cfg.Thresholds(),
		Workers:          cfg.Workers,
		Logger:           logger,
	})
	if err != nil {
		display.Fail("Scan failed", err)
		return nil, shared.WithExitCode(shared.ExitInvalidArguments, fmt.Errorf("scanning platform: %w", err))
	}
	display.Done(fmt.Sprintf("Scanned %d tool(s)", len(res.Entities)))

	if err := report.Write(cfg.ReportFile(), report.Render(res)); err != nil {
		return res, shared.WithExitCode(shared.ExitReportWriteFailed, err)
	}
	fmt.Fprintf(out, "Wrote %s\n", cfg.ReportPath)

	if path := cfg.JSONReportFile(); path != "" {
		data, err := report.RenderJSON(res)
		if err == nil {
			err = report.Write(path, data)
		}
		if err != nil {
			return res, shared.WithExitCode(shared.ExitReportWriteFailed, err)
		}
		fmt.Fprintf(out, "Wrote %s\n", cfg.JSONReportPath)
	}

	if record {
		history.NewWriter(cfg.HistoryPath(), cfg.HistoryMaxEntries, logger).Record(history.HistoryEntry{
			Timestamp:   time.Now().UTC(),
			GlobalScore: res.GlobalScore,
			Safety:      string(res.Safety),
			Violations:  res.ViolationCount(),
			Entities:    len(res.Entities),
		})
	}

	printSummary(out, res)
	return res, nil
}

// debugEnabled reports whether logger writes debug entries to stderr.
func debugEnabled(logger *zap.Logger) bool {
	return logger != nil && logger.Core().Enabled(zapcore.DebugLevel)
}

func printSummary(out io.Writer, res *scan.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	safety := green(res.Safety)
	if res.Safety == validation.Fail {
		safety = red(res.Safety)
	}
	fmt.Fprintf(out, "GLOBAL SCORE: %.1f\n", res.GlobalScore)
	fmt.Fprintf(out, "ARCHITECTURE SAFETY RESULT: %s\n", safety)
}
