package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/toolnexus/toolguard/internal/cli/shared"
	"github.com/toolnexus/toolguard/internal/progress"
)

const defaultShowWidth = 100

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Render the last validation report in the terminal",
	Long: `Render the Markdown report written by the last validate run.
The file is read as is; run validate first to refresh it.`,
	Example: `  toolguard show
  toolguard show --raw > report.md`,
	SilenceUsage: true,
	RunE:         runShowCmd,
}

func init() {
	showCmd.GroupID = shared.GroupValidation
	showCmd.Flags().String("report", "", "Markdown report path (overrides config)")
	showCmd.Flags().Bool("raw", false, "Print the Markdown source instead of rendering it")
	rootCmd.AddCommand(showCmd)
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	raw, _ := cmd.Flags().GetBool("raw")
	return showReport(cmd.OutOrStdout(), cfg.ReportFile(), raw, progress.DetectTerminalCapabilities(debugEnabled(logger)))
}

// showReport prints the report at path, rendered for the terminal unless raw.
func showReport(out io.Writer, path string, raw bool, caps progress.TerminalCapabilities) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return shared.WithExitCode(shared.ExitInvalidArguments,
				fmt.Errorf("no report at %s, run toolguard validate first", path))
		}
		return fmt.Errorf("reading report: %w", err)
	}
	if raw {
		_, err := out.Write(data)
		return err
	}

	width := defaultShowWidth
	if caps.Width > 0 {
		width = caps.Width
	}
	style := glamour.WithStylePath("notty")
	if caps.SupportsColor {
		style = glamour.WithAutoStyle()
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	rendered, err := renderer.Render(string(data))
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}
