package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toolnexus/toolguard/internal/cli/shared"
	"github.com/toolnexus/toolguard/internal/config"
)

// watchDebounce coalesces bursts of file events (editor saves, checkouts)
// into a single validation run.
const watchDebounce = 300 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-validate whenever tool or shell files change",
	Long: `Run a validation, then watch the manifest, template, module and stylesheet
directories and validate again after every change. Stops on interrupt.

Strict mode does not stop the watcher; the verdict is printed after each run.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		noHistory, _ := cmd.Flags().GetBool("no-history")
		return runWatch(ctx, cmd.OutOrStdout(), cfg, logger, !noHistory)
	},
}

func init() {
	watchCmd.GroupID = shared.GroupValidation
	addValidateFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

// runWatch validates once, then again after each debounced change, until ctx
// is done. Runs happen on the calling goroutine so they never overlap.
func runWatch(ctx context.Context, out io.Writer, cfg *config.Configuration, logger *zap.Logger, record bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init failed: %w", err)
	}
	defer watcher.Close()

	dirs := watchDirs(cfg)
	for _, dir := range dirs {
		if err := addWatchRecursive(watcher, dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	logger.Debug("watching", zap.Strings("dirs", dirs))

	run := func() {
		if _, err := executeValidation(ctx, out, cfg, logger, record); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("validation failed", zap.Error(err))
		}
	}
	run()
	fmt.Fprintln(out, "Watching for changes (Ctrl+C to stop)")

	var timer *time.Timer
	trigger := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addWatchRecursive(watcher, ev.Name)
				}
			}
			logger.Debug("change detected", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
		case <-trigger:
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		}
	}
}

// watchDirs returns the existing directories that hold validated inputs:
// manifests, templates, modules, both stylesheet directories and the
// directories of the shell stylesheets.
func watchDirs(cfg *config.Configuration) []string {
	layout := cfg.Layout()
	rel := []string{
		layout.ManifestDir,
		layout.TemplateDir,
		layout.ModuleDir,
		layout.PageCSSDir,
		layout.ToolCSSDir,
	}
	for _, sheet := range cfg.ShellStylesheetPaths() {
		rel = append(rel, filepath.ToSlash(filepath.Dir(filepath.FromSlash(sheet))))
	}

	seen := make(map[string]bool, len(rel))
	var dirs []string
	for _, r := range rel {
		dir := filepath.Join(cfg.Root, filepath.FromSlash(r))
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs
}

func addWatchRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
