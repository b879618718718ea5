package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/toolnexus/toolguard/internal/manifest"
	"github.com/toolnexus/toolguard/internal/validation"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TOOLGUARD_"

// Configuration represents the toolguard configuration.
// Directory fields other than Root, WebRoot and ManifestDir are relative to
// WebRoot; WebRoot and ManifestDir are relative to Root.
type Configuration struct {
	Root              string   `koanf:"root" validate:"required"`
	WebRoot           string   `koanf:"web_root" validate:"required"`
	ManifestDir       string   `koanf:"manifest_dir" validate:"required"`
	TemplateDir       string   `koanf:"template_dir" validate:"required"`
	PageCSSDir        string   `koanf:"page_css_dir" validate:"required"`
	ToolCSSDir        string   `koanf:"tool_css_dir" validate:"required"`
	ModuleDir         string   `koanf:"module_dir" validate:"required"`
	ShellStylesheets  []string `koanf:"shell_stylesheets" validate:"min=1,dive,required"`
	ReportPath        string   `koanf:"report_path" validate:"required"`
	JSONReportPath    string   `koanf:"json_report_path"`
	MinHeightMax      float64  `koanf:"min_height_max" validate:"gt=0"`
	PaddingMax        float64  `koanf:"padding_max" validate:"gt=0"`
	Workers           int      `koanf:"workers" validate:"min=0,max=256"`
	Strict            bool     `koanf:"strict"`
	HistoryDir        string   `koanf:"history_dir" validate:"required"`
	HistoryMaxEntries int      `koanf:"history_max_entries" validate:"min=0"`
}

// Load loads configuration from defaults, the local config file and the
// environment.
// Priority: Environment variables > Local config > Defaults
//
// An empty configPath falls back to LocalConfigPath in the working directory;
// a missing file at the fallback location is not an error, a missing file
// that was named explicitly is.
func Load(configPath string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	explicit := configPath != ""
	if !explicit {
		configPath = LocalConfigPath
	}
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), json.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", configPath, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints. Callers that override fields after Load
// (command-line flags) should validate again.
func (c *Configuration) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	for _, p := range append([]string{c.WebRoot, c.ManifestDir}, c.ShellStylesheets...) {
		if path.IsAbs(filepath.ToSlash(p)) || filepath.IsAbs(p) {
			return fmt.Errorf("config validation failed: %q must be relative", p)
		}
	}
	return nil
}

// Layout returns the root-relative directory layout for the manifest loader.
func (c *Configuration) Layout() manifest.Layout {
	web := clean(c.WebRoot)
	return manifest.Layout{
		ManifestDir: clean(c.ManifestDir),
		WebRoot:     web,
		TemplateDir: path.Join(web, clean(c.TemplateDir)),
		ModuleDir:   path.Join(web, clean(c.ModuleDir)),
		PageCSSDir:  path.Join(web, clean(c.PageCSSDir)),
		ToolCSSDir:  path.Join(web, clean(c.ToolCSSDir)),
	}
}

// ShellStylesheetPaths returns the shell-owned stylesheets relative to Root.
func (c *Configuration) ShellStylesheetPaths() []string {
	web := clean(c.WebRoot)
	out := make([]string, len(c.ShellStylesheets))
	for i, s := range c.ShellStylesheets {
		out[i] = path.Join(web, clean(s))
	}
	return out
}

// Thresholds returns the density limits.
func (c *Configuration) Thresholds() validation.Thresholds {
	return validation.Thresholds{MinHeightMax: c.MinHeightMax, PaddingMax: c.PaddingMax}
}

// ReportFile returns the Markdown report location on disk.
func (c *Configuration) ReportFile() string {
	return c.underRoot(c.ReportPath)
}

// JSONReportFile returns the JSON sidecar location, or "" when disabled.
func (c *Configuration) JSONReportFile() string {
	if c.JSONReportPath == "" {
		return ""
	}
	return c.underRoot(c.JSONReportPath)
}

// HistoryPath returns the history directory on disk.
func (c *Configuration) HistoryPath() string {
	return c.underRoot(expandHomePath(c.HistoryDir))
}

func (c *Configuration) underRoot(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, filepath.FromSlash(p))
}

// envTransform converts environment variable names to config keys
// Example: TOOLGUARD_MIN_HEIGHT_MAX -> min_height_max
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

func clean(p string) string {
	return strings.TrimPrefix(path.Clean(filepath.ToSlash(p)), "./")
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(p string) string {
	if strings.HasPrefix(p, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, p[2:])
		}
	}
	return p
}
