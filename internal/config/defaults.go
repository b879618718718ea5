package config

// Density thresholds in px.
const (
	DefaultMinHeightMax = 520
	DefaultPaddingMax   = 32
)

// LocalConfigPath is the project-local config file, relative to the root.
const LocalConfigPath = ".toolguard/config.json"

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"root":         ".",
		"web_root":     "src/ToolNexus.Web/wwwroot",
		"manifest_dir": "src/ToolNexus.Web/App_Data/tool-manifests",
		"template_dir": "tool-templates",
		"page_css_dir": "css/pages",
		"tool_css_dir": "css/tools",
		"module_dir":   "js/tools",
		"shell_stylesheets": []string{
			"css/site.css",
			"css/ui-system.css",
		},
		"report_path":         "docs/reports/TOOL-PLATFORM-VALIDATION-REPORT.md",
		"json_report_path":    "",
		"min_height_max":      DefaultMinHeightMax,
		"padding_max":         DefaultPaddingMax,
		"workers":             4,
		"strict":              false,
		"history_dir":         ".toolguard",
		"history_max_entries": 200,
	}
}
