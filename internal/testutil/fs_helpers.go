// Package testutil builds platform trees on disk for toolguard tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Fixture directory layout, relative to the platform root.
const (
	WebRoot     = "web"
	ManifestDir = "manifests"
	TemplateDir = "web/tool-templates"
	ModuleDir   = "web/js/tools"
	PageCSSDir  = "web/css/pages"
	ToolCSSDir  = "web/css/tools"
)

// ShellStylesheets are the shell-owned stylesheets of a fixture platform.
var ShellStylesheets = []string{"web/css/site.css", "web/css/ui-system.css"}

// ValidTemplate satisfies the structural rule and declares no shell anchors.
const ValidTemplate = `<section class="tool-runtime-widget">
  <header class="tool-local-header"><h2>Tool</h2></header>
  <div class="tool-local-body">
    <textarea class="tool-local-input"></textarea>
  </div>
  <div class="tool-local-status" aria-live="polite"></div>
</section>
`

// ValidModule exports the full lifecycle with a guarded destroy.
const ValidModule = `let root = null;

export function init(el) {
  root = el;
}

export function destroy() {
  if (!root) {
    return;
  }
  root.replaceChildren();
  root = null;
}

export async function runTool(input) {
  return input;
}
`

// ValidToolCSS stays within the density thresholds.
const ValidToolCSS = `.tool-local-body {
  padding: 16px;
  min-height: 240px;
}
`

// ValidShellCSS styles shell anchors only.
const ValidShellCSS = `[data-tool-shell] {
  display: grid;
  gap: 12px;
}
`

// Platform is a fixture project root.
type Platform struct {
	t    *testing.T
	Root string
}

// NewPlatform creates an empty platform with clean shell stylesheets.
func NewPlatform(t *testing.T) *Platform {
	t.Helper()

	p := &Platform{t: t, Root: t.TempDir()}
	if err := os.MkdirAll(filepath.Join(p.Root, ManifestDir), 0755); err != nil {
		t.Fatalf("failed to create manifest directory: %v", err)
	}
	for _, sheet := range ShellStylesheets {
		p.Write(sheet, ValidShellCSS)
	}
	return p
}

// toolFiles collects what AddTool writes for one entity.
type toolFiles struct {
	manifest string
	template *string
	module   *string
	toolCSS  *string
	pageCSS  *string
}

// ToolOption customizes a fixture tool.
type ToolOption func(*toolFiles)

// WithTemplate replaces the template content.
func WithTemplate(content string) ToolOption {
	return func(f *toolFiles) { f.template = &content }
}

// WithModule replaces the module content.
func WithModule(content string) ToolOption {
	return func(f *toolFiles) { f.module = &content }
}

// WithToolCSS replaces the tool stylesheet content.
func WithToolCSS(content string) ToolOption {
	return func(f *toolFiles) { f.toolCSS = &content }
}

// WithPageCSS adds a page stylesheet.
func WithPageCSS(content string) ToolOption {
	return func(f *toolFiles) { f.pageCSS = &content }
}

// WithoutTemplate leaves the template file absent.
func WithoutTemplate() ToolOption {
	return func(f *toolFiles) { f.template = nil }
}

// WithoutModule leaves the module file absent.
func WithoutModule() ToolOption {
	return func(f *toolFiles) { f.module = nil }
}

// WithManifest replaces the descriptor body written as <id>.json.
func WithManifest(body string) ToolOption {
	return func(f *toolFiles) { f.manifest = body }
}

// AddTool writes a healthy tool named id, then applies opts.
func (p *Platform) AddTool(id string, opts ...ToolOption) {
	p.t.Helper()

	tpl, mod, css := ValidTemplate, ValidModule, ValidToolCSS
	files := &toolFiles{
		manifest: fmt.Sprintf(`{"id": %q}`, id),
		template: &tpl,
		module:   &mod,
		toolCSS:  &css,
	}
	for _, opt := range opts {
		opt(files)
	}

	p.Write(ManifestDir+"/"+id+".json", files.manifest)
	if files.template != nil {
		p.Write(TemplateDir+"/"+id+".html", *files.template)
	}
	if files.module != nil {
		p.Write(ModuleDir+"/"+id+".js", *files.module)
	}
	if files.toolCSS != nil {
		p.Write(ToolCSSDir+"/"+id+".css", *files.toolCSS)
	}
	if files.pageCSS != nil {
		p.Write(PageCSSDir+"/"+id+".css", *files.pageCSS)
	}
}

// Write creates a file at a slash-separated path under the root.
func (p *Platform) Write(rel, content string) string {
	p.t.Helper()

	path := filepath.Join(p.Root, filepath.FromSlash(rel))
	WriteFile(p.t, path, content)
	return path
}

// Remove deletes a file under the root.
func (p *Platform) Remove(rel string) {
	p.t.Helper()

	if err := os.Remove(filepath.Join(p.Root, filepath.FromSlash(rel))); err != nil {
		p.t.Fatalf("failed to remove %s: %v", rel, err)
	}
}

// WriteFile writes content to a file, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadFile reads file content, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}

	return string(content)
}

// Lines joins lines with newlines and a trailing newline.
func Lines(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}
