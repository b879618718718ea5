// Package manifest loads tool entity descriptors and resolves the artifact
// paths each entity owns.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/toolnexus/toolguard/internal/validation"
)

// Layout locates platform directories. Every path is slash-separated and
// relative to the project root, so resolved artifact paths are stable across
// machines and can be printed in reports as-is.
type Layout struct {
	ManifestDir string
	WebRoot     string
	TemplateDir string
	ModuleDir   string
	PageCSSDir  string
	ToolCSSDir  string
}

// Ref is a resolved artifact path.
type Ref struct {
	Path string
	// Declared is true when the descriptor named the path explicitly rather
	// than relying on the <id>.<ext> convention.
	Declared bool
}

// Entity is one tool: a template, a script module and its stylesheets.
type Entity struct {
	ID          string
	Descriptor  string
	Template    Ref
	Module      Ref
	Stylesheets []Ref
}

// Set is the result of loading a manifest directory.
type Set struct {
	byID map[string]Entity
	// Violations records descriptors that could not be turned into entities.
	Violations []validation.Violation
}

// Entities returns all entities sorted by identifier.
func (s *Set) Entities() []Entity {
	ids := s.IDs()
	out := make([]Entity, len(ids))
	for i, id := range ids {
		out[i] = s.byID[id]
	}
	return out
}

// IDs returns the entity identifiers in lexicographic order.
func (s *Set) IDs() []string {
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get returns the entity with the given identifier.
func (s *Set) Get(id string) (Entity, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// Len returns the number of loaded entities.
func (s *Set) Len() int {
	return len(s.byID)
}

// descriptor is the on-disk record. JSON descriptors are read with the YAML
// decoder, so both formats share one schema. The camelCase aliases match the
// manifests the web application already ships.
type descriptor struct {
	ID           string   `yaml:"id" validate:"required,excludesall=/\\"`
	Template     string   `yaml:"template"`
	TemplatePath string   `yaml:"templatePath"`
	Module       string   `yaml:"module"`
	ModulePath   string   `yaml:"modulePath"`
	Styles       []string `yaml:"styles"`
	Stylesheets  []string `yaml:"stylesheets"`
}

var descriptorExts = map[string]bool{".json": true, ".yaml": true, ".yml": true}

var validate = validator.New()

// Load reads every descriptor in root/layout.ManifestDir in filename order.
// Malformed descriptors become structure violations; a later descriptor with
// an existing identifier replaces the earlier one. An unreadable directory
// yields an empty set carrying a single structure violation at
// <manifest_dir>:1, so the run still produces a report.
func Load(root string, layout Layout, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}
	set := &Set{byID: make(map[string]Entity)}
	dir := filepath.Join(root, filepath.FromSlash(layout.ManifestDir))
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("manifest directory unreadable", zap.String("dir", layout.ManifestDir), zap.Error(err))
		set.Violations = append(set.Violations, validation.Violation{
			Path:     layout.ManifestDir,
			Line:     1,
			Category: validation.CategoryStructure,
			Message:  "manifest directory unreadable: " + pathErrorCause(err).Error(),
		})
		return set
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !descriptorExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		rel := path.Join(layout.ManifestDir, name)
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			set.Violations = append(set.Violations, malformed(rel, 1, "unreadable descriptor: "+pathErrorCause(err).Error()))
			continue
		}
		d, line, err := parseDescriptor(data)
		if err != nil {
			set.Violations = append(set.Violations, malformed(rel, line, err.Error()))
			logger.Debug("skipping malformed descriptor", zap.String("descriptor", rel), zap.Error(err))
			continue
		}
		if prev, ok := set.byID[d.ID]; ok {
			logger.Debug("duplicate tool id, later descriptor wins",
				zap.String("id", d.ID),
				zap.String("replaced", prev.Descriptor),
				zap.String("descriptor", rel))
		}
		set.byID[d.ID] = layout.entity(d, rel)
	}
	return set
}

// pathErrorCause drops the absolute path an fs.PathError carries so messages
// stay stable across machines.
func pathErrorCause(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

func malformed(descriptorPath string, line int, msg string) validation.Violation {
	return validation.Violation{
		Path:     descriptorPath,
		Line:     line,
		Category: validation.CategoryStructure,
		Message:  "malformed manifest record: " + msg,
	}
}

// parseDescriptor decodes and validates one record. On failure it also
// returns the best known line of the problem (1 when unknown).
func parseDescriptor(data []byte) (descriptor, int, error) {
	var d descriptor
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return d, 1, fmt.Errorf("empty descriptor")
		}
		return d, extractLine(err.Error()), err
	}
	d.ID = strings.TrimSpace(d.ID)
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required" {
			return d, 1, fmt.Errorf("missing required id")
		}
		return d, 1, fmt.Errorf("invalid id %q", d.ID)
	}
	return d, 1, nil
}

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// extractLine pulls "line N" out of a yaml.v3 error message.
func extractLine(msg string) int {
	m := yamlLinePattern.FindStringSubmatch(msg)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (l Layout) entity(d descriptor, descriptorPath string) Entity {
	e := Entity{ID: d.ID, Descriptor: descriptorPath}

	e.Template = l.resolve(firstNonEmpty(d.Template, d.TemplatePath), l.TemplateDir, d.ID+".html")
	e.Module = l.resolve(firstNonEmpty(d.Module, d.ModulePath), l.ModuleDir, d.ID+".js")

	styles := d.Styles
	if len(styles) == 0 {
		styles = d.Stylesheets
	}
	if len(styles) == 0 {
		e.Stylesheets = []Ref{
			{Path: path.Join(l.PageCSSDir, d.ID+".css")},
			{Path: path.Join(l.ToolCSSDir, d.ID+".css")},
		}
		return e
	}
	seen := make(map[string]bool, len(styles))
	for _, s := range styles {
		ref := l.resolve(s, l.WebRoot, "")
		if ref.Path == "" || seen[ref.Path] {
			continue
		}
		seen[ref.Path] = true
		e.Stylesheets = append(e.Stylesheets, ref)
	}
	return e
}

// resolve turns a descriptor reference into a root-relative path. References
// starting with "/" are web-root relative; others are relative to dir. An
// empty reference falls back to dir/conventional.
func (l Layout) resolve(ref, dir, conventional string) Ref {
	ref = strings.TrimSpace(filepath.ToSlash(ref))
	if ref == "" {
		if conventional == "" {
			return Ref{}
		}
		return Ref{Path: path.Join(dir, conventional)}
	}
	if strings.HasPrefix(ref, "/") {
		return Ref{Path: path.Join(l.WebRoot, ref[1:]), Declared: true}
	}
	return Ref{Path: path.Join(dir, ref), Declared: true}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
