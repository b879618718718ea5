// Package scan runs the rulebook over every tool entity of a platform tree and
// assembles the scored result the report is rendered from.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/toolnexus/toolguard/internal/manifest"
	"github.com/toolnexus/toolguard/internal/score"
	"github.com/toolnexus/toolguard/internal/validation"
)

// Options configures one scan.
type Options struct {
	// Root is the project root; every other path is relative to it.
	Root             string
	Layout           manifest.Layout
	ShellStylesheets []string
	Thresholds       validation.Thresholds
	// Workers bounds how many entities are evaluated at once. Values below 1
	// mean sequential evaluation.
	Workers int
	Logger  *zap.Logger
}

// EntityResult is everything the rulebook concluded about one entity.
type EntityResult struct {
	ID          string                     `json:"id"`
	Descriptor  string                     `json:"descriptor"`
	Verdicts    validation.Verdicts        `json:"verdicts"`
	DensityHits []validation.DensitySignal `json:"density_hits,omitempty"`
	Score       int                        `json:"score"`
	// Violations are in rule evaluation order.
	Violations []validation.Violation `json:"violations"`
	// ToolToShell holds the subset of Violations where a tool stylesheet
	// selects a shell anchor.
	ToolToShell []validation.Violation `json:"-"`
}

// Result is the outcome of a full scan.
type Result struct {
	Entities []EntityResult `json:"entities"`
	// ManifestViolations come from descriptors that could not be loaded.
	ManifestViolations []validation.Violation `json:"manifest_violations"`
	// ShellToTool are the shell stylesheet selectors reaching into tool-local
	// classes. Any entry fails layout for every entity.
	ShellToTool []validation.Violation `json:"shell_to_tool"`
	// ShellSyntax are shell stylesheet positions the tokenizer could not
	// read. Like ShellToTool, any entry fails layout for every entity.
	ShellSyntax []validation.Violation `json:"shell_syntax"`
	GlobalScore float64                `json:"global_score"`
	Safety      validation.Verdict     `json:"architecture_safety"`
	// ShellOwned and ToolOwned are the path prefixes of each ownership layer.
	ShellOwned []string `json:"shell_owned"`
	ToolOwned  []string `json:"tool_owned"`
}

// Violations returns every violation of the run in evaluation order:
// manifest, shell pass, then each entity by identifier.
func (r *Result) Violations() []validation.Violation {
	all := make([]validation.Violation, 0, r.ViolationCount())
	all = append(all, r.ManifestViolations...)
	all = append(all, r.ShellToTool...)
	all = append(all, r.ShellSyntax...)
	for _, e := range r.Entities {
		all = append(all, e.Violations...)
	}
	return all
}

// ViolationCount counts entity-scoped and global violations.
func (r *Result) ViolationCount() int {
	n := len(r.ManifestViolations) + len(r.ShellToTool) + len(r.ShellSyntax)
	for _, e := range r.Entities {
		n += len(e.Violations)
	}
	return n
}

// ToolToShell returns every tool -> shell leak across entities.
func (r *Result) ToolToShell() []validation.Violation {
	var out []validation.Violation
	for _, e := range r.Entities {
		out = append(out, e.ToolToShell...)
	}
	return out
}

// Run loads the manifest, evaluates every entity plus the shared shell pass,
// and scores the result. It only fails when ctx is cancelled; an unreadable
// manifest directory and missing artifacts become violations.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	set := manifest.Load(opts.Root, opts.Layout, logger)
	entities := set.Entities()
	logger.Debug("manifest loaded",
		zap.Int("entities", len(entities)),
		zap.Int("malformed", len(set.Violations)))

	shellSheets := make([]validation.Artifact, len(opts.ShellStylesheets))
	for i, p := range opts.ShellStylesheets {
		shellSheets[i] = readArtifact(opts.Root, manifest.Ref{Path: p}, logger)
	}
	shell := validation.CheckShellStylesheets(shellSheets)
	shellSyntax := validation.CheckStylesheetSyntax(shellSheets, validation.CategoryLayout)

	results := make([]EntityResult, len(entities))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	} else {
		g.SetLimit(1)
	}
	for i, e := range entities {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = evaluate(opts.Root, e, opts.Thresholds, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scanning entities: %w", err)
	}

	scores := make([]int, len(results))
	for i := range results {
		if len(shell.Violations) > 0 || len(shellSyntax.Violations) > 0 {
			results[i].Verdicts.Layout = validation.Fail
		}
		results[i].Score = score.Entity(results[i].Verdicts)
		scores[i] = results[i].Score
	}

	res := &Result{
		Entities:           results,
		ManifestViolations: set.Violations,
		ShellToTool:        shell.Violations,
		ShellSyntax:        shellSyntax.Violations,
		GlobalScore:        score.Global(scores),
		ShellOwned:         append([]string(nil), opts.ShellStylesheets...),
		ToolOwned: []string{
			opts.Layout.TemplateDir + "/",
			opts.Layout.ModuleDir + "/",
			opts.Layout.PageCSSDir + "/",
			opts.Layout.ToolCSSDir + "/",
		},
	}
	res.Safety = score.Safety(res.ViolationCount())
	return res, nil
}

// evaluate runs the rulebook for one entity. It only touches its own inputs,
// so callers may run it concurrently.
func evaluate(root string, e manifest.Entity, th validation.Thresholds, logger *zap.Logger) EntityResult {
	tpl := readArtifact(root, e.Template, logger)
	mod := readArtifact(root, e.Module, logger)
	sheets := make([]validation.Artifact, len(e.Stylesheets))
	for i, ref := range e.Stylesheets {
		sheets[i] = readArtifact(root, ref, logger)
	}

	res := EntityResult{
		ID:         e.ID,
		Descriptor: e.Descriptor,
		Verdicts:   validation.NewVerdicts(),
	}
	collect := func(o validation.Outcome) {
		o.Apply(&res.Verdicts)
		for _, v := range o.Violations {
			v.Entity = e.ID
			res.Violations = append(res.Violations, v)
		}
	}

	collect(validation.CheckStructure(tpl))
	collect(validation.CheckNestedContainers(tpl))
	collect(validation.CheckStylesheetPresence(sheets))
	collect(validation.CheckStylesheetSyntax(sheets, validation.CategoryCSSOwnership))

	leaks := validation.CheckToolStylesheets(sheets)
	collect(leaks)
	for _, v := range leaks.Violations {
		v.Entity = e.ID
		res.ToolToShell = append(res.ToolToShell, v)
	}

	density := validation.CheckDensity(tpl, sheets, th)
	collect(density.Outcome)
	res.Verdicts.Density = density.Rating
	for sig := range density.Hits {
		res.DensityHits = append(res.DensityHits, sig)
	}
	sort.Slice(res.DensityHits, func(i, j int) bool { return res.DensityHits[i] < res.DensityHits[j] })

	collect(validation.CheckRuntime(mod))

	logger.Debug("entity evaluated",
		zap.String("id", e.ID),
		zap.Int("violations", len(res.Violations)),
		zap.String("density", string(res.Verdicts.Density)))
	return res
}

// readArtifact reads a root-relative file. Any read failure is treated as a
// missing artifact: the scan is total over the declared entity set.
func readArtifact(root string, ref manifest.Ref, logger *zap.Logger) validation.Artifact {
	a := validation.Artifact{Path: ref.Path, Declared: ref.Declared}
	if ref.Path == "" {
		a.Missing = true
		return a
	}
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(ref.Path)))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("artifact unreadable, treating as missing", zap.String("path", ref.Path), zap.Error(err))
		}
		a.Missing = true
		return a
	}
	a.Text = string(data)
	return a
}
