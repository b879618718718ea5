// Package validation implements the fixed architecture rulebook for tool
// entities: structural markers, ownership/layout leakage, density heuristics,
// the runtime lifecycle contract and shell-level ownership leakage.
//
// Every check is a pure function of artifact text. Checks never return errors;
// anomalies, including missing artifacts, become violations and FAIL verdicts.
package validation

import "fmt"

// Category tags the rule family that produced a violation.
type Category string

const (
	CategoryStructure    Category = "structure"
	CategoryLayout       Category = "layout"
	CategoryDensity      Category = "density"
	CategoryRuntime      Category = "runtime"
	CategoryCSSOwnership Category = "css-ownership"
)

// Categories lists every category in report column order.
var Categories = []Category{
	CategoryStructure,
	CategoryLayout,
	CategoryDensity,
	CategoryRuntime,
	CategoryCSSOwnership,
}

// Violation is a single located rule failure.
type Violation struct {
	Entity   string   `json:"entity,omitempty"` // empty for global and shell-scoped violations
	Path     string   `json:"path"`
	Line     int      `json:"line"` // 1-based
	Category Category `json:"category"`
	Message  string   `json:"message"`
}

// Location returns "path:line".
func (v Violation) Location() string {
	return fmt.Sprintf("%s:%d", v.Path, v.Line)
}

// String returns the report listing form "path:line — message".
func (v Violation) String() string {
	return fmt.Sprintf("%s — %s", v.Location(), v.Message)
}

// Verdict is a PASS/FAIL flag.
type Verdict string

const (
	Pass Verdict = "PASS"
	Fail Verdict = "FAIL"
)

// DensityRating classifies layout bloat by the number of distinct density hits.
type DensityRating string

const (
	DensityProfessional     DensityRating = "PROFESSIONAL"
	DensityAcceptable       DensityRating = "ACCEPTABLE"
	DensityNeedsImprovement DensityRating = "NEEDS IMPROVEMENT"
	DensityLawViolation     DensityRating = "EXECUTION LAW VIOLATION"
)

// RatingForHits maps a distinct-hit count to a rating. The mapping is
// monotonic: more hits never produce a better rating.
func RatingForHits(hits int) DensityRating {
	switch {
	case hits <= 0:
		return DensityProfessional
	case hits == 1:
		return DensityAcceptable
	case hits == 2:
		return DensityNeedsImprovement
	default:
		return DensityLawViolation
	}
}

// Verdicts holds exactly one verdict per category for one entity.
type Verdicts struct {
	Structure    Verdict       `json:"structure"`
	Layout       Verdict       `json:"layout"`
	Density      DensityRating `json:"density"`
	Runtime      Verdict       `json:"runtime"`
	CSSOwnership Verdict       `json:"css_ownership"`
}

// NewVerdicts returns the all-passing verdict set.
func NewVerdicts() Verdicts {
	return Verdicts{
		Structure:    Pass,
		Layout:       Pass,
		Density:      DensityProfessional,
		Runtime:      Pass,
		CSSOwnership: Pass,
	}
}

// Outcome is what a single check returns: the categories it failed and the
// violations that explain them.
type Outcome struct {
	Failed     map[Category]bool
	Violations []Violation
}

func (o *Outcome) fail(c Category) {
	if o.Failed == nil {
		o.Failed = make(map[Category]bool)
	}
	o.Failed[c] = true
}

func (o *Outcome) add(v Violation, failing ...Category) {
	if v.Line < 1 {
		v.Line = 1
	}
	o.Violations = append(o.Violations, v)
	for _, c := range failing {
		o.fail(c)
	}
}

// Apply folds the failed categories of o into v.
func (o Outcome) Apply(v *Verdicts) {
	if o.Failed[CategoryStructure] {
		v.Structure = Fail
	}
	if o.Failed[CategoryLayout] {
		v.Layout = Fail
	}
	if o.Failed[CategoryRuntime] {
		v.Runtime = Fail
	}
	if o.Failed[CategoryCSSOwnership] {
		v.CSSOwnership = Fail
	}
}

// Artifact is the raw text of one file plus whether it existed.
type Artifact struct {
	Path    string
	Text    string
	Missing bool
	// Declared reports whether the path was named explicitly in the manifest
	// rather than derived from the naming convention.
	Declared bool
}
