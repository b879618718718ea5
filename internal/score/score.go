// Package score turns category verdicts into entity scores, a global score
// and the architecture-safety verdict.
package score

import (
	"math"

	"github.com/toolnexus/toolguard/internal/validation"
)

// Max is the score of an entity with no failing categories.
const Max = 100

// Deduction weights, applied at most once per category.
const (
	StructureFailPenalty = 25
	LayoutFailPenalty    = 20
	RuntimeFailPenalty   = 20

	DensityAcceptablePenalty       = 8
	DensityNeedsImprovementPenalty = 18
	DensityLawViolationPenalty     = 30
)

// DensityPenalty returns the deduction for a density rating.
func DensityPenalty(r validation.DensityRating) int {
	switch r {
	case validation.DensityAcceptable:
		return DensityAcceptablePenalty
	case validation.DensityNeedsImprovement:
		return DensityNeedsImprovementPenalty
	case validation.DensityLawViolation:
		return DensityLawViolationPenalty
	default:
		return 0
	}
}

// Entity scores one entity's verdicts, floored at 0. css-ownership carries no
// weight of its own: a leaking stylesheet also fails layout.
func Entity(v validation.Verdicts) int {
	s := Max
	if v.Structure == validation.Fail {
		s -= StructureFailPenalty
	}
	if v.Layout == validation.Fail {
		s -= LayoutFailPenalty
	}
	if v.Runtime == validation.Fail {
		s -= RuntimeFailPenalty
	}
	s -= DensityPenalty(v.Density)
	if s < 0 {
		return 0
	}
	return s
}

// Global is the mean of scores rounded to one decimal, or 0 for no scores.
func Global(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	mean := float64(sum) / float64(len(scores))
	return math.Round(mean*10) / 10
}

// Safety is PASS only when the whole run produced no violations.
func Safety(totalViolations int) validation.Verdict {
	if totalViolations == 0 {
		return validation.Pass
	}
	return validation.Fail
}
