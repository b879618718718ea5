package validation

import (
	"fmt"
	"strings"

	"github.com/gorilla/css/scanner"
)

// Thresholds bounds the density heuristics. Values are in px.
type Thresholds struct {
	MinHeightMax float64
	PaddingMax   float64
}

// DensitySignal names one of the five independent density heuristics.
type DensitySignal string

const (
	SignalMinHeight       DensitySignal = "min-height"
	SignalPadding         DensitySignal = "padding"
	SignalDuplicateHeader DensitySignal = "duplicate-header"
	SignalFloatingAction  DensitySignal = "floating-action"
	SignalStatusIndicator DensitySignal = "status-indicators"
)

// DensityOutcome extends Outcome with the per-signal hits and the rating.
type DensityOutcome struct {
	Outcome
	Hits   map[DensitySignal]bool
	Rating DensityRating
}

// CheckDensity evaluates the density heuristics over an entity's template and
// stylesheets. Each individual match is reported; the rating depends only on
// how many distinct signals were hit.
func CheckDensity(tpl Artifact, sheets []Artifact, th Thresholds) DensityOutcome {
	out := DensityOutcome{Hits: make(map[DensitySignal]bool)}
	hit := func(sig DensitySignal, v Violation) {
		out.Hits[sig] = true
		v.Category = CategoryDensity
		out.add(v)
	}

	for _, sheet := range sheets {
		if sheet.Missing {
			continue
		}
		rules, _ := parseStylesheet(sheet.Text)
		for _, rule := range rules {
			for _, d := range rule.Declarations {
				switch {
				case d.Property == "min-height":
					if v, ok := maxPixels(d.Values); ok && v > th.MinHeightMax {
						hit(SignalMinHeight, Violation{
							Path:    sheet.Path,
							Line:    d.Line,
							Message: fmt.Sprintf("min-height %s exceeds %s", formatPixels(v), formatPixels(th.MinHeightMax)),
						})
					}
				case d.Property == "padding" || strings.HasPrefix(d.Property, "padding-"):
					if v, ok := maxPixels(d.Values); ok && v > th.PaddingMax {
						hit(SignalPadding, Violation{
							Path:    sheet.Path,
							Line:    d.Line,
							Message: fmt.Sprintf("%s %s exceeds %s", d.Property, formatPixels(v), formatPixels(th.PaddingMax)),
						})
					}
				case d.Property == "position":
					if kw := floatingKeyword(d.Values); kw != "" {
						hit(SignalFloatingAction, Violation{
							Path:    sheet.Path,
							Line:    d.Line,
							Message: fmt.Sprintf("position: %s floating action pattern in `%s`", kw, rule.Selector),
						})
					}
				}
			}
		}
	}

	if !tpl.Missing {
		idx := indexTemplate(tpl.Text, MarkerHeader, MarkerStatus)
		if headers := idx.lines(MarkerHeader); len(headers) > 1 {
			for _, line := range headers[1:] {
				hit(SignalDuplicateHeader, Violation{
					Path:    tpl.Path,
					Line:    line,
					Message: fmt.Sprintf("duplicate %s (count: %d)", MarkerHeader, len(headers)),
				})
			}
		}
		if statuses := idx.lines(MarkerStatus); len(statuses) > 1 {
			for _, line := range statuses[1:] {
				hit(SignalStatusIndicator, Violation{
					Path:    tpl.Path,
					Line:    line,
					Message: fmt.Sprintf("multiple %s indicators (count: %d)", MarkerStatus, len(statuses)),
				})
			}
		}
	}

	out.Rating = RatingForHits(len(out.Hits))
	return out
}

// maxPixels returns the largest px or unitless value among toks.
func maxPixels(toks []*scanner.Token) (float64, bool) {
	var (
		best  float64
		found bool
	)
	for _, t := range toks {
		v, ok := pixelValue(t)
		if !ok {
			continue
		}
		if !found || v > best {
			best, found = v, true
		}
	}
	return best, found
}

func floatingKeyword(toks []*scanner.Token) string {
	for _, t := range toks {
		if t.Type != scanner.TokenIdent {
			continue
		}
		switch kw := strings.ToLower(t.Value); kw {
		case "fixed", "sticky":
			return kw
		}
	}
	return ""
}
