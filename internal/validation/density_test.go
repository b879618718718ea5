// Package validation_test tests the density heuristics and rating.
// Related: internal/validation/density.go, internal/validation/stylesheet.go
// Tags: validation, density, css, thresholds
package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

var defaultThresholds = Thresholds{MinHeightMax: 520, PaddingMax: 32}

func cssArtifact(text string) Artifact {
	return Artifact{Path: "web/css/tools/demo.css", Text: text}
}

func TestCheckDensity(t *testing.T) {
	t.Parallel()

	const cssPath = "web/css/tools/demo.css"
	const tplPath = "web/tool-templates/demo.html"
	tests := map[string]struct {
		tpl        string
		css        string
		want       []Violation
		wantHits   []DensitySignal
		wantRating DensityRating
	}{
		"compact tool": {
			tpl:        goodTemplate,
			css:        ".tool-local-body { min-height: 240px; padding: 16px; }\n",
			wantRating: DensityProfessional,
		},
		"values at the threshold are allowed": {
			tpl:        goodTemplate,
			css:        ".tool-local-body { min-height: 520px; padding: 32px; }\n",
			wantRating: DensityProfessional,
		},
		"min-height and padding over threshold": {
			tpl: goodTemplate,
			css: `.tool-local-body {
  min-height: 600px;
  padding: 12px 40px;
}
`,
			want: []Violation{
				{Path: cssPath, Line: 2, Category: CategoryDensity, Message: "min-height 600px exceeds 520px"},
				{Path: cssPath, Line: 3, Category: CategoryDensity, Message: "padding 40px exceeds 32px"},
			},
			wantHits:   []DensitySignal{SignalMinHeight, SignalPadding},
			wantRating: DensityNeedsImprovement,
		},
		"non-pixel units are not compared": {
			tpl:        goodTemplate,
			css:        ".tool-local-body { min-height: 80vh; padding: 3rem; }\n",
			wantRating: DensityProfessional,
		},
		"padding longhand counts once per declaration": {
			tpl: goodTemplate,
			css: `.a { padding-top: 48px; }
.b { padding-left: 64px; }
`,
			want: []Violation{
				{Path: cssPath, Line: 1, Category: CategoryDensity, Message: "padding-top 48px exceeds 32px"},
				{Path: cssPath, Line: 2, Category: CategoryDensity, Message: "padding-left 64px exceeds 32px"},
			},
			wantHits:   []DensitySignal{SignalPadding},
			wantRating: DensityAcceptable,
		},
		"floating action": {
			tpl: goodTemplate,
			css: ".tool-local-fab { position: fixed; bottom: 0; }\n",
			want: []Violation{
				{Path: cssPath, Line: 1, Category: CategoryDensity, Message: "position: fixed floating action pattern in `.tool-local-fab`"},
			},
			wantHits:   []DensitySignal{SignalFloatingAction},
			wantRating: DensityAcceptable,
		},
		"duplicate header and status indicators": {
			tpl: `<section class="tool-runtime-widget">
  <header class="tool-local-header"></header>
  <header class="tool-local-header"></header>
  <div class="tool-local-body"></div>
  <div class="tool-local-status"></div>
  <div class="tool-local-status"></div>
  <div class="tool-local-status"></div>
</section>
`,
			css: "",
			want: []Violation{
				{Path: tplPath, Line: 3, Category: CategoryDensity, Message: "duplicate tool-local-header (count: 2)"},
				{Path: tplPath, Line: 6, Category: CategoryDensity, Message: "multiple tool-local-status indicators (count: 3)"},
				{Path: tplPath, Line: 7, Category: CategoryDensity, Message: "multiple tool-local-status indicators (count: 3)"},
			},
			wantHits:   []DensitySignal{SignalDuplicateHeader, SignalStatusIndicator},
			wantRating: DensityNeedsImprovement,
		},
		"three signals is a law violation": {
			tpl: goodTemplate,
			css: `.x { min-height: 900px; }
.y { padding: 50px; }
.z { position: sticky; }
`,
			want: []Violation{
				{Path: cssPath, Line: 1, Category: CategoryDensity, Message: "min-height 900px exceeds 520px"},
				{Path: cssPath, Line: 2, Category: CategoryDensity, Message: "padding 50px exceeds 32px"},
				{Path: cssPath, Line: 3, Category: CategoryDensity, Message: "position: sticky floating action pattern in `.z`"},
			},
			wantHits:   []DensitySignal{SignalMinHeight, SignalPadding, SignalFloatingAction},
			wantRating: DensityLawViolation,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := CheckDensity(
				Artifact{Path: tplPath, Text: tt.tpl},
				[]Artifact{cssArtifact(tt.css)},
				defaultThresholds,
			)
			if diff := cmp.Diff(tt.want, got.Violations); diff != "" {
				t.Errorf("CheckDensity() violations mismatch (-want +got):\n%s", diff)
			}
			assert.Len(t, got.Hits, len(tt.wantHits))
			for _, sig := range tt.wantHits {
				assert.True(t, got.Hits[sig], "signal %s", sig)
			}
			assert.Equal(t, tt.wantRating, got.Rating)
			assert.Empty(t, got.Failed, "density never fails a pass/fail category")
		})
	}
}

func TestCheckDensity_CustomThresholds(t *testing.T) {
	t.Parallel()

	got := CheckDensity(
		Artifact{Path: "t.html", Text: goodTemplate},
		[]Artifact{cssArtifact(".a { min-height: 300px; }\n")},
		Thresholds{MinHeightMax: 200, PaddingMax: 10},
	)
	assert.Equal(t, DensityAcceptable, got.Rating)
	if assert.Len(t, got.Violations, 1) {
		assert.Equal(t, "min-height 300px exceeds 200px", got.Violations[0].Message)
	}
}

func TestCheckDensity_MissingArtifacts(t *testing.T) {
	t.Parallel()

	got := CheckDensity(
		Artifact{Path: "t.html", Missing: true},
		[]Artifact{{Path: "x.css", Missing: true}},
		defaultThresholds,
	)
	assert.Empty(t, got.Violations)
	assert.Equal(t, DensityProfessional, got.Rating)
}

func TestParseStylesheet(t *testing.T) {
	t.Parallel()

	rules, errs := parseStylesheet(`/* header */
.a, .b:hover {
  color: red;
  padding: 4px
}
@media (min-width: 800px) {
  .c { margin: 0; }
}
`)

	assert.Empty(t, errs)
	if assert.Len(t, rules, 3) {
		assert.Equal(t, ".a, .b:hover", rules[0].Selector)
		assert.Equal(t, 2, rules[0].Line)
		if assert.Len(t, rules[0].Declarations, 2) {
			assert.Equal(t, "color", rules[0].Declarations[0].Property)
			assert.Equal(t, "padding", rules[0].Declarations[1].Property)
			assert.Equal(t, 4, rules[0].Declarations[1].Line)
		}
		assert.True(t, rules[1].AtRule)
		assert.Equal(t, ".c", rules[2].Selector)
		assert.Equal(t, 7, rules[2].Line)
	}
}

func TestParseStylesheet_ResumesAfterTokenError(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		css       string
		wantSel   []string
		wantLines []int
		wantErrs  []int
	}{
		"unclosed string skips to closing brace": {
			css:       ".c { content: \"unterminated\n}\n.d[data-tool-input] {}\n.e { padding: 48px; }\n",
			wantSel:   []string{".c", ".d[data-tool-input]", ".e"},
			wantLines: []int{1, 3, 4},
			wantErrs:  []int{1},
		},
		"unclosed string skips to semicolon": {
			css:       ".c {\n  content: \"a;\n  padding: 40px;\n}\n.e { margin: 0; }\n",
			wantSel:   []string{".c", ".e"},
			wantLines: []int{1, 5},
			wantErrs:  []int{2},
		},
		"two errors": {
			css:       ".a { content: \"x\n}\n.b { content: 'y\n}\n.c {}\n",
			wantSel:   []string{".a", ".b", ".c"},
			wantLines: []int{1, 3, 5},
			wantErrs:  []int{1, 3},
		},
		"error with nothing after it": {
			css:      ".a { content: \"x",
			wantSel:  []string{".a"},
			wantErrs: []int{1},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			rules, errs := parseStylesheet(tt.css)

			var sels []string
			var lines []int
			for _, r := range rules {
				sels = append(sels, r.Selector)
				lines = append(lines, r.Line)
			}
			assert.Equal(t, tt.wantSel, sels)
			if tt.wantLines != nil {
				assert.Equal(t, tt.wantLines, lines)
			}

			var errLines []int
			for _, e := range errs {
				errLines = append(errLines, e.Line)
				assert.NotEmpty(t, e.Message)
			}
			assert.Equal(t, tt.wantErrs, errLines)
		})
	}
}

func TestCheckDensity_HitAfterMalformedRule(t *testing.T) {
	t.Parallel()

	sheet := Artifact{
		Path: "web/css/tools/demo.css",
		Text: ".c { content: \"unterminated\n}\n.e { padding: 48px; }\n",
	}
	got := CheckDensity(Artifact{Missing: true}, []Artifact{sheet}, Thresholds{MinHeightMax: 520, PaddingMax: 32})
	if assert.Len(t, got.Violations, 1) {
		assert.Equal(t, 3, got.Violations[0].Line)
		assert.Equal(t, "padding 48px exceeds 32px", got.Violations[0].Message)
	}
	assert.True(t, got.Hits[SignalPadding])
}
