package validation

import (
	"fmt"
	"strings"
)

// CheckStylesheetPresence fails css-ownership for every stylesheet the
// manifest declared that does not exist. Convention-derived paths are
// optional and skipped.
func CheckStylesheetPresence(sheets []Artifact) Outcome {
	var out Outcome
	for _, sheet := range sheets {
		if sheet.Missing && sheet.Declared {
			out.add(Violation{
				Path:     sheet.Path,
				Line:     1,
				Category: CategoryCSSOwnership,
				Message:  "stylesheet missing",
			}, CategoryCSSOwnership)
		}
	}
	return out
}

// CheckToolStylesheets flags tool stylesheets whose selectors reach into
// shell anchors (tool -> shell leakage).
func CheckToolStylesheets(sheets []Artifact) Outcome {
	var out Outcome
	for _, sheet := range sheets {
		if sheet.Missing {
			continue
		}
		rules, _ := parseStylesheet(sheet.Text)
		for _, rule := range rules {
			anchors := rule.attributeAnchors()
			if len(anchors) == 0 {
				continue
			}
			out.add(Violation{
				Path:     sheet.Path,
				Line:     rule.Line,
				Category: CategoryCSSOwnership,
				Message:  fmt.Sprintf("selector `%s` touches shell anchors (%s)", rule.Selector, strings.Join(anchors, ", ")),
			}, CategoryCSSOwnership, CategoryLayout)
		}
	}
	return out
}

// CheckShellStylesheets runs once over the shell-owned stylesheets and flags
// selectors that target tool-local classes (shell -> tool leakage). The
// violations carry no entity; any hit fails layout platform-wide, which the
// caller applies to every entity.
func CheckShellStylesheets(sheets []Artifact) Outcome {
	var out Outcome
	for _, sheet := range sheets {
		if sheet.Missing {
			continue
		}
		rules, _ := parseStylesheet(sheet.Text)
		for _, rule := range rules {
			classes := rule.toolLocalClasses()
			if len(classes) == 0 {
				continue
			}
			out.add(Violation{
				Path:     sheet.Path,
				Line:     rule.Line,
				Category: CategoryLayout,
				Message:  fmt.Sprintf("shell CSS selector `%s` targets .tool-local-* internals", rule.Selector),
			}, CategoryLayout)
		}
	}
	return out
}

// CheckStylesheetSyntax reports every position the CSS tokenizer could not
// read. Parsing resumes after each one, but the skipped text was never
// checked, so each failure fails category: css-ownership for tool
// stylesheets, layout for shell stylesheets.
func CheckStylesheetSyntax(sheets []Artifact, category Category) Outcome {
	var out Outcome
	for _, sheet := range sheets {
		if sheet.Missing {
			continue
		}
		_, errs := parseStylesheet(sheet.Text)
		for _, e := range errs {
			out.add(Violation{
				Path:     sheet.Path,
				Line:     e.Line,
				Category: category,
				Message:  fmt.Sprintf("stylesheet could not be tokenized at line %d: %s", e.Line, e.Message),
			}, category)
		}
	}
	return out
}

// CheckNestedContainers flags redundant mount points declared by a template:
// any data-runtime-container and every tool-runtime-widget root after the
// first.
func CheckNestedContainers(tpl Artifact) Outcome {
	var out Outcome
	if tpl.Missing {
		return out
	}
	idx := indexTemplate(tpl.Text, MarkerRoot, MarkerRuntimeContainer)
	for _, line := range idx.lines(MarkerRuntimeContainer) {
		out.add(Violation{
			Path:     tpl.Path,
			Line:     line,
			Category: CategoryLayout,
			Message:  fmt.Sprintf("nested %s detected", MarkerRuntimeContainer),
		}, CategoryLayout)
	}
	roots := idx.lines(MarkerRoot)
	for i := 1; i < len(roots); i++ {
		out.add(Violation{
			Path:     tpl.Path,
			Line:     roots[i],
			Category: CategoryLayout,
			Message:  fmt.Sprintf("nested %s root (count: %d)", MarkerRoot, len(roots)),
		}, CategoryLayout)
	}
	return out
}
