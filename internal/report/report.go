// Package report renders a scan result into the validation report document.
//
// Rendering is deterministic: no timestamps, no absolute paths, entities in
// identifier order and violations in rule evaluation order. Re-running over an
// unchanged tree yields byte-identical output.
package report

import (
	"fmt"
	"strings"

	"github.com/toolnexus/toolguard/internal/scan"
	"github.com/toolnexus/toolguard/internal/validation"
)

// Title is the first line of the Markdown report.
const Title = "# TOOL PLATFORM VALIDATION REPORT"

// Checklist is the standing remediation policy. It is printed in full on
// every run, whether or not an item applies.
var Checklist = []string{
	"Remove shell anchors (data-tool-shell, data-tool-context, data-tool-status, data-tool-followup, data-tool-input, data-tool-output) from tool templates.",
	"Remove selectors targeting shell anchors from tool stylesheets.",
	"Remove .tool-local-* selectors from shell stylesheets (css/site.css, css/ui-system.css).",
	"Reduce oversized min-height and padding declarations to the density thresholds.",
	"Ensure every tool module exports an initializer, a null-guarded destroy and runTool.",
}

const (
	runtimeHealTemplate   = "Restore the runtime contract: export init (or create/mount), a destroy that checks its target before use, and runTool; bind to the template nodes instead of injecting a runtime container. Cause: %s."
	ownershipHealTemplate = "Restore the ownership boundary: shell anchors and shell layout stay in shell-owned files, .tool-local-* markup and styles stay in tool-owned files, and tool layout stays within density limits. Cause: %s."
)

// Heal returns the auto-heal explanation for a violation.
func Heal(v validation.Violation) string {
	if v.Category == validation.CategoryRuntime {
		return fmt.Sprintf(runtimeHealTemplate, v.Message)
	}
	return fmt.Sprintf(ownershipHealTemplate, v.Message)
}

// Render produces the Markdown report.
func Render(res *scan.Result) []byte {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line(Title)
	line("")
	line("## GLOBAL SCORE (0–100)")
	line("")
	line("**%.1f**", res.GlobalScore)
	line("")

	line("## PER TOOL RESULTS")
	line("")
	if len(res.Entities) == 0 {
		line("_No tool entities loaded._")
	} else {
		line("| Tool | Structure | Layout | Density | Runtime | CSS Ownership | Score |")
		line("|---|---|---|---|---|---|---|")
		for _, e := range res.Entities {
			v := e.Verdicts
			line("| %s | %s | %s | %s | %s | %s | %d |",
				cell(e.ID), v.Structure, v.Layout, v.Density, v.Runtime, v.CSSOwnership, e.Score)
		}
	}
	line("")

	all := res.Violations()
	line("## CRITICAL VIOLATIONS")
	line("")
	writeList(&b, all, func(v validation.Violation) string { return v.String() })
	line("")

	line("## REMEDIATION CHECKLIST")
	line("")
	for i, item := range Checklist {
		line("%d. %s", i+1, item)
	}
	line("")

	line("## AUTO-HEAL EXPLANATIONS")
	line("")
	writeList(&b, all, func(v validation.Violation) string {
		return fmt.Sprintf("%s [%s]: %s", v.Location(), v.Category, Heal(v))
	})
	line("")

	line("## ARCHITECTURE SAFETY RESULT")
	line("")
	line("%s", res.Safety)
	line("")

	line("## CSS OWNERSHIP MATRIX")
	line("")
	line("| Layer | Owned paths |")
	line("|---|---|")
	line("| Shell | %s |", codeList(res.ShellOwned))
	line("| Tool | %s |", codeList(res.ToolOwned))
	line("")
	line("### Shell → Tool leakage")
	line("")
	writeList(&b, res.ShellToTool, func(v validation.Violation) string { return v.String() })
	line("")
	line("### Tool → Shell leakage")
	line("")
	writeList(&b, res.ToolToShell(), func(v validation.Violation) string { return v.String() })

	return []byte(b.String())
}

func writeList(b *strings.Builder, vs []validation.Violation, format func(validation.Violation) string) {
	if len(vs) == 0 {
		b.WriteString("- None\n")
		return
	}
	for _, v := range vs {
		b.WriteString("- ")
		b.WriteString(format(v))
		b.WriteByte('\n')
	}
}

func codeList(paths []string) string {
	if len(paths) == 0 {
		return "none"
	}
	quoted := make([]string, len(paths))
	for i, p := range paths {
		quoted[i] = "`" + p + "`"
	}
	return strings.Join(quoted, ", ")
}

// cell escapes a value for a Markdown table cell.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
