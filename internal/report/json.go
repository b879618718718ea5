package report

import (
	"encoding/json"
	"fmt"

	"github.com/toolnexus/toolguard/internal/scan"
	"github.com/toolnexus/toolguard/internal/validation"
)

// jsonReport is the machine-readable sidecar for CI consumers.
type jsonReport struct {
	GlobalScore     float64                `json:"global_score"`
	Safety          validation.Verdict     `json:"architecture_safety"`
	TotalViolations int                    `json:"total_violations"`
	Entities        []scan.EntityResult    `json:"entities"`
	Violations      []validation.Violation `json:"violations"`
	ShellToTool     []validation.Violation `json:"shell_to_tool"`
	ShellSyntax     []validation.Violation `json:"shell_syntax"`
	ToolToShell     []validation.Violation `json:"tool_to_shell"`
	Checklist       []string               `json:"checklist"`
	ShellOwned      []string               `json:"shell_owned"`
	ToolOwned       []string               `json:"tool_owned"`
}

// RenderJSON produces the JSON sidecar report. Like Render it carries no
// timestamps.
func RenderJSON(res *scan.Result) ([]byte, error) {
	doc := jsonReport{
		GlobalScore:     res.GlobalScore,
		Safety:          res.Safety,
		TotalViolations: res.ViolationCount(),
		Entities:        res.Entities,
		Violations:      nonNil(res.Violations()),
		ShellToTool:     nonNil(res.ShellToTool),
		ShellSyntax:     nonNil(res.ShellSyntax),
		ToolToShell:     nonNil(res.ToolToShell()),
		Checklist:       Checklist,
		ShellOwned:      res.ShellOwned,
		ToolOwned:       res.ToolOwned,
	}
	if doc.Entities == nil {
		doc.Entities = []scan.EntityResult{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling json report: %w", err)
	}
	return append(data, '\n'), nil
}

func nonNil(vs []validation.Violation) []validation.Violation {
	if vs == nil {
		return []validation.Violation{}
	}
	return vs
}
