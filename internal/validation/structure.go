package validation

import "fmt"

// CheckStructure verifies the required template markers and rejects shell
// anchors declared inside a tool template. An anchor fails layout as well as
// structure: ownership boundaries are structural, not cosmetic.
func CheckStructure(tpl Artifact) Outcome {
	var out Outcome
	if tpl.Missing {
		out.add(Violation{
			Path:     tpl.Path,
			Line:     1,
			Category: CategoryStructure,
			Message:  "template missing",
		}, CategoryStructure)
		return out
	}

	idx := indexTemplate(tpl.Text, templateMarkers()...)
	for _, m := range RequiredMarkers {
		if !idx.has(m) {
			out.add(Violation{
				Path:     tpl.Path,
				Line:     1,
				Category: CategoryStructure,
				Message:  fmt.Sprintf("missing %s", m),
			}, CategoryStructure)
		}
	}
	// One violation per anchor, located at its first occurrence.
	for _, anchor := range ShellAnchors {
		lines := idx.lines(anchor)
		if len(lines) == 0 {
			continue
		}
		out.add(Violation{
			Path:     tpl.Path,
			Line:     lines[0],
			Category: CategoryStructure,
			Message:  fmt.Sprintf("illegal shell anchor %s", anchor),
		}, CategoryStructure, CategoryLayout)
	}
	return out
}
