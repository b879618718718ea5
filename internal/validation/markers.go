package validation

import "strings"

// Template markers every tool template must declare.
const (
	MarkerRoot   = "tool-runtime-widget"
	MarkerHeader = "tool-local-header"
	MarkerBody   = "tool-local-body"
)

// MarkerStatus is the tool-local status indicator. More than one per template
// counts as density bloat.
const MarkerStatus = "tool-local-status"

// MarkerRuntimeContainer is the mount point the runtime injects. A tool that
// declares its own is creating a second, redundant mount.
const MarkerRuntimeContainer = "data-runtime-container"

// ToolLocalClassPrefix prefixes every class owned by a tool.
const ToolLocalClassPrefix = "tool-local-"

// ShellAnchors are reserved for the shell layer. Tool templates must not
// declare them and tool stylesheets must not select them.
var ShellAnchors = []string{
	"data-tool-shell",
	"data-tool-context",
	"data-tool-status",
	"data-tool-followup",
	"data-tool-input",
	"data-tool-output",
}

// RequiredMarkers are checked for presence, in this order.
var RequiredMarkers = []string{MarkerRoot, MarkerHeader, MarkerBody}

// isTokenChar reports whether c can continue a class or attribute name.
func isTokenChar(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// tokenOffsets returns the byte offsets of every whole-token occurrence of
// marker in text. "tool-local-header" does not match inside
// "tool-local-header-title".
func tokenOffsets(text, marker string) []int {
	var offsets []int
	if marker == "" {
		return offsets
	}
	from := 0
	for {
		i := strings.Index(text[from:], marker)
		if i < 0 {
			return offsets
		}
		start := from + i
		end := start + len(marker)
		before := start == 0 || !isTokenChar(text[start-1])
		after := end == len(text) || !isTokenChar(text[end])
		if before && after {
			offsets = append(offsets, start)
		}
		from = start + 1
	}
}

// lineAt translates a byte offset into a 1-based line number.
func lineAt(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	return strings.Count(text[:offset], "\n") + 1
}
