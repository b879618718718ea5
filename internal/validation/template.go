package validation

import (
	"strings"

	"golang.org/x/net/html"
)

// templateIndex records where markers occur inside the tags of a template.
// Text nodes and comments are not indexed, so prose or commented-out markup
// never counts as a declaration.
type templateIndex struct {
	text string
	hits map[string][]int
}

// indexTemplate tokenizes text and collects whole-token offsets of each
// marker found in start or self-closing tags.
func indexTemplate(text string, markers ...string) templateIndex {
	idx := templateIndex{text: text, hits: make(map[string][]int, len(markers))}
	z := html.NewTokenizer(strings.NewReader(text))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return idx
		}
		raw := string(z.Raw())
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			for _, m := range markers {
				for _, o := range tokenOffsets(raw, m) {
					idx.hits[m] = append(idx.hits[m], offset+o)
				}
			}
		}
		offset += len(raw)
	}
}

func (t templateIndex) count(marker string) int {
	return len(t.hits[marker])
}

func (t templateIndex) has(marker string) bool {
	return t.count(marker) > 0
}

// lines returns the 1-based line of every occurrence of marker.
func (t templateIndex) lines(marker string) []int {
	offsets := t.hits[marker]
	lines := make([]int, len(offsets))
	for i, o := range offsets {
		lines[i] = lineAt(t.text, o)
	}
	return lines
}

// templateMarkers is every marker any template rule looks at.
func templateMarkers() []string {
	markers := make([]string, 0, len(RequiredMarkers)+len(ShellAnchors)+2)
	markers = append(markers, RequiredMarkers...)
	markers = append(markers, ShellAnchors...)
	return append(markers, MarkerStatus, MarkerRuntimeContainer)
}
