// Package validation_test tests whole-token marker matching and line lookup.
// Related: internal/validation/markers.go
// Tags: validation, markers, tokens
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenOffsets(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		text   string
		marker string
		want   []int
	}{
		"single match":           {text: `class="tool-local-body"`, marker: "tool-local-body", want: []int{7}},
		"longer token excluded":  {text: `tool-local-body-inner`, marker: "tool-local-body"},
		"prefix token excluded":  {text: `x-tool-local-body`, marker: "tool-local-body"},
		"multiple matches":       {text: `a a`, marker: "a", want: []int{0, 2}},
		"attribute with value":   {text: `data-tool-input="x"`, marker: "data-tool-input", want: []int{0}},
		"empty marker":           {text: "abc", marker: ""},
		"underscore is in-token": {text: `a_b`, marker: "a"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tokenOffsets(tt.text, tt.marker))
		})
	}
}

func TestLineAt(t *testing.T) {
	t.Parallel()

	text := "a\nb\nc"
	assert.Equal(t, 1, lineAt(text, 0))
	assert.Equal(t, 2, lineAt(text, 2))
	assert.Equal(t, 3, lineAt(text, 4))
	assert.Equal(t, 3, lineAt(text, 99))
	assert.Equal(t, 1, lineAt(text, -5))
}
