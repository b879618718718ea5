package validation

import (
	"strconv"
	"strings"

	"github.com/gorilla/css/scanner"
)

// cssDeclaration is one "property: value" pair inside a rule block.
type cssDeclaration struct {
	Property string
	Values   []*scanner.Token
	Line     int
}

// cssRule is one block in document order. Blocks nested inside at-rules
// (@media, @supports) are separate rules.
type cssRule struct {
	Selector     string
	Line         int
	AtRule       bool
	selector     []*scanner.Token
	Declarations []cssDeclaration
}

// cssError is a position the tokenizer could not get past.
type cssError struct {
	Line    int
	Message string
}

// cssNewlines mirrors the scanner's input preprocessing so byte offsets into
// the normalized text line up with the tokens it returns.
var cssNewlines = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\f", "\n", "\u0000", "\ufffd")

// parseStylesheet builds a flat rule list from gorilla/css tokens. Comments
// are dropped. The scanner stops for good at its first error, so parsing
// records the error, discards the broken declaration, skips to the next ";"
// or "}" and resumes with a fresh scanner on the rest of the text.
func parseStylesheet(text string) ([]*cssRule, []cssError) {
	var (
		rules   []*cssRule
		errs    []cssError
		stack   []*cssRule
		pending []*scanner.Token
	)

	flushDeclaration := func() {
		if len(stack) > 0 {
			if d, ok := parseDeclaration(pending); ok {
				top := stack[len(stack)-1]
				top.Declarations = append(top.Declarations, d)
			}
		}
		pending = pending[:0]
	}
	closeBlock := func() {
		flushDeclaration()
		if len(stack) > 0 {
			stack = stack[:len(stack)-1]
		}
	}

	text = cssNewlines.Replace(text)
	start := 0
	for start < len(text) {
		lineBase := strings.Count(text[:start], "\n")
		consumed := start
		s := scanner.New(text[start:])
		start = len(text)
	scan:
		for {
			tok := s.Next()
			switch tok.Type {
			case scanner.TokenEOF:
				break scan
			case scanner.TokenError:
				errs = append(errs, cssError{Line: tok.Line + lineBase, Message: tok.Value})
				stop := strings.IndexAny(text[consumed:], ";}")
				if stop < 0 {
					break scan
				}
				stop += consumed
				pending = pending[:0]
				if text[stop] == '}' {
					closeBlock()
				}
				start = stop + 1
				break scan
			}
			consumed += len(tok.Value)
			tok.Line += lineBase
			if tok.Type == scanner.TokenComment {
				continue
			}
			if tok.Type == scanner.TokenChar {
				switch tok.Value {
				case "{":
					rule := newRule(pending)
					rules = append(rules, rule)
					stack = append(stack, rule)
					pending = pending[:0]
					continue
				case "}":
					closeBlock()
					continue
				case ";":
					flushDeclaration()
					continue
				}
			}
			pending = append(pending, tok)
		}
	}
	return rules, errs
}

func newRule(prelude []*scanner.Token) *cssRule {
	toks := trimSpace(prelude)
	rule := &cssRule{
		selector: append([]*scanner.Token(nil), toks...),
		Line:     1,
	}
	if len(toks) > 0 {
		rule.Line = toks[0].Line
		rule.AtRule = toks[0].Type == scanner.TokenAtKeyword
	}
	var sb strings.Builder
	for _, t := range toks {
		if t.Type == scanner.TokenS {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(t.Value)
	}
	rule.Selector = sb.String()
	return rule
}

func parseDeclaration(toks []*scanner.Token) (cssDeclaration, bool) {
	var nonSpace []*scanner.Token
	for _, t := range toks {
		if t.Type != scanner.TokenS {
			nonSpace = append(nonSpace, t)
		}
	}
	if len(nonSpace) < 2 || nonSpace[0].Type != scanner.TokenIdent {
		return cssDeclaration{}, false
	}
	if nonSpace[1].Type != scanner.TokenChar || nonSpace[1].Value != ":" {
		return cssDeclaration{}, false
	}
	return cssDeclaration{
		Property: strings.ToLower(nonSpace[0].Value),
		Values:   nonSpace[2:],
		Line:     nonSpace[0].Line,
	}, true
}

func trimSpace(toks []*scanner.Token) []*scanner.Token {
	start, end := 0, len(toks)
	for start < end && toks[start].Type == scanner.TokenS {
		start++
	}
	for end > start && toks[end-1].Type == scanner.TokenS {
		end--
	}
	return toks[start:end]
}

// attributeAnchors returns the shell anchors this rule's selector targets via
// attribute-selector syntax, e.g. [data-tool-status] or [data-tool-input="x"].
func (r *cssRule) attributeAnchors() []string {
	if r.AtRule {
		return nil
	}
	var found []string
	for i, t := range r.selector {
		if t.Type != scanner.TokenChar || t.Value != "[" {
			continue
		}
		for _, next := range r.selector[i+1:] {
			if next.Type == scanner.TokenS {
				continue
			}
			if next.Type == scanner.TokenIdent && isShellAnchor(next.Value) {
				found = append(found, strings.ToLower(next.Value))
			}
			break
		}
	}
	return found
}

// toolLocalClasses returns the tool-local classes this rule's selector
// targets, either as .tool-local-* class selectors or as class attribute
// selectors whose value mentions the prefix, e.g. [class*="tool-local-"].
func (r *cssRule) toolLocalClasses() []string {
	if r.AtRule {
		return nil
	}
	var found []string
	for i := 0; i+1 < len(r.selector); i++ {
		lead, name := r.selector[i], r.selector[i+1]
		if lead.Type != scanner.TokenChar {
			continue
		}
		switch lead.Value {
		case ".":
			if name.Type == scanner.TokenIdent && strings.HasPrefix(strings.ToLower(name.Value), ToolLocalClassPrefix) {
				found = append(found, name.Value)
			}
		case "[":
			if v := classAttributeValue(r.selector[i+1:]); strings.Contains(strings.ToLower(v), ToolLocalClassPrefix) {
				found = append(found, v)
			}
		}
	}
	return found
}

// classAttributeValue returns the unquoted value of a class attribute
// selector starting right after its "[", or "" for any other attribute.
func classAttributeValue(toks []*scanner.Token) string {
	isClass := false
	for _, t := range toks {
		switch {
		case t.Type == scanner.TokenS:
		case t.Type == scanner.TokenChar && t.Value == "]":
			return ""
		case !isClass:
			if t.Type != scanner.TokenIdent || !strings.EqualFold(t.Value, "class") {
				return ""
			}
			isClass = true
		case t.Type == scanner.TokenString:
			return strings.Trim(t.Value, `"'`)
		case t.Type == scanner.TokenIdent:
			return t.Value
		}
	}
	return ""
}

func isShellAnchor(name string) bool {
	name = strings.ToLower(name)
	for _, a := range ShellAnchors {
		if a == name {
			return true
		}
	}
	return false
}

// pixelValue parses a px or unitless length token. Other units (rem, vh, %)
// are not comparable with pixel thresholds and report ok=false.
func pixelValue(t *scanner.Token) (float64, bool) {
	switch t.Type {
	case scanner.TokenNumber:
		v, err := strconv.ParseFloat(t.Value, 64)
		return v, err == nil
	case scanner.TokenDimension:
		lower := strings.ToLower(t.Value)
		if !strings.HasSuffix(lower, "px") {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(lower, "px"), 64)
		return v, err == nil
	}
	return 0, false
}

func formatPixels(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
