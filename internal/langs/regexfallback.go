package langs

import (
	"math/rand"
	"regexp"
	"strings"

	"github.com/crush-labs/fimgen/internal/model"
)

// regexFallbackSpans extracts spans from source using only the language's
// configured regex patterns, for languages or files where tree-sitter
// parsing is unavailable or failed. rng drives the random contiguous-line
// sampling pass and must be caller-seeded for reproducibility.
func regexFallbackSpans(l Language, source string, rng *rand.Rand) []model.CodeSpan {
	var spans []model.CodeSpan

	if p := l.RegexFuncPattern(); p != nil {
		spans = append(spans, regexFunctionBodies(p, source)...)
	}

	spans = append(spans, regexMultilineExpressions(source)...)

	if kw := l.RegexBlockKeywords(); kw != nil {
		spans = append(spans, regexBlockBodies(kw, source)...)
	}

	spans = append(spans, regexRandomLines(source, rng)...)

	return spans
}

func regexFunctionBodies(pattern *regexp.Regexp, source string) []model.CodeSpan {
	pattern = regexp.MustCompile(`(?m)` + pattern.String())

	var spans []model.CodeSpan
	for _, m := range pattern.FindAllStringSubmatchIndex(source, -1) {
		matchEnd := m[1]
		name := ""
		if m[4] >= 0 {
			name = source[m[4]:m[5]]
		}

		bracePos := strings.Index(source[matchEnd:], "{")
		if bracePos == -1 {
			continue
		}
		bracePos += matchEnd

		endPos := braceEnd(source, bracePos)
		if endPos == -1 {
			continue
		}

		bodyStart := strings.Count(source[:bracePos], "\n") + 1
		bodyEnd := strings.Count(source[:endPos], "\n") - 1

		if bodyEnd > bodyStart+1 {
			spans = append(spans, model.CodeSpan{
				Kind:    model.KindRegexFuncBody,
				Locator: model.LineRange{Start: bodyStart, End: bodyEnd + 1},
				Name:    name,
			})
		}
	}
	return spans
}

var reMultilineExpr = regexp.MustCompile(`(?m)^(\s*)\S.*(?:\[|array\()\s*$`)

func regexMultilineExpressions(source string) []model.CodeSpan {
	var spans []model.CodeSpan
	for _, m := range reMultilineExpr.FindAllStringSubmatchIndex(source, -1) {
		startLine := strings.Count(source[:m[0]], "\n")

		depth := 1
		pos := m[1]
		for pos < len(source) && depth > 0 {
			switch source[pos] {
			case '[', '(', '{':
				depth++
			case ']', ')', '}':
				depth--
			}
			pos++
		}

		endLine := strings.Count(source[:pos], "\n")
		if endLine > startLine+2 {
			spans = append(spans, model.CodeSpan{
				Kind:    model.KindRegexExpression,
				Locator: model.LineRange{Start: startLine + 1, End: endLine},
			})
		}
	}
	return spans
}

func regexBlockBodies(keywords *regexp.Regexp, source string) []model.CodeSpan {
	pattern := regexp.MustCompile(`(?m)^(\s*)(?:` + keywords.String() + `)\s*(?:\(.*\))?\s*\{\s*$`)

	var spans []model.CodeSpan
	for _, m := range pattern.FindAllStringIndex(source, -1) {
		startLine := strings.Count(source[:m[0]], "\n")
		bracePos := m[1] - 1

		depth := 1
		pos := bracePos + 1
		for pos < len(source) && depth > 0 {
			switch source[pos] {
			case '{':
				depth++
			case '}':
				depth--
			}
			pos++
		}

		endLine := strings.Count(source[:pos], "\n")
		bodyStart := startLine + 1
		bodyEnd := endLine - 1

		if bodyEnd > bodyStart+1 {
			spans = append(spans, model.CodeSpan{
				Kind:    model.KindRegexBlock,
				Locator: model.LineRange{Start: bodyStart, End: bodyEnd + 1},
			})
		}
	}
	return spans
}

func regexRandomLines(source string, rng *rand.Rand) []model.CodeSpan {
	lines := strings.Split(source, "\n")
	if len(lines) <= 10 {
		return nil
	}

	var spans []model.CodeSpan
	count := len(lines) / 10
	maxSpan := min(8, len(lines)/4)
	if maxSpan < 2 {
		return nil
	}

	for i := 0; i < count; i++ {
		spanLen := 2 + rng.Intn(maxSpan-1)
		upper := len(lines) - spanLen - 2
		if upper < 2 {
			continue
		}
		start := 2 + rng.Intn(upper-1)

		skip := false
		for k := 0; k < spanLen; k++ {
			trimmed := strings.TrimSpace(lines[start+k])
			if strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "//") ||
				strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "#") {
				skip = true
				break
			}
		}
		if skip {
			continue
		}

		spans = append(spans, model.CodeSpan{
			Kind:    model.KindRegexLines,
			Locator: model.LineRange{Start: start, End: start + spanLen},
		})
	}
	return spans
}

// braceEnd returns the byte offset just past the brace matching the one
// at openPos, or -1 if unbalanced.
func braceEnd(source string, openPos int) int {
	depth := 1
	pos := openPos + 1
	for pos < len(source) && depth > 0 {
		switch source[pos] {
		case '{':
			depth++
		case '}':
			depth--
		}
		pos++
	}
	if depth != 0 {
		return -1
	}
	return pos
}
