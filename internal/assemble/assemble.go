// Package assemble implements the Example Assembler (spec component H):
// turns a CodeSpan plus its source file into a FIMExample, enforcing the
// total-char budget and the byte-exact reconstruction invariant.
package assemble

import (
	"strings"
	"unicode/utf8"

	"github.com/crush-labs/fimgen/internal/model"
)

const (
	minMiddleCharsFilter = 40 // used only as a documentation anchor; real rule lives in internal/filter
	devMinWords          = 1
	otherMinWords         = 3
	minMiddleLines       = 1
	perSideByteCap       = 0 // computed from maxTotalChars/3 at call time
	perSideLineCap       = 80
	bm25QueryChars       = 2000
)

// Options configures a single file's assembly pass.
type Options struct {
	MaxTotalChars  int
	MaxMiddleLines int
}

// Assemble converts one CodeSpan over source into a FIMExample. Returns
// false if the span is rejected (empty middle, too few words, or the
// budget can't be satisfied even after truncation).
func Assemble(span model.CodeSpan, source string, opts Options) (model.FIMExample, bool) {
	switch loc := span.Locator.(type) {
	case model.ByteRange:
		return assembleByteOrChar(span, source, loc.Start, loc.End, byteSlicer(source), opts)
	case model.CharRange:
		runes := []rune(source)
		return assembleByteOrChar(span, string(runes), loc.Start, loc.End, runeSlicer(runes), opts)
	case model.LineRange:
		return assembleLines(span, source, loc, opts)
	default:
		return model.FIMExample{}, false
	}
}

type slicer func(start, end int) (prefix, middle, suffix string)

func byteSlicer(source string) slicer {
	return func(start, end int) (string, string, string) {
		return source[:start], source[start:end], source[end:]
	}
}

func runeSlicer(runes []rune) slicer {
	return func(start, end int) (string, string, string) {
		return string(runes[:start]), string(runes[start:end]), string(runes[end:])
	}
}

func assembleByteOrChar(span model.CodeSpan, full string, start, end int, slice slicer, opts Options) (model.FIMExample, bool) {
	prefix, middle, suffix := slice(start, end)

	if strings.TrimSpace(middle) == "" {
		return model.FIMExample{}, false
	}
	if wordCount(middle) < minWordsFor(span.Kind) {
		return model.FIMExample{}, false
	}

	perSide := opts.MaxTotalChars / 3
	prefix, suffix, ok := enforceBudget(prefix, middle, suffix, opts.MaxTotalChars, perSide)
	if !ok {
		return model.FIMExample{}, false
	}

	return model.FIMExample{
		ID:                 model.NewExampleID(),
		SpanKind:           span.Kind,
		SpanName:           span.Name,
		Prefix:             prefix,
		Middle:             middle,
		Suffix:             suffix,
		MiddleLines:        countLines(middle),
		SkipQualityFilters: span.SkipQualityFilters,
	}, true
}

func assembleLines(span model.CodeSpan, source string, loc model.LineRange, opts Options) (model.FIMExample, bool) {
	lines := strings.Split(source, "\n")
	if loc.Start < 0 || loc.End > len(lines) || loc.Start >= loc.End {
		return model.FIMExample{}, false
	}

	spanLines := loc.End - loc.Start
	if spanLines < minMiddleLines || spanLines > opts.MaxMiddleLines {
		return model.FIMExample{}, false
	}

	prefixLines := lines[:loc.Start]
	middleLines := lines[loc.Start:loc.End]
	suffixLines := lines[loc.End:]

	middle := strings.Join(middleLines, "\n")
	if strings.TrimSpace(middle) == "" {
		return model.FIMExample{}, false
	}
	if wordCount(middle) < otherMinWords {
		return model.FIMExample{}, false
	}

	var prefix, suffix string
	if len(prefixLines) > 0 {
		prefix = strings.Join(prefixLines, "\n") + "\n"
	}
	if len(suffixLines) > 0 {
		suffix = "\n" + strings.Join(suffixLines, "\n")
	}

	prefix, suffix, ok := enforceLineBudget(prefix, middle, suffix, opts.MaxTotalChars)
	if !ok {
		return model.FIMExample{}, false
	}

	return model.FIMExample{
		ID:                 model.NewExampleID(),
		SpanKind:           span.Kind,
		SpanName:           span.Name,
		Prefix:             prefix,
		Middle:             middle,
		Suffix:             suffix,
		MiddleLines:        spanLines,
		SkipQualityFilters: span.SkipQualityFilters,
	}, true
}

func minWordsFor(kind model.SpanKind) int {
	if kind.Category() == "dev" {
		return devMinWords
	}
	return otherMinWords
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// enforceBudget truncates prefix from the left and suffix from the right
// to at most capPerSide chars each when the combined length exceeds
// maxTotal, then rejects if still over budget.
func enforceBudget(prefix, middle, suffix string, maxTotal, capPerSide int) (string, string, bool) {
	if len(prefix)+len(middle)+len(suffix) <= maxTotal {
		return prefix, suffix, true
	}
	if capPerSide > 0 {
		if len(prefix) > capPerSide {
			prefix = truncateLeft(prefix, capPerSide)
		}
		if len(suffix) > capPerSide {
			suffix = truncateRight(suffix, capPerSide)
		}
	}
	if len(prefix)+len(middle)+len(suffix) > maxTotal {
		return "", "", false
	}
	return prefix, suffix, true
}

func enforceLineBudget(prefix, middle, suffix string, maxTotal int) (string, string, bool) {
	if len(prefix)+len(middle)+len(suffix) <= maxTotal {
		return prefix, suffix, true
	}
	prefix = truncateLeftLines(prefix, perSideLineCap)
	suffix = truncateRightLines(suffix, perSideLineCap)
	if len(prefix)+len(middle)+len(suffix) > maxTotal {
		return "", "", false
	}
	return prefix, suffix, true
}

// truncateLeft keeps the last n bytes of s, respecting UTF-8 boundaries.
func truncateLeft(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := len(s) - n
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}
	return s[cut:]
}

// truncateRight keeps the first n bytes of s, respecting UTF-8 boundaries.
func truncateRight(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func truncateLeftLines(s string, maxLines int) string {
	if s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= maxLines {
		return s
	}
	return strings.Join(lines[len(lines)-maxLines:], "\n")
}

func truncateRightLines(s string, maxLines int) string {
	if s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= maxLines {
		return s
	}
	return strings.Join(lines[:maxLines], "\n")
}

// BM25Query returns the first 2,000 chars of source, used as the
// once-per-file BM25 query.
func BM25Query(source string) string {
	runes := []rune(source)
	if len(runes) <= bm25QueryChars {
		return source
	}
	return string(runes[:bm25QueryChars])
}

// AttachContext assigns combined to example's CrossFileContext if doing so
// keeps the example within maxTotalChars; otherwise falls back to
// dependencyOnly. Returns the updated example.
func AttachContext(example model.FIMExample, combined, dependencyOnly string, maxTotalChars int) model.FIMExample {
	withCombined := len(example.Prefix) + len(example.Middle) + len(example.Suffix) + len(combined)
	if withCombined <= maxTotalChars {
		example.CrossFileContext = combined
		return example
	}
	example.CrossFileContext = dependencyOnly
	return example
}
