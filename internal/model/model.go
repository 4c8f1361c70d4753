// Package model holds the data types shared across the FIM pipeline:
// span locators, spans, and assembled training examples.
package model

import "github.com/google/uuid"

// Locator identifies the region of a source file a CodeSpan covers. Exactly
// one concrete type is ever stored in a CodeSpan.Locator field; callers
// switch on the dynamic type rather than consult sentinel fields.
type Locator interface {
	isLocator()
}

// ByteRange is a UTF-8 byte offset range into the raw source bytes. Start
// and End are offsets; End is exclusive.
type ByteRange struct {
	Start, End int
}

func (ByteRange) isLocator() {}

// LineRange is a 0-indexed line range; End is exclusive. Sole locator kind
// for the regex-fallback span kinds.
type LineRange struct {
	Start, End int
}

func (LineRange) isLocator() {}

// CharRange is a rune-offset range into the decoded (UTF-8 decoded to
// runes) source string; End is exclusive. Used by char_random spans and,
// after conversion, by doc-comment spans.
type CharRange struct {
	Start, End int
}

func (CharRange) isLocator() {}

// SpanKind enumerates the possible CodeSpan.Kind values.
type SpanKind string

const (
	KindASTSingleNode   SpanKind = "ast_single_node"
	KindASTAlignedSpan  SpanKind = "ast_aligned_span"
	KindDevIncomplete   SpanKind = "dev_incomplete_line"
	KindDevBracket      SpanKind = "dev_bracket_content"
	KindDevPostComment  SpanKind = "dev_post_comment"
	KindDevDocComment   SpanKind = "dev_doc_comment"
	KindCharRandom      SpanKind = "char_random"
	KindRegexFuncBody   SpanKind = "function_body"
	KindRegexExpression SpanKind = "expression"
	KindRegexBlock      SpanKind = "block"
	KindRegexLines      SpanKind = "lines"
)

// Category buckets a SpanKind into one of the three rebalancing categories.
func (k SpanKind) Category() string {
	switch {
	case len(k) >= 4 && k[:4] == "ast_":
		return "ast"
	case len(k) >= 4 && k[:4] == "dev_":
		return "dev"
	default:
		return "char"
	}
}

// CodeSpan is a candidate region of one source file chosen by a span
// generator as a potential training "middle".
type CodeSpan struct {
	Kind    SpanKind
	Locator Locator

	// Name is an optional symbol name, when the generator could extract one
	// (e.g. the function name for an ast_single_node span).
	Name string

	// SkipQualityFilters names quality-filter rules this span is exempt
	// from (e.g. doc-comment spans skip "comment_only").
	SkipQualityFilters map[string]struct{}
}

// SkipsFilter reports whether this span is exempt from the named quality
// filter rule.
func (s CodeSpan) SkipsFilter(name string) bool {
	if s.SkipQualityFilters == nil {
		return false
	}
	_, ok := s.SkipQualityFilters[name]
	return ok
}

// FIMExample is a fully assembled training record, built by the Example
// Assembler; the pipeline then sets CrossFileContext through
// assemble.AttachContext (a BM25+dependency concatenation when it fits the
// budget).
type FIMExample struct {
	// ID is a random UUID identifying this example within a run,
	// independent of its position in the (later shuffled, rebalanced)
	// examples slice. It differs between runs, even with the same seed.
	ID string

	FilePath string
	SpanKind SpanKind
	SpanName string

	Prefix string
	Middle string
	Suffix string

	// CrossFileContext is prepended to Prefix at emit time; it is not part
	// of the byte-exact reconstruction invariant.
	CrossFileContext string

	MiddleLines     int
	TotalLines      int
	ComplexityScore float64

	// SkipQualityFilters carries over the originating CodeSpan's filter
	// exemptions (e.g. doc-comment spans skip "comment_only").
	SkipQualityFilters map[string]struct{}
}

// SkipsFilter reports whether this example is exempt from the named
// quality-filter rule.
func (e FIMExample) SkipsFilter(name string) bool {
	if e.SkipQualityFilters == nil {
		return false
	}
	_, ok := e.SkipQualityFilters[name]
	return ok
}

// NewExampleID generates a fresh identifier for a FIMExample. The
// assembler calls it for every example it builds; it does not draw from
// the seeded random-number generators used elsewhere in the pipeline.
func NewExampleID() string {
	return uuid.NewString()
}

// FullPrefix returns the prefix as emitted in training records:
// CrossFileContext + Prefix, per the original reference implementation's
// to_training_format.
func (e FIMExample) FullPrefix() string {
	return e.CrossFileContext + e.Prefix
}

// Outcome wraps a value together with optional diagnostic detail, used by
// the Cross-File Context Builder and BM25 Retrieval in place of a
// shape-varying return: Debug is nil unless the caller asked for
// diagnostics, instead of a second return value that's sometimes a
// meaningful struct and sometimes nil.
type Outcome[T any] struct {
	Value T
	Debug *DebugInfo
}

// DebugInfo is the diagnostic record attached to an Outcome when debug
// mode is requested: the query/context that produced a value, and enough
// detail to explain why each candidate was or wasn't included.
type DebugInfo struct {
	QueryTokens       []string
	RelatedFiles      []string
	ReferencedSymbols []string
	Candidates        []DebugCandidate
	UsedChars         int
	MaxChars          int
}

// DebugCandidate records one scored/sized candidate considered while
// building a DebugInfo-bearing Outcome (a BM25 chunk or a related file's
// signature).
type DebugCandidate struct {
	Source   string
	Score    float64
	Size     int
	Included bool
}
