package span

import (
	"math"
	"math/rand"
	"strings"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/crush-labs/fimgen/internal/langs"
	"github.com/crush-labs/fimgen/internal/model"
)

// GenerateDevSpans implements spec component D: the four developer-
// behavior sub-generators. tree may be nil when no parse is available —
// trigger-driven spans then stop at end-of-line instead of extending into
// the AST, and bracket/post-comment/doc-comment spans (which require a
// tree) are skipped entirely.
func GenerateDevSpans(tree *tree_sitter.Tree, source []byte, lang langs.Language, rng *rand.Rand) []model.CodeSpan {
	var spans []model.CodeSpan

	spans = append(spans, incompleteLineSpans(source, lang, rng)...)
	spans = append(spans, triggerDrivenSpans(tree, source, lang, rng)...)

	if tree != nil {
		root := flattenTree(tree)
		spans = append(spans, bracketContentSpans(root, source, lang, rng)...)
		spans = append(spans, postCommentSpans(root, source, rng)...)
		spans = append(spans, docCommentSpans(root, source, lang, rng)...)
	}

	return spans
}

type lineInfo struct {
	start, end int // byte offsets, end excludes the newline
}

func lineOffsets(source []byte) []lineInfo {
	var lines []lineInfo
	start := 0
	for i, b := range source {
		if b == '\n' {
			lines = append(lines, lineInfo{start: start, end: i})
			start = i + 1
		}
	}
	lines = append(lines, lineInfo{start: start, end: len(source)})
	return lines
}

func devSpanTarget(lineCount, divisor int) int {
	return int(math.Ceil(float64(lineCount) / float64(divisor)))
}

// sampleIndices returns up to target indices from candidates, chosen
// uniformly without replacement.
func sampleIndices(candidates []int, target int, rng *rand.Rand) []int {
	if target >= len(candidates) {
		return candidates
	}
	shuffled := make([]int, len(candidates))
	copy(shuffled, candidates)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:target]
}

func isCommentLine(trimmed, commentPrefix string) bool {
	if trimmed == "" {
		return true
	}
	if commentPrefix != "" && strings.HasPrefix(trimmed, commentPrefix) {
		return true
	}
	for _, p := range []string{"//", "/*", "*", "#"} {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

func incompleteLineSpans(source []byte, lang langs.Language, rng *rand.Rand) []model.CodeSpan {
	lines := lineOffsets(source)
	target := devSpanTarget(len(lines), 30)

	var eligible []int
	for i, li := range lines {
		text := string(source[li.start:li.end])
		trimmed := strings.TrimSpace(text)
		if len(trimmed) >= 10 && !isCommentLine(trimmed, lang.CommentPrefix()) {
			eligible = append(eligible, i)
		}
	}

	var spans []model.CodeSpan
	for _, idx := range sampleIndices(eligible, target, rng) {
		li := lines[idx]
		text := string(source[li.start:li.end])
		leading := len(text) - len(strings.TrimLeft(text, " \t"))
		trimmed := strings.TrimRight(text[leading:], " \t")
		if len(trimmed)-3 <= 0 {
			continue
		}
		cut := 3 + rng.Intn(len(trimmed)-3)
		middleStart := li.start + leading + cut
		middleEnd := li.end
		if middleEnd-middleStart < 3 {
			continue
		}
		spans = append(spans, model.CodeSpan{
			Kind:    model.KindDevIncomplete,
			Locator: model.ByteRange{Start: middleStart, End: middleEnd},
		})
	}
	return spans
}

func triggerDrivenSpans(tree *tree_sitter.Tree, source []byte, lang langs.Language, rng *rand.Rand) []model.CodeSpan {
	tokens := lang.TriggerTokens()
	if len(tokens) == 0 {
		return nil
	}

	lines := lineOffsets(source)
	target := devSpanTarget(len(lines), 30)

	var root astNode
	haveTree := tree != nil
	if haveTree {
		root = flattenTree(tree)
	}

	type hit struct {
		idx    int
		cutPos int
	}
	var hits []hit
	for i, li := range lines {
		text := string(source[li.start:li.end])
		best := -1
		bestTokLen := 0
		for _, tok := range tokens {
			if pos := strings.Index(text, tok); pos >= 0 && (best == -1 || pos < best) {
				best = pos
				bestTokLen = len(tok)
			}
		}
		if best >= 0 {
			hits = append(hits, hit{idx: i, cutPos: li.start + best + bestTokLen})
		}
	}

	hitIdxs := make([]int, len(hits))
	for i := range hits {
		hitIdxs[i] = i
	}

	var spans []model.CodeSpan
	for _, hi := range sampleIndices(hitIdxs, target, rng) {
		h := hits[hi]
		li := lines[h.idx]
		endByte := li.end

		if haveTree {
			if n, ok := deepestNodeContaining(root, h.cutPos); ok && n.endByte > endByte {
				endByte = n.endByte
			}
		}
		if endByte <= h.cutPos {
			continue
		}
		spans = append(spans, model.CodeSpan{
			Kind:    model.KindDevIncomplete,
			Locator: model.ByteRange{Start: h.cutPos, End: endByte},
		})
	}
	return spans
}

// deepestNodeContaining returns the deepest named node whose byte range
// contains pos.
func deepestNodeContaining(root astNode, pos int) (astNode, bool) {
	if root.startByte > pos || root.endByte <= pos {
		return astNode{}, false
	}
	current := root
	for {
		var next *astNode
		for i := range current.namedKids {
			c := &current.namedKids[i]
			if c.startByte <= pos && c.endByte > pos {
				next = c
				break
			}
		}
		if next == nil {
			return current, true
		}
		current = *next
	}
}

func bracketContentSpans(root astNode, source []byte, lang langs.Language, rng *rand.Rand) []model.CodeSpan {
	bracketTypes := lang.ASTBracketTypes()
	lines := lineOffsets(source)
	target := devSpanTarget(len(lines), 60)

	var candidates []astNode
	collectBracketNodes(root, bracketTypes, &candidates)

	picked := sampleNodes(candidates, target, rng)

	spans := make([]model.CodeSpan, 0, len(picked))
	for _, n := range picked {
		if len(n.allKids) < 2 {
			continue
		}
		first := n.allKids[0]
		last := n.allKids[len(n.allKids)-1]
		start := first.endByte
		end := last.startByte
		if end <= start {
			continue
		}
		spans = append(spans, model.CodeSpan{
			Kind:    model.KindDevBracket,
			Locator: model.ByteRange{Start: start, End: end},
		})
	}
	return spans
}

func collectBracketNodes(n astNode, bracketTypes map[string]struct{}, out *[]astNode) {
	if _, ok := bracketTypes[n.kind]; ok {
		w := n.width()
		if len(n.allKids) >= 2 && w > 3 && w < 2000 {
			*out = append(*out, n)
		}
	}
	for _, c := range n.namedKids {
		collectBracketNodes(c, bracketTypes, out)
	}
}

func sampleNodes(items []astNode, target int, rng *rand.Rand) []astNode {
	if target >= len(items) {
		return items
	}
	idxs := make([]int, len(items))
	for i := range items {
		idxs[i] = i
	}
	picked := sampleIndices(idxs, target, rng)
	out := make([]astNode, len(picked))
	for i, idx := range picked {
		out[i] = items[idx]
	}
	return out
}

func postCommentSpans(root astNode, source []byte, rng *rand.Rand) []model.CodeSpan {
	var spans []model.CodeSpan
	walkParents(root, func(parent astNode) {
		kids := parent.allKids
		for i := 0; i+1 < len(kids); i++ {
			c := kids[i]
			if c.kind != "comment" {
				continue
			}
			text := string(source[c.startByte:c.endByte])
			if !strings.HasPrefix(text, "//") && !strings.HasPrefix(text, "/*") {
				continue
			}
			next := kids[i+1]
			if next.kind == "comment" {
				continue
			}
			if next.width() <= 5 {
				continue
			}
			spans = append(spans, model.CodeSpan{
				Kind:    model.KindDevPostComment,
				Locator: model.ByteRange{Start: next.startByte, End: next.endByte},
			})
		}
	})
	return spans
}

// walkParents invokes fn once for every node in the tree that has
// children, passing that node (so callers can inspect its child list for
// sibling relationships).
func walkParents(n astNode, fn func(astNode)) {
	if len(n.allKids) > 0 {
		fn(n)
	}
	for _, c := range n.namedKids {
		walkParents(c, fn)
	}
}

func docCommentSpans(root astNode, source []byte, lang langs.Language, rng *rand.Rand) []model.CodeSpan {
	openers := lang.DocCommentOpeners()
	if len(openers) == 0 {
		return nil
	}
	functionTypes := lang.ASTFunctionTypes()

	var spans []model.CodeSpan
	walkParents(root, func(parent astNode) {
		kids := parent.allKids
		for i := 0; i+1 < len(kids); i++ {
			c := kids[i]
			if c.kind != "comment" {
				continue
			}
			text := string(source[c.startByte:c.endByte])
			if !startsWithOpener(text, openers) {
				continue
			}
			if !precedesFunctionNode(kids[i+1], functionTypes) {
				continue
			}

			startByte := docCommentStart(c, text, rng)
			endByte := c.endByte

			if endByte <= startByte {
				continue
			}
			spans = append(spans, model.CodeSpan{
				Kind:               model.KindDevDocComment,
				Locator:            byteRangeToCharRange(source, startByte, endByte),
				SkipQualityFilters: map[string]struct{}{"comment_only": {}},
			})
		}
	})
	return spans
}

func startsWithOpener(text string, openers []string) bool {
	for _, o := range openers {
		if strings.HasPrefix(text, o) {
			return true
		}
	}
	return false
}

func precedesFunctionNode(next astNode, functionTypes map[string]struct{}) bool {
	if _, ok := functionTypes[next.kind]; ok {
		return true
	}
	for _, c := range next.namedKids {
		if _, ok := functionTypes[c.kind]; ok {
			return true
		}
	}
	return false
}

// docCommentStart picks the start offset within a doc comment: just past
// its first line (case A), or 40% of the time when it contains an @-tag,
// the start of a randomly selected @-tag line (case B, "update doc").
func docCommentStart(c astNode, text string, rng *rand.Rand) int {
	if strings.Contains(text, "@") && rng.Float64() < 0.4 {
		var tagOffsets []int
		offset := 0
		for _, line := range strings.Split(text, "\n") {
			if strings.Contains(strings.TrimSpace(line), "@") {
				tagOffsets = append(tagOffsets, offset)
			}
			offset += len(line) + 1
		}
		if len(tagOffsets) > 0 {
			pick := tagOffsets[rng.Intn(len(tagOffsets))]
			return c.startByte + pick
		}
	}

	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		return c.startByte + nl + 1
	}
	return c.endByte
}

func byteRangeToCharRange(source []byte, startByte, endByte int) model.CharRange {
	startChar := utf8.RuneCount(source[:startByte])
	endChar := startChar + utf8.RuneCount(source[startByte:endByte])
	return model.CharRange{Start: startChar, End: endChar}
}
