package span

import (
	"math/rand"

	"github.com/crush-labs/fimgen/internal/langs"
	"github.com/crush-labs/fimgen/internal/model"
)

// alignedSpans implements spec §4.C step 4: IoU-snapped spans against a
// random byte window, subject to the single-function-type constraint.
func alignedSpans(root astNode, source []byte, lang langs.Language, count, maxMiddleLines int, rng *rand.Rand) []model.CodeSpan {
	if count <= 0 {
		return nil
	}
	functionTypes := lang.ASTFunctionTypes()

	srcLen := len(source)
	maxWidth := srcLen / 4
	if maxWidth < 21 {
		maxWidth = 21
	}

	spans := make([]model.CodeSpan, 0, count)
	for i := 0; i < count; i++ {
		s0, e0, ok := randomByteWindow(srcLen, maxWidth, rng)
		if !ok {
			continue
		}

		lca, ok := findLCA(root, s0, e0)
		if !ok {
			continue
		}

		startIdx, endIdx, ok := bestIoUSubrange(lca.namedKids, s0, e0, functionTypes)
		if !ok {
			continue
		}

		selStart := lca.namedKids[startIdx].startByte
		selEnd := lca.namedKids[endIdx].endByte

		endIdx = trimTrailingComments(lca.namedKids, startIdx, endIdx)
		selEnd = lca.namedKids[endIdx].endByte

		width := selEnd - selStart
		if width < minEligibleNodeBytes || width > srcLen/2 {
			continue
		}
		if maxMiddleLines > 0 && lineSpan(source, selStart, selEnd) > maxMiddleLines {
			continue
		}

		spans = append(spans, model.CodeSpan{
			Kind:    model.KindASTAlignedSpan,
			Locator: model.ByteRange{Start: selStart, End: selEnd},
		})
	}
	return spans
}

func randomByteWindow(srcLen, maxWidth int, rng *rand.Rand) (int, int, bool) {
	if srcLen < 22 {
		return 0, 0, false
	}
	width := 20
	if maxWidth > 20 {
		width += rng.Intn(maxWidth - 19)
	}
	if width >= srcLen {
		width = srcLen - 1
	}

	upper := srcLen - width
	if upper <= 1 {
		return 0, 0, false
	}
	s0 := 1 + rng.Intn(upper-1)
	e0 := s0 + width
	if e0 > srcLen {
		e0 = srcLen
	}
	return s0, e0, true
}

// findLCA descends from root into the deepest named node whose byte range
// fully contains [s0, e0).
func findLCA(root astNode, s0, e0 int) (astNode, bool) {
	if root.startByte > s0 || root.endByte < e0 {
		return astNode{}, false
	}
	current := root
	for {
		var next *astNode
		for i := range current.namedKids {
			c := &current.namedKids[i]
			if c.startByte <= s0 && c.endByte >= e0 {
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

// bestIoUSubrange finds the contiguous child subrange [i, j] maximizing
// intersection-over-union with [s0, e0), cutting j off the first time
// the running count of ast_function_types children exceeds one.
func bestIoUSubrange(children []astNode, s0, e0 int, functionTypes map[string]struct{}) (int, int, bool) {
	n := len(children)
	if n == 0 {
		return 0, 0, false
	}

	bestIoU := -1.0
	bestI, bestJ := 0, 0
	found := false

	for i := 0; i < n; i++ {
		funcCount := 0
		for j := i; j < n; j++ {
			if _, ok := functionTypes[children[j].kind]; ok {
				funcCount++
			}
			if funcCount > 1 {
				break
			}

			iou := intersectionOverUnion(children[i].startByte, children[j].endByte, s0, e0)
			if iou > bestIoU {
				bestIoU = iou
				bestI, bestJ = i, j
				found = true
			}
		}
	}

	return bestI, bestJ, found
}

func intersectionOverUnion(aStart, aEnd, bStart, bEnd int) float64 {
	interStart := max(aStart, bStart)
	interEnd := min(aEnd, bEnd)
	inter := interEnd - interStart
	if inter < 0 {
		inter = 0
	}

	union := (aEnd - aStart) + (bEnd - bStart) - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// trimTrailingComments walks endIdx backward past any trailing comment
// children, never crossing startIdx.
func trimTrailingComments(children []astNode, startIdx, endIdx int) int {
	for endIdx > startIdx && children[endIdx].kind == "comment" {
		endIdx--
	}
	return endIdx
}

func lineSpan(source []byte, startByte, endByte int) int {
	lines := 0
	for i := startByte; i < endByte && i < len(source); i++ {
		if source[i] == '\n' {
			lines++
		}
	}
	return lines + 1
}
