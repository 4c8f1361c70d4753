// Package span implements the three span generators (spec components
// C, D, E): AST-driven single-node and aligned-span masking, developer-
// behavior imitation spans, and random char-level splits.
package span

import (
	"math"
	"math/rand"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/crush-labs/fimgen/internal/langs"
	"github.com/crush-labs/fimgen/internal/model"
)

const minEligibleNodeBytes = 5

// astNode is a flattened view of a tree-sitter node carrying just what the
// span generators need, so the rest of this package never re-walks the
// tree with a live cursor.
type astNode struct {
	kind       string
	startByte  int
	endByte    int
	namedKids  []astNode
	allKids    []astNode
}

func (n astNode) width() int { return n.endByte - n.startByte }

// flattenTree materializes the whole tree into astNode values in one
// recursive pass over the live nodes; recursion depth equals AST depth.
func flattenTree(tree *tree_sitter.Tree) astNode {
	root := tree.RootNode()
	return flattenNode(root)
}

func flattenNode(n *tree_sitter.Node) astNode {
	out := astNode{
		kind:      n.Kind(),
		startByte: int(n.StartByte()),
		endByte:   int(n.EndByte()),
	}
	childCount := int(n.ChildCount())
	out.allKids = make([]astNode, 0, childCount)
	for i := 0; i < childCount; i++ {
		c := n.Child(uint(i))
		if c == nil {
			continue
		}
		child := flattenNode(c)
		out.allKids = append(out.allKids, child)
		if c.IsNamed() {
			out.namedKids = append(out.namedKids, child)
		}
	}
	return out
}

// GenerateASTSpans implements spec component C end to end: single-node
// masking plus aligned-span masking, against an already-parsed tree.
func GenerateASTSpans(tree *tree_sitter.Tree, source []byte, lang langs.Language, maxMiddleLines int, rng *rand.Rand) []model.CodeSpan {
	root := flattenTree(tree)

	target := targetSpanCount(len(source))
	singleCount := target / 2
	alignedCount := target - singleCount

	var spans []model.CodeSpan
	spans = append(spans, singleNodeSpans(root, source, lang, singleCount, rng)...)
	spans = append(spans, alignedSpans(root, source, lang, alignedCount, maxMiddleLines, rng)...)
	return spans
}

func targetSpanCount(sourceBytes int) int {
	t := sourceBytes / 500
	if t < 2 {
		return 2
	}
	return t
}

// singleNodeSpans implements spec §4.C step 3: collect every eligible
// named node, sample without replacement weighted by byte width, and name
// each survivor from its immediate children.
func singleNodeSpans(root astNode, source []byte, lang langs.Language, count int, rng *rand.Rand) []model.CodeSpan {
	eligible := lang.ASTEligibleTypes()
	var candidates []astNode
	collectEligible(root, eligible, &candidates)

	picked := weightedSampleWithoutReplacement(candidates, count, rng)

	nameType := lang.ASTNameNodeType()
	spans := make([]model.CodeSpan, 0, len(picked))
	for _, n := range picked {
		spans = append(spans, model.CodeSpan{
			Kind:    model.KindASTSingleNode,
			Locator: model.ByteRange{Start: n.startByte, End: n.endByte},
			Name:    nameFromChildren(n, nameType, source),
		})
	}
	return spans
}

func collectEligible(n astNode, eligible map[string]struct{}, out *[]astNode) {
	if _, ok := eligible[n.kind]; ok && n.width() > minEligibleNodeBytes {
		*out = append(*out, n)
	}
	for _, c := range n.namedKids {
		collectEligible(c, eligible, out)
	}
}

// nameFromChildren extracts a node's name by searching its immediate
// children for one of the language's name-node type and reading its
// source text (spec §4.C step 3).
func nameFromChildren(n astNode, nameType string, source []byte) string {
	if nameType == "" {
		return ""
	}
	for _, c := range n.allKids {
		if c.kind == nameType {
			return string(source[c.startByte:c.endByte])
		}
	}
	return ""
}

// weightedSampleWithoutReplacement draws up to k elements from items
// without replacement, with selection probability proportional to byte
// width, using the Efraimidis–Spirakis algorithm: each item gets a key
// u_i^(1/w_i) for u_i ~ Uniform(0,1), and the k largest keys are kept.
// This is a REDESIGN over the reference implementation's with-replacement
// random.choices, per spec.md's explicit "without replacement" text.
func weightedSampleWithoutReplacement(items []astNode, k int, rng *rand.Rand) []astNode {
	if k <= 0 || len(items) == 0 {
		return nil
	}
	if k >= len(items) {
		out := make([]astNode, len(items))
		copy(out, items)
		return out
	}

	type keyed struct {
		node astNode
		key  float64
	}
	keys := make([]keyed, len(items))
	for i, it := range items {
		w := float64(it.width())
		if w <= 0 {
			w = 1
		}
		u := rng.Float64()
		if u <= 0 {
			u = math.SmallestNonzeroFloat64
		}
		keys[i] = keyed{node: it, key: math.Pow(u, 1/w)}
	}

	// Partial selection sort for the top k keys — k is small relative to
	// a single file's node count, so this stays cheap without pulling in
	// a full sort for an already-small slice.
	for i := 0; i < k; i++ {
		maxIdx := i
		for j := i + 1; j < len(keys); j++ {
			if keys[j].key > keys[maxIdx].key {
				maxIdx = j
			}
		}
		keys[i], keys[maxIdx] = keys[maxIdx], keys[i]
	}

	out := make([]astNode, k)
	for i := 0; i < k; i++ {
		out[i] = keys[i].node
	}
	return out
}
