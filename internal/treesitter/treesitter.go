// Package treesitter wraps go-tree-sitter with a pooled, cached parser
// suitable for batch analysis of a source tree: one capacity-bounded pool
// of parsers shared by every language (the grammar is set on each parse),
// and an LRU of parsed trees
// keyed by content hash so repeated passes over the same file (span
// generation, then quality filtering) never re-parse.
package treesitter

import (
	"context"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Manager parses source content into tree-sitter trees for a fixed set of
// languages. It is safe for concurrent use; callers must Close() trees
// returned from Parse once finished with them.
type Manager interface {
	// Parse parses content as the named language and returns a cloned,
	// caller-owned tree, or nil with ErrUnsupportedLanguage if lang has
	// no registered grammar. path is used only as a cache-key component.
	Parse(ctx context.Context, lang string, path string, content []byte) (*tree_sitter.Tree, error)

	// SupportedLanguages returns the canonical language names this
	// manager can parse.
	SupportedLanguages() []string

	// SupportsLanguage reports whether lang has a registered grammar.
	SupportsLanguage(lang string) bool

	// Close releases pooled parsers and cached trees.
	Close() error
}

// ErrUnsupportedLanguage is returned by Parse for an unregistered language.
type ErrUnsupportedLanguage struct {
	Lang string
}

func (e *ErrUnsupportedLanguage) Error() string {
	return fmt.Sprintf("treesitter: unsupported language %q", e.Lang)
}
