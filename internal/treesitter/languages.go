package treesitter

import (
	"path/filepath"
	"strings"
)

// extensionOverrides maps file extensions to their tree-sitter grammar
// language name, for extensions where the grammar name differs from the
// language name naively inferred from the extension.
var extensionOverrides = map[string]string{
	"jsx": "javascript", // JS grammar handles JSX natively
	"tsx": "typescript", // TS grammar handles TSX natively
	"cs":  "csharp",     // C# source files
}

// BaseExtensions maps extensions directly to their tree-sitter grammar name
// for the languages this build registers grammars for.
var BaseExtensions = map[string]string{
	"go":   "go",
	"py":   "python",
	"pyw":  "python",
	"pyx":  "python",
	"js":   "javascript",
	"mjs":  "javascript",
	"cjs":  "javascript",
	"ts":   "typescript",
	"mts":  "typescript",
	"cts":  "typescript",
	"rs":   "rust",
	"java": "java",
	"c":    "c",
	"h":    "c",
	"cpp":  "cpp",
	"cxx":  "cpp",
	"cc":   "cpp",
	"hpp":  "cpp",
	"hxx":  "cpp",
	"hh":   "cpp",
	"rb":   "ruby",
	"rake": "ruby",
	"php":  "php",
}

// MapExtension returns the tree-sitter language ID for a file extension.
// It checks extensionOverrides first, then falls back to BaseExtensions.
// The lookup is case-insensitive. Returns "" if the extension is unmapped.
func MapExtension(ext string) string {
	if ext == "" {
		return ""
	}

	ext = strings.TrimPrefix(ext, ".")
	ext = strings.ToLower(ext)

	if lang, ok := extensionOverrides[ext]; ok {
		return lang
	}
	if lang, ok := BaseExtensions[ext]; ok {
		return lang
	}
	return ""
}

// MapPath returns the tree-sitter language ID for a file path.
func MapPath(path string) string {
	return MapExtension(filepath.Ext(path))
}
