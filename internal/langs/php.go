package langs

import (
	"path/filepath"
	"regexp"
	"strings"
)

func newPHP() Language {
	extractSignature := makeBraceSignatureExtractor(braceSignatureOptions{
		declKeywords: []string{
			"namespace ", "use ", "class ", "interface ", "trait ",
			"abstract class", "final class", "enum ",
		},
		funcPattern: regexp.MustCompile(
			`^\s*(?:(?:public|protected|private|static|abstract|final)\s+)*function\s+(\w+)\s*\(`,
		),
		commentHeader:  "//",
		memberPattern:  rePHPMember,
		privatePattern: regexp.MustCompile(`\bprivate\b`),
	})

	return &Config{
		name:          "php",
		extensions:    []string{"php"},
		commentPrefix: "//",
		skipDirs: withSkipDirs(
			"vendor", "cache", "storage", "public",
		),
		skipPatterns: mustCompileAll(
			`\.blade\.php$`, `\.min\.php$`, `config/.*\.php$`,
			`database/migrations`, `routes/.*\.php$`,
		),
		isTestFile: phpIsTestFile,

		hasTreeSitter:  true,
		treeSitterName: "php",

		astEligibleTypes: stringSet(
			"expression_statement", "return_statement", "if_statement",
			"for_statement", "foreach_statement", "while_statement",
			"switch_statement", "try_statement", "function_definition",
			"method_declaration", "class_declaration", "assignment_expression",
			"function_call_expression", "member_call_expression",
			"object_creation_expression", "array_creation_expression",
			"match_expression", "arrow_function", "anonymous_function",
			"compound_statement", "argument", "formal_parameters",
			"property_declaration", "const_declaration", "echo_statement",
			"throw_expression", "yield_expression", "binary_expression",
			"conditional_expression", "subscript_expression", "cast_expression",
		),
		astBracketTypes: stringSet(
			"arguments", "formal_parameters", "array_creation_expression",
			"parenthesized_expression", "subscript_expression",
		),
		astFunctionTypes:  stringSet("function_definition", "method_declaration"),
		astIdentNodeTypes: stringSet("name", "variable_name", "member_access_expression"),
		astNameNodeType:   "name",
		triggerTokens: []string{
			"if (", "elseif (", "while (", "for (", "foreach (",
			"return ", "= ", "=> ", "-> ", "::", "new ", "(", "[",
			"match (", "fn(",
		},
		docCommentOpeners: []string{"/**"},

		regexFuncPattern: regexp.MustCompile(
			`^(\s*)(?:(?:public|protected|private|static|abstract|final)\s+)*function\s+(\w+)\s*\(`,
		),
		regexBlockKeywords: regexp.MustCompile(`if|else\s*if|elseif|else|foreach|for|while|switch|try|catch`),

		extractImports:           phpExtractImports,
		extractRequireFiles:      phpExtractRequireFiles,
		extractReferencedSymbols: phpExtractReferencedSymbols,
		extractSignature:         extractSignature,
	}
}

func phpIsTestFile(relPath, filename string) bool {
	return strings.Contains(strings.ToLower(relPath), "test") || strings.Contains(filename, "Test")
}

var rePHPUse = regexp.MustCompile(`use\s+([\w\\]+?)(?:\s+as\s+\w+)?;`)

func phpExtractImports(source string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range rePHPUse.FindAllStringSubmatch(source, -1) {
		parts := strings.Split(m[1], `\`)
		out[parts[len(parts)-1]] = struct{}{}
	}
	return out
}

var rePHPRequire = regexp.MustCompile(`(?:require|include)(?:_once)?\s*\(?\s*['"]([^'"]+?)['"]\s*\)?`)

func phpExtractRequireFiles(source string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range rePHPRequire.FindAllStringSubmatch(source, -1) {
		base := filepath.Base(m[1])
		out[strings.TrimSuffix(base, filepath.Ext(base))] = struct{}{}
	}
	return out
}

var (
	rePHPCall      = regexp.MustCompile(`(?:->|::)(\w+)\s*\(`)
	rePHPStaticRef = regexp.MustCompile(`::(\w+)`)
	rePHPTypeRef   = regexp.MustCompile(`(?:extends|implements|new|instanceof)\s+(\w+)`)
	rePHPAnyCall   = regexp.MustCompile(`\b(\w+)\s*\(`)
)

func phpExtractReferencedSymbols(source string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, re := range []*regexp.Regexp{rePHPCall, rePHPStaticRef, rePHPTypeRef, rePHPAnyCall} {
		for _, m := range re.FindAllStringSubmatch(source, -1) {
			out[m[1]] = struct{}{}
		}
	}
	return out
}

// rePHPMember matches a property or class-constant declaration line;
// memberName (shared.go) pulls the $prop or CONST identifier back out of
// the match for referenced-symbol filtering.
var rePHPMember = regexp.MustCompile(`^(?:(?:public|protected|private|static)\s+)*(?:const |(?:\?\w+|\w+) \$)`)
