package langs

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

func newC() Language {
	return &Config{
		name:          "c",
		extensions:    []string{"c", "h"},
		commentPrefix: "//",
		skipDirs:      withSkipDirs("cmake-build-debug", "cmake-build-release"),
		isTestFile:    makeTestFileDetector("test", "tests"),

		hasTreeSitter:  true,
		treeSitterName: "c",

		astEligibleTypes: stringSet(
			"expression_statement", "return_statement", "if_statement",
			"for_statement", "while_statement", "switch_statement",
			"function_definition", "declaration", "assignment_expression",
			"call_expression", "struct_specifier", "enum_specifier",
			"preproc_if", "preproc_ifdef", "compound_statement",
		),
		astBracketTypes: stringSet(
			"argument_list", "parameter_list", "initializer_list",
			"parenthesized_expression",
		),
		astFunctionTypes:  stringSet("function_definition"),
		astIdentNodeTypes: stringSet("identifier", "field_identifier", "type_identifier"),
		astNameNodeType:   "identifier",
		triggerTokens: []string{
			"if (", "else if (", "while (", "for (",
			"return ", "= ", "(", "[", "{",
			"sizeof(", "struct ",
		},
		docCommentOpeners: []string{"/**"},

		regexFuncPattern:   regexp.MustCompile(`^(\s*)(?:(?:static|inline|extern)\s+)*(?:\w+[\s*]+)+(\w+)\s*\(`),
		regexBlockKeywords: regexp.MustCompile(`if|else\s*if|else|for|while|switch`),

		extractImports:           cExtractImports,
		extractRequireFiles:      func(string) map[string]struct{} { return map[string]struct{}{} },
		extractReferencedSymbols: extractCFamilyReferencedSymbols,
		extractSignature:         cExtractSignature,
	}
}

func newCPP() Language {
	c := newC().(*Config)

	return &Config{
		name:          "cpp",
		extensions:    []string{"cpp", "cc", "cxx", "hpp", "hxx", "hh"},
		commentPrefix: "//",
		skipDirs:      c.skipDirs,
		isTestFile:    c.isTestFile,

		hasTreeSitter:  true,
		treeSitterName: "cpp",

		astEligibleTypes: mergeSets(c.astEligibleTypes, stringSet(
			"class_specifier", "template_declaration", "namespace_definition",
			"lambda_expression", "new_expression", "throw_statement",
			"try_statement",
		)),
		astBracketTypes:   mergeSets(c.astBracketTypes, stringSet("template_argument_list")),
		astFunctionTypes:  c.astFunctionTypes,
		astIdentNodeTypes: mergeSets(c.astIdentNodeTypes, stringSet("namespace_identifier")),
		astNameNodeType:   "identifier",
		triggerTokens:     append(append([]string{}, c.triggerTokens...), "new ", "std::", "auto ", "template<"),
		docCommentOpeners: []string{"/**"},

		regexFuncPattern:   c.regexFuncPattern,
		regexBlockKeywords: regexp.MustCompile(c.regexBlockKeywords.String() + `|try|catch`),

		extractImports:           cExtractImports,
		extractRequireFiles:      func(string) map[string]struct{} { return map[string]struct{}{} },
		extractReferencedSymbols: extractCFamilyReferencedSymbols,
		extractSignature:         cExtractSignature,
	}
}

var reCInclude = regexp.MustCompile(`#include\s*"([^"]+)"`)

func cExtractImports(source string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range reCInclude.FindAllStringSubmatch(source, -1) {
		base := filepath.Base(m[1])
		out[strings.TrimSuffix(base, filepath.Ext(base))] = struct{}{}
	}
	return out
}

var (
	reCDecl = regexp.MustCompile(`^(?:typedef\s+)?(?:struct|union|enum|class|namespace)\s+\w+`)
	reCFunc = regexp.MustCompile(`^(?:(?:static|inline|extern|virtual|const|unsigned|signed)\s+)*(?:\w+[\s*&]+)+(\w+)\s*\(`)
)

func cExtractSignature(source, filename string, referenced map[string]struct{}, maxLines int) string {
	lines := strings.Split(source, "\n")
	var sigLines []string

	for _, line := range lines {
		stripped := strings.TrimSpace(line)

		if reCDecl.MatchString(stripped) {
			sigLines = append(sigLines, line)
			continue
		}

		if m := reCFunc.FindStringSubmatch(stripped); m != nil {
			fnName := m[1]
			if referenced != nil {
				if _, ok := referenced[fnName]; !ok {
					continue
				}
			}
			sig := strings.TrimRight(line, " \t")
			switch {
			case strings.Contains(sig, "{"):
				sig = sig[:strings.Index(sig, "{")] + "{ ... }"
			case strings.HasSuffix(sig, ";"):
				// already a declaration
			default:
				sig += ";"
			}
			sigLines = append(sigLines, sig)
		}
	}

	if len(sigLines) == 0 {
		return ""
	}
	if len(sigLines) > maxLines {
		sigLines = sigLines[:maxLines]
	}
	return fmt.Sprintf("// --- %s ---\n%s", filepath.Base(filename), strings.Join(sigLines, "\n"))
}
