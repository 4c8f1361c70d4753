package langs

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

func newJavaScript() Language {
	eligible := stringSet(
		"expression_statement", "return_statement", "if_statement",
		"for_statement", "for_in_statement", "while_statement",
		"switch_statement", "try_statement", "function_declaration",
		"class_declaration", "variable_declaration", "assignment_expression",
		"call_expression", "new_expression", "arrow_function",
		"template_string", "ternary_expression", "spread_element",
		"jsx_element", "jsx_self_closing_element",
	)
	bracket := stringSet(
		"arguments", "formal_parameters", "array", "object",
		"parenthesized_expression", "subscript_expression",
		"template_substitution",
	)
	ident := stringSet("identifier", "property_identifier")

	return &Config{
		name:              "javascript",
		extensions:        []string{"js", "jsx", "mjs", "cjs"},
		commentPrefix:     "//",
		skipDirs:          withSkipDirs("coverage", ".next", ".nuxt"),
		skipPatterns:      mustCompileAll(`\.min\.js$`, `bundle\.js$`, `\.config\.js$`),
		isTestFile:        makeTestFileDetector("test", "spec", "__tests__"),
		hasTreeSitter:     true,
		treeSitterName:    "javascript",
		astEligibleTypes:  eligible,
		astBracketTypes:   bracket,
		astFunctionTypes:  stringSet("function_declaration", "method_definition", "arrow_function"),
		astIdentNodeTypes: ident,
		astNameNodeType:   "identifier",
		triggerTokens: []string{
			"if (", "else if (", "while (", "for (",
			"return ", "= ", "=>", "new ", "(", "[", "{",
			"const ", "let ", "var ",
		},
		docCommentOpeners: []string{"/**"},

		regexFuncPattern:   regexp.MustCompile(`^(\s*)(?:export\s+)?(?:async\s+)?function\s+(\w+)\s*\(`),
		regexBlockKeywords: regexp.MustCompile(`if|else\s*if|else|for|while|switch|try|catch`),

		extractImports:           jsExtractImports,
		extractRequireFiles:      func(string) map[string]struct{} { return map[string]struct{}{} },
		extractReferencedSymbols: extractCFamilyReferencedSymbols,
		extractSignature:         jsExtractSignature,
	}
}

func newTypeScript() Language {
	base := newJavaScript().(*Config)

	eligible := mergeSets(base.astEligibleTypes, stringSet(
		"type_alias_declaration", "interface_declaration",
		"enum_declaration", "type_assertion",
	))
	bracket := mergeSets(base.astBracketTypes, stringSet("type_arguments"))
	ident := mergeSets(base.astIdentNodeTypes, stringSet("type_identifier"))
	triggers := append(append([]string{}, base.triggerTokens...), "interface ", "type ")

	return &Config{
		name:              "typescript",
		extensions:        []string{"ts", "tsx", "mts", "cts"},
		commentPrefix:     "//",
		skipDirs:          base.skipDirs,
		skipPatterns:      mustCompileAll(`\.d\.ts$`, `\.min\.js$`),
		isTestFile:        base.isTestFile,
		hasTreeSitter:     true,
		treeSitterName:    "typescript",
		astEligibleTypes:  eligible,
		astBracketTypes:   bracket,
		astFunctionTypes:  base.astFunctionTypes,
		astIdentNodeTypes: ident,
		astNameNodeType:   "identifier",
		triggerTokens:     triggers,
		docCommentOpeners: []string{"/**"},

		regexFuncPattern:   base.regexFuncPattern,
		regexBlockKeywords: base.regexBlockKeywords,

		extractImports:           jsExtractImports,
		extractRequireFiles:      func(string) map[string]struct{} { return map[string]struct{}{} },
		extractReferencedSymbols: extractCFamilyReferencedSymbols,
		extractSignature:         jsExtractSignature,
	}
}

var reJSImport = regexp.MustCompile(`(?:import\s+.*?\s+from|require\s*\()\s*['"]([^'"]+)['"]`)

func jsExtractImports(source string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range reJSImport.FindAllStringSubmatch(source, -1) {
		raw := m[1]
		if strings.HasPrefix(raw, ".") {
			base := filepath.Base(raw)
			out[strings.TrimSuffix(base, filepath.Ext(base))] = struct{}{}
			continue
		}
		parts := strings.Split(raw, "/")
		out[parts[len(parts)-1]] = struct{}{}
	}
	return out
}

var (
	reJSExportDefault = regexp.MustCompile(`^export default|^export type |^export interface `)
	reJSFunc          = regexp.MustCompile(`^(?:export\s+)?(?:async\s+)?function\s+(\w+)\s*[(<]`)
	reJSTypeDecl      = regexp.MustCompile(`^(?:export\s+)?(?:class|interface|type|enum)\s+\w+`)
	reJSVarDecl       = regexp.MustCompile(`^(?:export\s+)?(?:const|let|var)\s+(\w+)\s*[:=]`)
)

func jsExtractSignature(source, filename string, referenced map[string]struct{}, maxLines int) string {
	lines := strings.Split(source, "\n")
	var sigLines []string
	var publicUnreferenced []int

	for _, line := range lines {
		stripped := strings.TrimSpace(line)

		if reJSExportDefault.MatchString(stripped) {
			sigLines = append(sigLines, line)
			continue
		}

		if m := reJSFunc.FindStringSubmatch(stripped); m != nil {
			fnName := m[1]
			_, refOK := referenced[fnName]
			isReferenced := referenced == nil || refOK
			if !isReferenced {
				publicUnreferenced = append(publicUnreferenced, len(sigLines))
			}
			sig := strings.TrimRight(line, " \t")
			if strings.Contains(sig, "{") {
				sig = sig[:strings.Index(sig, "{")] + "{ ... }"
			} else {
				sig += " { ... }"
			}
			sigLines = append(sigLines, sig)
			continue
		}

		if reJSTypeDecl.MatchString(stripped) {
			sigLines = append(sigLines, line)
			continue
		}

		if m := reJSVarDecl.FindStringSubmatch(stripped); m != nil {
			name := m[1]
			if referenced != nil {
				if _, ok := referenced[name]; !ok {
					continue
				}
			}
			sigLines = append(sigLines, strings.TrimRight(line, " \t"))
		}
	}

	if len(sigLines) == 0 {
		return ""
	}
	if len(sigLines) > maxLines {
		for i := len(publicUnreferenced) - 1; i >= 0 && len(sigLines) > maxLines; i-- {
			idx := publicUnreferenced[i]
			if idx < len(sigLines) {
				sigLines = append(sigLines[:idx], sigLines[idx+1:]...)
			}
		}
		if len(sigLines) > maxLines {
			sigLines = sigLines[:maxLines]
		}
	}
	return fmt.Sprintf("// --- %s ---\n%s", filepath.Base(filename), strings.Join(sigLines, "\n"))
}
