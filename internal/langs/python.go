package langs

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

func newPython() Language {
	return &Config{
		name:          "python",
		extensions:    []string{"py", "pyw", "pyx"},
		commentPrefix: "#",
		skipDirs: withSkipDirs(
			"__pycache__", ".tox", ".mypy_cache", ".pytest_cache",
			"venv", ".venv", "env", ".eggs",
		),
		skipPatterns: mustCompileAll(`setup\.py$`, `conftest\.py$`),
		isTestFile:   makeTestFileDetector("test", "tests"),

		hasTreeSitter:  true,
		treeSitterName: "python",

		astEligibleTypes: stringSet(
			"expression_statement", "return_statement", "if_statement",
			"for_statement", "while_statement", "try_statement",
			"function_definition", "class_definition", "assignment",
			"augmented_assignment", "call", "with_statement",
			"assert_statement", "raise_statement", "yield",
			"list_comprehension", "dictionary_comprehension",
			"set_comprehension", "generator_expression",
			"conditional_expression", "lambda", "decorated_definition",
		),
		astBracketTypes: stringSet(
			"argument_list", "parameters", "list", "dictionary",
			"set", "tuple", "parenthesized_expression", "subscript",
		),
		astFunctionTypes:  stringSet("function_definition"),
		astIdentNodeTypes: stringSet("identifier"),
		astNameNodeType:   "identifier",
		triggerTokens: []string{
			"if ", "elif ", "while ", "for ", "return ",
			"= ", "def ", "class ", "with ", "import ",
			"(", "[", "{",
		},
		docCommentOpeners: []string{`"""`, `'''`},

		regexFuncPattern:   regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+(\w+)\s*\(`),
		regexBlockKeywords: nil,

		extractImports:           pythonExtractImports,
		extractRequireFiles:      func(string) map[string]struct{} { return map[string]struct{}{} },
		extractReferencedSymbols: extractCFamilyReferencedSymbols,
		extractSignature:         pythonExtractSignature,
	}
}

var (
	rePyFromImport = regexp.MustCompile(`(?m)^from\s+([\w.]+)\s+import\b`)
	rePyImport     = regexp.MustCompile(`(?m)^import\s+([\w.]+)`)
)

func pythonExtractImports(source string) map[string]struct{} {
	out := make(map[string]struct{})
	add := func(dotted string) {
		parts := strings.Split(dotted, ".")
		out[parts[len(parts)-1]] = struct{}{}
	}
	for _, m := range rePyFromImport.FindAllStringSubmatch(source, -1) {
		add(m[1])
	}
	for _, m := range rePyImport.FindAllStringSubmatch(source, -1) {
		add(m[1])
	}
	return out
}

var (
	rePyDef   = regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+(\w+)\s*\(`)
	rePyClass = regexp.MustCompile(`^class\s+\w+`)
	rePyField = regexp.MustCompile(`^\s+\w+\s*:\s*\w+`)
)

func pythonExtractSignature(source, filename string, referenced map[string]struct{}, maxLines int) string {
	lines := strings.Split(source, "\n")
	var sigLines []string
	var publicUnreferenced []int

	for _, line := range lines {
		stripped := strings.TrimSpace(line)

		if m := rePyDef.FindStringSubmatch(line); m != nil {
			fnName := m[2]
			isPrivate := strings.HasPrefix(fnName, "_")
			_, refOK := referenced[fnName]
			isReferenced := referenced == nil || refOK

			if isPrivate && !isReferenced {
				continue
			}
			if !isPrivate && !isReferenced {
				publicUnreferenced = append(publicUnreferenced, len(sigLines))
			}
			sigLines = append(sigLines, strings.TrimRight(line, " \t")+" ...")
			continue
		}

		if rePyClass.MatchString(stripped) {
			sigLines = append(sigLines, line)
			continue
		}
		if rePyField.MatchString(line) && !strings.HasPrefix(stripped, "#") {
			sigLines = append(sigLines, line)
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
	return fmt.Sprintf("# --- %s ---\n%s", filepath.Base(filename), strings.Join(sigLines, "\n"))
}
