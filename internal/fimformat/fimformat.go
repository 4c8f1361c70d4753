// Package fimformat implements the bit-exact per-model-family FIM token
// formatting described in spec §6: PREFIX_TOK · (cross_file_context +
// prefix) · SUFFIX_TOK · suffix · MIDDLE_TOK · middle · EOT_TOK.
package fimformat

import (
	"fmt"
	"strings"

	"github.com/crush-labs/fimgen/internal/model"
)

// Family identifies a base-model FIM token family.
type Family string

const (
	Qwen25Coder Family = "qwen2.5-coder"
	GraniteCode Family = "granite-code"
	CodeLlama   Family = "codellama"
	StarCoder   Family = "starcoder"
)

// tokens holds one family's four literals.
type tokens struct {
	prefix, suffix, middle, eot string
}

var families = map[Family]tokens{
	Qwen25Coder: {"<|fim_prefix|>", "<|fim_suffix|>", "<|fim_middle|>", "<|endoftext|>"},
	GraniteCode: {"<fim_prefix>", "<fim_suffix>", "<fim_middle>", "<|endoftext|>"},
	CodeLlama:   {"<PRE>", "<SUF>", "<MID>", "</s>"},
	StarCoder:   {"<fim_prefix>", "<fim_suffix>", "<fim_middle>", "<|endoftext|>"},
}

// Valid reports whether family names a supported base model.
func Valid(family Family) bool {
	_, ok := families[family]
	return ok
}

// Format returns the text field for ex under family, or an error if
// family is unrecognized (a config error per spec §7, fatal at startup).
func Format(ex model.FIMExample, family Family) (string, error) {
	tk, ok := families[family]
	if !ok {
		return "", fmt.Errorf("fimformat: unknown base model %q", family)
	}
	var b strings.Builder
	b.WriteString(tk.prefix)
	b.WriteString(ex.FullPrefix())
	b.WriteString(tk.suffix)
	b.WriteString(ex.Suffix)
	b.WriteString(tk.middle)
	b.WriteString(ex.Middle)
	b.WriteString(tk.eot)
	return b.String(), nil
}

// Parse is the right inverse of Format: given text produced by Format
// for family, it recovers (fullPrefix, middle, suffix). Used only by
// tests to assert the formatter round-trips.
func Parse(text string, family Family) (fullPrefix, middle, suffix string, ok bool) {
	tk, known := families[family]
	if !known {
		return "", "", "", false
	}
	if !strings.HasPrefix(text, tk.prefix) {
		return "", "", "", false
	}
	rest := text[len(tk.prefix):]

	suffixIdx := strings.Index(rest, tk.suffix)
	if suffixIdx < 0 {
		return "", "", "", false
	}
	fullPrefix = rest[:suffixIdx]
	rest = rest[suffixIdx+len(tk.suffix):]

	middleIdx := strings.Index(rest, tk.middle)
	if middleIdx < 0 {
		return "", "", "", false
	}
	suffix = rest[:middleIdx]
	rest = rest[middleIdx+len(tk.middle):]

	if !strings.HasSuffix(rest, tk.eot) {
		return "", "", "", false
	}
	middle = rest[:len(rest)-len(tk.eot)]

	return fullPrefix, middle, suffix, true
}
