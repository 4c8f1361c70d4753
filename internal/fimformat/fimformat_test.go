package fimformat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crush-labs/fimgen/internal/model"
)

func TestFormatQwen25Coder(t *testing.T) {
	ex := model.FIMExample{Prefix: "P", Middle: "M", Suffix: "S"}
	text, err := Format(ex, Qwen25Coder)
	require.NoError(t, err)
	require.Equal(t, "<|fim_prefix|>P<|fim_suffix|>S<|fim_middle|>M<|endoftext|>", text)
}

func TestFormatCodeLlama(t *testing.T) {
	ex := model.FIMExample{Prefix: "P", Middle: "M", Suffix: "S"}
	text, err := Format(ex, CodeLlama)
	require.NoError(t, err)
	require.Equal(t, "<PRE>P<SUF>S<MID>M</s>", text)
}

func TestFormatIncludesCrossFileContextInPrefix(t *testing.T) {
	ex := model.FIMExample{CrossFileContext: "// ctx\n", Prefix: "P", Middle: "M", Suffix: "S"}
	text, err := Format(ex, GraniteCode)
	require.NoError(t, err)
	require.Equal(t, "<fim_prefix>// ctx\nP<fim_suffix>S<fim_middle>M<|endoftext|>", text)
}

func TestFormatRejectsUnknownFamily(t *testing.T) {
	_, err := Format(model.FIMExample{}, Family("unknown"))
	require.Error(t, err)
}

func TestParseIsRightInverseOfFormat(t *testing.T) {
	for _, family := range []Family{Qwen25Coder, GraniteCode, CodeLlama, StarCoder} {
		ex := model.FIMExample{CrossFileContext: "ctx-", Prefix: "prefix body", Middle: "middle body", Suffix: "suffix body"}
		text, err := Format(ex, family)
		require.NoError(t, err)

		fullPrefix, middle, suffix, ok := Parse(text, family)
		require.True(t, ok, "family %s", family)
		require.Equal(t, ex.FullPrefix(), fullPrefix)
		require.Equal(t, ex.Middle, middle)
		require.Equal(t, ex.Suffix, suffix)
	}
}

func TestValid(t *testing.T) {
	require.True(t, Valid(Qwen25Coder))
	require.False(t, Valid(Family("gpt-nonexistent")))
}
