package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	require.Equal(t, "php", o.Language)
	require.Equal(t, ModelQwen25Coder, o.BaseModel)
	require.Equal(t, 30, o.MaxMiddleLines)
	require.Equal(t, 8192, o.MaxTotalChars)
	require.InDelta(t, 0.1, o.ValSplit, 1e-9)
	require.EqualValues(t, 42, o.Seed)
}

func TestValidateRejectsUnknownLanguage(t *testing.T) {
	o := DefaultOptions()
	o.ProjectRoot = "."
	o.Language = "cobol"
	err := o.Validate(map[string]struct{}{"php": {}, "go": {}})
	require.ErrorIs(t, err, ErrUnknownLanguage)
}

func TestValidateRejectsUnknownBaseModel(t *testing.T) {
	o := DefaultOptions()
	o.ProjectRoot = "."
	o.BaseModel = BaseModel("gpt-5")
	err := o.Validate(map[string]struct{}{"php": {}})
	require.ErrorIs(t, err, ErrUnknownBaseModel)
}

func TestValidateRequiresProjectRoot(t *testing.T) {
	o := DefaultOptions()
	err := o.Validate(map[string]struct{}{"php": {}})
	require.Error(t, err)
}

func TestValidateAcceptsDefaults(t *testing.T) {
	o := DefaultOptions()
	o.ProjectRoot = "."
	err := o.Validate(map[string]struct{}{"php": {}})
	require.NoError(t, err)
}

func TestLoadYAMLOverridesCLIDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "language: go\nmax_total_chars: 4096\nseed: 7\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	merged, err := LoadYAML(path, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "go", merged.Language)
	require.Equal(t, 4096, merged.MaxTotalChars)
	require.EqualValues(t, 7, merged.Seed)
	require.Equal(t, 30, merged.MaxMiddleLines, "unset YAML fields keep the base value")
}

func TestLoadYAMLErrorsOnMissingFile(t *testing.T) {
	_, err := LoadYAML("/nonexistent/config.yaml", DefaultOptions())
	require.Error(t, err)
}
