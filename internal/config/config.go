// Package config implements the Config & CLI component (spec component
// N): a flag-struct configuration value with CLI > YAML > default
// precedence, mirroring the teacher's Options-struct-with-
// DefaultXOptions pattern rather than a Viper-style live-merged config.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BaseModel enumerates the supported FIM token families.
type BaseModel string

const (
	ModelQwen25Coder BaseModel = "qwen2.5-coder"
	ModelGraniteCode BaseModel = "granite-code"
	ModelCodeLlama   BaseModel = "codellama"
	ModelStarCoder   BaseModel = "starcoder"
)

var validBaseModels = map[BaseModel]struct{}{
	ModelQwen25Coder: {},
	ModelGraniteCode: {},
	ModelCodeLlama:   {},
	ModelStarCoder:   {},
}

// Options is the fully resolved run configuration: CLI flags override
// YAML fields, which override these defaults.
type Options struct {
	ProjectRoot string    `yaml:"project_root"`
	Output      string    `yaml:"output"`
	Language    string    `yaml:"language"`
	BaseModel   BaseModel `yaml:"base_model"`

	CrossFileContext bool     `yaml:"cross_file_context"`
	IncludePaths     []string `yaml:"include_paths"`
	TestedOnly       bool     `yaml:"tested_only"`
	ExcludeGlobs     []string `yaml:"exclude_globs"`

	MaxMiddleLines int `yaml:"max_middle_lines"`
	MaxTotalChars  int `yaml:"max_total_chars"`

	ValSplit float64 `yaml:"val_split"`
	Seed     int64   `yaml:"seed"`
	Preview  int     `yaml:"preview"`

	ASTFIM           bool    `yaml:"ast_fim"`
	BM25Context      bool    `yaml:"bm25_context"`
	Curriculum       bool    `yaml:"curriculum"`
	CurriculumTopPct float64 `yaml:"curriculum_top_pct"`
	QualityFilter    bool    `yaml:"quality_filter"`
}

// DefaultOptions returns an Options value with every field set to its
// spec-mandated default.
func DefaultOptions() Options {
	return Options{
		Output:           "dataset/",
		Language:         "php",
		BaseModel:        ModelQwen25Coder,
		MaxMiddleLines:   30,
		MaxTotalChars:    8192,
		ValSplit:         0.1,
		Seed:             42,
		ASTFIM:           true,
		QualityFilter:    true,
		CurriculumTopPct: 100,
	}
}

// LoadYAML reads a YAML config file and merges its non-zero fields onto
// base, returning the merged Options. A missing or unreadable path is an
// error, so callers only call this when --config was supplied.
func LoadYAML(path string, base Options) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("config: read %s: %w", path, err)
	}

	var fromFile Options
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return base, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return mergeNonZero(base, fromFile), nil
}

func mergeNonZero(base, override Options) Options {
	merged := base
	if override.ProjectRoot != "" {
		merged.ProjectRoot = override.ProjectRoot
	}
	if override.Output != "" {
		merged.Output = override.Output
	}
	if override.Language != "" {
		merged.Language = override.Language
	}
	if override.BaseModel != "" {
		merged.BaseModel = override.BaseModel
	}
	if override.CrossFileContext {
		merged.CrossFileContext = true
	}
	if len(override.IncludePaths) > 0 {
		merged.IncludePaths = override.IncludePaths
	}
	if len(override.ExcludeGlobs) > 0 {
		merged.ExcludeGlobs = override.ExcludeGlobs
	}
	if override.TestedOnly {
		merged.TestedOnly = true
	}
	if override.MaxMiddleLines != 0 {
		merged.MaxMiddleLines = override.MaxMiddleLines
	}
	if override.MaxTotalChars != 0 {
		merged.MaxTotalChars = override.MaxTotalChars
	}
	if override.ValSplit != 0 {
		merged.ValSplit = override.ValSplit
	}
	if override.Seed != 0 {
		merged.Seed = override.Seed
	}
	if override.Preview != 0 {
		merged.Preview = override.Preview
	}
	if override.ASTFIM {
		merged.ASTFIM = true
	}
	if override.BM25Context {
		merged.BM25Context = true
	}
	if override.Curriculum {
		merged.Curriculum = true
	}
	if override.CurriculumTopPct != 0 {
		merged.CurriculumTopPct = override.CurriculumTopPct
	}
	if override.QualityFilter {
		merged.QualityFilter = true
	}
	return merged
}

// Validate performs the fatal-at-startup Config error checks named in
// spec §7: unknown language, unknown base model.
func (o Options) Validate(knownLanguages map[string]struct{}) error {
	if _, ok := knownLanguages[o.Language]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLanguage, o.Language)
	}
	if _, ok := validBaseModels[o.BaseModel]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBaseModel, o.BaseModel)
	}
	if o.ProjectRoot == "" {
		return fmt.Errorf("config: project_root is required")
	}
	return nil
}
