// Package discover implements the File Discovery component (spec
// component B): a skip-dir-pruning directory walk that hands the
// pipeline a language-filtered, test-file-aware list of source files.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/crush-labs/fimgen/internal/langs"
)

// File is a discovered source file: its absolute path plus the path
// relative to the walked root, used by skip-pattern and test-file
// matching and later carried through as the FIMExample filepath field.
type File struct {
	AbsPath string
	RelPath string
}

// Options configures a single Walk call.
type Options struct {
	TestedOnly bool

	// ExcludeGlobs are doublestar patterns (e.g. "**/vendor/**",
	// "**/*.generated.go") matched against the slash-separated relative
	// path; a match excludes the file in addition to the language's own
	// SkipPatterns.
	ExcludeGlobs []string
}

// Walk performs the depth-first traversal described in spec component B:
// prune skip_dirs, filter by extension, reject skip_patterns, and apply
// the language's test-file policy.
func Walk(root string, lang langs.Language, opts Options) ([]File, error) {
	skipDirs := lang.SkipDirs()
	skipPatterns := lang.SkipPatterns()
	extSet := extensionSet(lang)

	var sources []File
	testFiles := make(map[string]struct{})

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root {
				if _, skip := skipDirs[d.Name()]; skip {
					return fs.SkipDir
				}
			}
			return nil
		}

		ext := strings.TrimPrefix(filepath.Ext(d.Name()), ".")
		if _, ok := extSet[ext]; !ok {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if lang.IsTestFile(relPath, d.Name()) {
			testFiles[relPath] = struct{}{}
			return nil
		}

		for _, p := range skipPatterns {
			if p.MatchString(relPath) {
				return nil
			}
		}

		for _, glob := range opts.ExcludeGlobs {
			if matched, _ := doublestar.Match(glob, relPath); matched {
				return nil
			}
		}

		sources = append(sources, File{AbsPath: path, RelPath: relPath})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover: walk %s: %w", root, err)
	}

	if opts.TestedOnly {
		return filterTested(sources, testFiles), nil
	}
	return sources, nil
}

// ContextPool discovers files under one or more extra roots (spec §6's
// repeatable --include-path), for use as cross-file-context material
// distinct from the primary training file list. Roots are walked
// concurrently since each is an independent filesystem subtree.
func ContextPool(roots []string, lang langs.Language) ([]File, error) {
	results := make([][]File, len(roots))

	var g errgroup.Group
	for i, root := range roots {
		i, root := i, root
		g.Go(func() error {
			files, err := Walk(root, lang, Options{})
			if err != nil {
				return err
			}
			results[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []File
	for _, files := range results {
		out = append(out, files...)
	}
	return out, nil
}

func extensionSet(lang langs.Language) map[string]struct{} {
	set := make(map[string]struct{}, len(lang.Extensions()))
	for _, e := range lang.Extensions() {
		set[e] = struct{}{}
	}
	return set
}

// filterTested keeps only files whose stem appears in the name of some
// discovered test file, e.g. MyClass.php kept because MyClassTest.php
// (or Tests/MyClassTest.php) was found.
func filterTested(sources []File, testFiles map[string]struct{}) []File {
	var out []File
	for _, f := range sources {
		base := filepath.Base(f.AbsPath)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		for t := range testFiles {
			if strings.Contains(t, stem) || strings.Contains(t, stem+"Test") {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// Exists reports an error when root is missing or is not a directory.
func Exists(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("discover: %s is not a directory", root)
	}
	return nil
}
