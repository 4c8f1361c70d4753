package bm25

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crush-labs/fimgen/internal/discover"
)

func writeFile(t *testing.T, dir, name, content string) discover.File {
	t.Helper()
	abs := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	return discover.File{AbsPath: abs, RelPath: name}
}

func TestBuildSkipsTinyChunks(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "tiny.go", "package main\n\nfunc f() {}\n")

	idx := Build([]discover.File{f})
	require.Nil(t, idx, "every chunk in tiny.go is under the 20-char minimum")
}

func TestBuildIndexesLargeChunks(t *testing.T) {
	dir := t.TempDir()
	content := strings.Repeat("func doWork(input string) string {\n\treturn process(input)\n}\n\n", 3)
	f := writeFile(t, dir, "work.go", content)

	idx := Build([]discover.File{f})
	require.NotNil(t, idx)
	require.NotEmpty(t, idx.chunks)
}

func TestRetrieveExcludesSameFile(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.go", strings.Repeat("func targetHelper(x int) int {\n\treturn x * 2\n}\n\n", 3))
	other := writeFile(t, dir, "other.go", strings.Repeat("func targetHelper(x int) int {\n\treturn x * 2\n}\n\n", 3))

	idx := Build([]discover.File{target, other})
	require.NotNil(t, idx)

	out := Retrieve("targetHelper computes double of x", "", idx, "target.go", 1024, 5, false)
	require.NotEmpty(t, out.Value)
	require.Contains(t, out.Value, "other.go")
	require.NotContains(t, out.Value, "--- target.go ---")
}

func TestRetrieveRespectsCharBudget(t *testing.T) {
	dir := t.TempDir()
	var files []discover.File
	for i := 0; i < 5; i++ {
		name := filepath.Join("pkg", strings.Repeat("f", i+1)+".go")
		content := strings.Repeat("func repeatedHelperName(x int) int {\n\treturn x + 1\n}\n\n", 4)
		files = append(files, writeFile(t, dir, name, content))
	}

	idx := Build(files)
	require.NotNil(t, idx)

	out := Retrieve("repeatedHelperName adds one", "", idx, "target.go", 1, 5, false)
	require.LessOrEqual(t, len(out.Value), 4+50)
}

func TestRetrieveDedupesByFileKeepingHighestScore(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join([]string{
		"func alpha(x int) int {\n\treturn x + 1\n}",
		"func beta(y int) int {\n\treturn y + 2\n}",
		"func gamma(z int) int {\n\treturn z + 3\n}",
	}, "\n\n") + "\n"
	multi := writeFile(t, dir, "multi.go", content)

	idx := Build([]discover.File{multi})
	require.NotNil(t, idx)
	require.Greater(t, len(idx.chunks), 1, "blank-line split should yield multiple chunks from one file")

	out := Retrieve("alpha beta gamma", "", idx, "target.go", 1024, 5, false)
	require.LessOrEqual(t, strings.Count(out.Value, "--- multi.go ---"), 1)
}

func TestRetrieveDebugOutcomeCarriesDiagnostics(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.go", "package main\n")
	other := writeFile(t, dir, "other.go", strings.Repeat("func sharedName(x int) int {\n\treturn x\n}\n\n", 3))

	idx := Build([]discover.File{target, other})
	require.NotNil(t, idx)

	out := Retrieve("sharedName lookup", "", idx, "target.go", 1024, 5, true)
	require.NotNil(t, out.Debug)
	require.NotEmpty(t, out.Debug.QueryTokens)
	require.NotEmpty(t, out.Debug.Candidates)
}

func TestRetrieveEmptyWhenNoIndex(t *testing.T) {
	out := Retrieve("anything", "", nil, "target.go", 1024, 5, false)
	require.Empty(t, out.Value)
	require.Nil(t, out.Debug)
}

func TestRetrieveEmptyWhenQueryHasNoTokens(t *testing.T) {
	dir := t.TempDir()
	other := writeFile(t, dir, "other.go", strings.Repeat("func sharedName(x int) int {\n\treturn x\n}\n\n", 3))
	idx := Build([]discover.File{other})
	require.NotNil(t, idx)

	out := Retrieve("   ", "", idx, "target.go", 1024, 5, false)
	require.Empty(t, out.Value)
}
