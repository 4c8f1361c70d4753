package crossfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crush-labs/fimgen/internal/discover"
	"github.com/crush-labs/fimgen/internal/langs"
)

func writeGo(t *testing.T, dir, name, content string) discover.File {
	t.Helper()
	abs := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	return discover.File{AbsPath: abs, RelPath: name}
}

func TestFindRelatedIgnoresNonMatchingImports(t *testing.T) {
	dir := t.TempDir()
	helper := writeGo(t, dir, "helper.go", "package main\n\nfunc Help() string { return \"\" }\n")
	target := writeGo(t, dir, "main.go", "package main\n\nimport (\n\t\"fmt\"\n)\n\nfunc main() { fmt.Println(Help()) }\n")

	goLang, err := langs.Default().Get("go")
	require.NoError(t, err)

	source, err := os.ReadFile(target.AbsPath)
	require.NoError(t, err)

	pool := []discover.File{target, helper}
	related := FindRelated(target, pool, string(source), goLang)
	require.Empty(t, related, "Go source has no local stem import matching helper.go's stem")
}

func writePHP(t *testing.T, dir, name, content string) discover.File {
	t.Helper()
	abs := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	return discover.File{AbsPath: abs, RelPath: name}
}

func TestFindRelatedMatchesPHPRequire(t *testing.T) {
	dir := t.TempDir()
	helper := writePHP(t, dir, "Helper.php", "<?php\nclass Helper {\n    public function help() {}\n}\n")
	target := writePHP(t, dir, "index.php", "<?php\nrequire_once 'Helper.php';\n$h = new Helper();\n")

	php, err := langs.Default().Get("php")
	require.NoError(t, err)

	source, err := os.ReadFile(target.AbsPath)
	require.NoError(t, err)

	pool := []discover.File{target, helper}
	related := FindRelated(target, pool, string(source), php)
	require.Len(t, related, 1)
	require.Equal(t, helper.AbsPath, related[0].AbsPath)
}

func TestBuildEmptyWhenNoRelatedFiles(t *testing.T) {
	dir := t.TempDir()
	target := writeGo(t, dir, "solo.go", "package main\n\nfunc main() {}\n")

	goLang, err := langs.Default().Get("go")
	require.NoError(t, err)

	source, err := os.ReadFile(target.AbsPath)
	require.NoError(t, err)

	out := Build(target, []discover.File{target}, string(source), goLang, 1024, false)
	require.Empty(t, out.Value)
	require.Nil(t, out.Debug)
}

func TestBuildDebugOutcomeCarriesDiagnostics(t *testing.T) {
	dir := t.TempDir()
	userModel := writeGo(t, dir, "user_model.go", "package main\n\ntype UserModel struct {\n\tName string\n}\n\nfunc (u *UserModel) Greet() string { return u.Name }\n")
	target := writeGo(t, dir, "main.go", "package main\n\nfunc main() {\n\tm := UserModel{}\n\t_ = m.Greet()\n}\n")

	goLang, err := langs.Default().Get("go")
	require.NoError(t, err)

	source, err := os.ReadFile(target.AbsPath)
	require.NoError(t, err)

	pool := []discover.File{target, userModel}
	out := Build(target, pool, string(source), goLang, 1024, true)
	require.NotNil(t, out.Debug)
}
