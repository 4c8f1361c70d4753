package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crush-labs/fimgen/internal/langs"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestWalkSkipsVendorAndTestFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/Service.php", "<?php\n")
	writeFile(t, root, "src/ServiceTest.php", "<?php\n")
	writeFile(t, root, "vendor/lib/Autoload.php", "<?php\n")
	writeFile(t, root, "resources/views/welcome.blade.php", "<?php\n")
	writeFile(t, root, "README.md", "not php\n")

	php, err := langs.Default().Get("php")
	require.NoError(t, err)

	files, err := Walk(root, php, Options{})
	require.NoError(t, err)

	var rels []string
	for _, f := range files {
		rels = append(rels, f.RelPath)
	}
	require.ElementsMatch(t, []string{"src/Service.php"}, rels)
}

func TestWalkTestedOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/Service.php", "<?php\n")
	writeFile(t, root, "src/ServiceTest.php", "<?php\n")
	writeFile(t, root, "src/Orphan.php", "<?php\n")

	php, err := langs.Default().Get("php")
	require.NoError(t, err)

	files, err := Walk(root, php, Options{TestedOnly: true})
	require.NoError(t, err)

	var rels []string
	for _, f := range files {
		rels = append(rels, f.RelPath)
	}
	require.ElementsMatch(t, []string{"src/Service.php"}, rels)
}

func TestContextPoolMergesRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeFile(t, rootA, "a.php", "<?php\n")
	writeFile(t, rootB, "b.php", "<?php\n")

	php, err := langs.Default().Get("php")
	require.NoError(t, err)

	files, err := ContextPool([]string{rootA, rootB}, php)
	require.NoError(t, err)
	require.Len(t, files, 2)
}

func TestExistsRejectsNonDirectory(t *testing.T) {
	root := t.TempDir()
	f := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	require.NoError(t, Exists(root))
	require.Error(t, Exists(f))
	require.Error(t, Exists(filepath.Join(root, "missing")))
}
