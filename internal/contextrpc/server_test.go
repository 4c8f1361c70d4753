package contextrpc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crush-labs/fimgen/internal/langs"
)

func writeTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(
		"package main\n\nimport \"proj/utils\"\n\nfunc main() {\n\tutils.Helper()\n}\n",
	), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "utils.go"), []byte(
		"package main\n\nfunc Helper() {\n\tprintln(\"hi\")\n}\n",
	), 0o644))
	return dir
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readResponses(t *testing.T, r io.Reader, n int) []Response {
	t.Helper()
	scanner := bufio.NewScanner(r)
	var out []Response
	for i := 0; i < n && scanner.Scan(); i++ {
		var resp Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		out = append(out, resp)
	}
	return out
}

func TestServeInitializeReportsFileCount(t *testing.T) {
	dir := writeTestProject(t)
	lang, err := langs.Default().Get("go")
	require.NoError(t, err)

	reqLine, _ := json.Marshal(Request{JSONRPC: "2.0", ID: 1, Method: MethodInitialize})
	in := bytes.NewBufferString(string(reqLine) + "\n")
	reqLine2, _ := json.Marshal(Request{JSONRPC: "2.0", ID: 2, Method: MethodShutdown})
	in.WriteString(string(reqLine2) + "\n")

	var out bytes.Buffer
	err = Serve(silentLogger(), in, &out, ServeOptions{Root: dir, Language: lang, MaxTokens: 2048})
	require.NoError(t, err)

	resps := readResponses(t, &out, 2)
	require.Len(t, resps, 2)
	require.Nil(t, resps[0].Error)
	result, ok := resps[0].Result.(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 2, result["fileCount"])
}

func TestServeGetContextSplitsAtOffsetAndAttachesCrossFileContext(t *testing.T) {
	dir := writeTestProject(t)
	lang, err := langs.Default().Get("go")
	require.NoError(t, err)

	mainPath := filepath.Join(dir, "main.go")
	source, readErr := os.ReadFile(mainPath)
	require.NoError(t, readErr)
	offset := bytes.IndexByte(source, '\n') + 1

	getCtxParams := GetContextParams{FilePath: mainPath, Offset: offset}
	reqLine, _ := json.Marshal(Request{JSONRPC: "2.0", ID: 1, Method: MethodGetContext, Params: getCtxParams})
	shutdownLine, _ := json.Marshal(Request{JSONRPC: "2.0", ID: 2, Method: MethodShutdown})
	in := bytes.NewBufferString(string(reqLine) + "\n" + string(shutdownLine) + "\n")

	var out bytes.Buffer
	err = Serve(silentLogger(), in, &out, ServeOptions{Root: dir, Language: lang, MaxTokens: 2048})
	require.NoError(t, err)

	resps := readResponses(t, &out, 2)
	require.Len(t, resps, 2)
	require.Nil(t, resps[0].Error)

	resultBytes, err := json.Marshal(resps[0].Result)
	require.NoError(t, err)
	var result GetContextResult
	require.NoError(t, json.Unmarshal(resultBytes, &result))

	require.Equal(t, string(source[:offset]), result.Prefix)
	require.Equal(t, string(source[offset:]), result.Suffix)
	require.Contains(t, result.CrossFileContext, "utils.go")
}

func TestServeGetContextRejectsUnknownFile(t *testing.T) {
	dir := writeTestProject(t)
	lang, err := langs.Default().Get("go")
	require.NoError(t, err)

	params := GetContextParams{FilePath: filepath.Join(dir, "missing.go"), Offset: 0}
	reqLine, _ := json.Marshal(Request{JSONRPC: "2.0", ID: 1, Method: MethodGetContext, Params: params})
	in := bytes.NewBufferString(string(reqLine) + "\n")

	var out bytes.Buffer
	err = Serve(silentLogger(), in, &out, ServeOptions{Root: dir, Language: lang, MaxTokens: 2048})
	require.NoError(t, err)

	resps := readResponses(t, &out, 1)
	require.Len(t, resps, 1)
	require.NotNil(t, resps[0].Error)
	require.Equal(t, CodeInvalidParams, resps[0].Error.Code)
}

func TestServeUnknownMethodReturnsMethodNotFound(t *testing.T) {
	dir := t.TempDir()
	lang, err := langs.Default().Get("go")
	require.NoError(t, err)

	reqLine, _ := json.Marshal(Request{JSONRPC: "2.0", ID: 1, Method: "bogus"})
	in := bytes.NewBufferString(string(reqLine) + "\n")

	var out bytes.Buffer
	err = Serve(silentLogger(), in, &out, ServeOptions{Root: dir, Language: lang, MaxTokens: 2048})
	require.NoError(t, err)

	resps := readResponses(t, &out, 1)
	require.Len(t, resps, 1)
	require.NotNil(t, resps[0].Error)
	require.Equal(t, CodeMethodNotFound, resps[0].Error.Code)
}
