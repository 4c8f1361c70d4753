package contextrpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/crush-labs/fimgen/internal/crossfile"
	"github.com/crush-labs/fimgen/internal/discover"
	"github.com/crush-labs/fimgen/internal/langs"
)

// ServeOptions configures a single Serve call.
type ServeOptions struct {
	Root      string
	Language  langs.Language
	MaxTokens int
}

// Serve runs the line-delimited JSON-RPC 2.0 loop described in spec §6:
// one Request per line on in, one Response per line on out. The file pool
// used by getContext is discovered once at startup; Serve returns when in
// is exhausted, a shutdown request is received, or ctx-independent I/O
// fails.
func Serve(logger *slog.Logger, in io.Reader, out io.Writer, opts ServeOptions) error {
	pool, err := discover.Walk(opts.Root, opts.Language, discover.Options{})
	if err != nil {
		return fmt.Errorf("contextrpc: discover %s: %w", opts.Root, err)
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			_ = enc.Encode(Response{JSONRPC: "2.0", Error: &Error{Code: CodeParseError, Message: err.Error()}})
			continue
		}

		resp := dispatch(logger, pool, opts, req)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("contextrpc: write response: %w", err)
		}
		if req.Method == MethodShutdown {
			return nil
		}
	}
	return scanner.Err()
}

func dispatch(logger *slog.Logger, pool []discover.File, opts ServeOptions, req Request) Response {
	switch req.Method {
	case MethodInitialize:
		return Response{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{"fileCount": len(pool)}}
	case MethodGetContext:
		return handleGetContext(pool, opts, req)
	case MethodShutdown:
		return Response{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{"ok": true}}
	default:
		logger.Warn("contextrpc: unknown method", "method", req.Method)
		return Response{JSONRPC: "2.0", ID: req.ID, Error: &Error{Code: CodeMethodNotFound, Message: req.Method}}
	}
}

func handleGetContext(pool []discover.File, opts ServeOptions, req Request) Response {
	var params GetContextParams
	if err := decodeParams(req.Params, &params); err != nil {
		return Response{JSONRPC: "2.0", ID: req.ID, Error: &Error{Code: CodeInvalidParams, Message: err.Error()}}
	}

	source, target, ok := readTarget(pool, params.FilePath)
	if !ok {
		return Response{JSONRPC: "2.0", ID: req.ID, Error: &Error{Code: CodeInvalidParams, Message: "unknown filePath: " + params.FilePath}}
	}
	if params.Offset < 0 || params.Offset > len(source) {
		return Response{JSONRPC: "2.0", ID: req.ID, Error: &Error{Code: CodeInvalidParams, Message: "offset out of range"}}
	}

	prefix, suffix := source[:params.Offset], source[params.Offset:]
	ctx := crossfile.Build(target, pool, source, opts.Language, opts.MaxTokens, false)

	return Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: GetContextResult{
			Prefix:           prefix,
			Suffix:           suffix,
			CrossFileContext: ctx.Value,
		},
	}
}

func readTarget(pool []discover.File, filePath string) (source string, target discover.File, ok bool) {
	for _, f := range pool {
		if f.AbsPath == filePath || f.RelPath == filePath {
			data, err := os.ReadFile(f.AbsPath)
			if err != nil {
				return "", discover.File{}, false
			}
			return string(data), f, true
		}
	}
	return "", discover.File{}, false
}

func decodeParams(raw any, out *GetContextParams) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
