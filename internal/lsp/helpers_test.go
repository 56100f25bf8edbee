package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
)

// script builds the client side of a session as framed messages.
type script struct {
	buf    bytes.Buffer
	nextID int
}

func (c *script) request(t *testing.T, method string, params any) int {
	t.Helper()
	c.nextID++
	c.write(t, map[string]any{"jsonrpc": "2.0", "id": c.nextID, "method": method, "params": params})
	return c.nextID
}

func (c *script) notify(t *testing.T, method string, params any) {
	t.Helper()
	c.write(t, map[string]any{"jsonrpc": "2.0", "method": method, "params": params})
}

func (c *script) raw(t *testing.T, payload string) {
	t.Helper()
	if err := writeMessage(&c.buf, []byte(payload)); err != nil {
		t.Fatalf("write raw: %v", err)
	}
}

func (c *script) write(t *testing.T, msg any) {
	t.Helper()
	payload, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := writeMessage(&c.buf, payload); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func (c *script) initialize(t *testing.T, params any) int {
	t.Helper()
	if params == nil {
		params = map[string]any{"processId": nil, "capabilities": map[string]any{}}
	}
	id := c.request(t, "initialize", params)
	c.notify(t, "initialized", map[string]any{})
	return id
}

func (c *script) open(t *testing.T, uri, languageID string, version int, text string) {
	t.Helper()
	c.notify(t, "textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: languageID, Version: version, Text: text},
	})
}

// session is the outcome of running a script to completion.
type session struct {
	server *Server
	frames []rpcMessage
	logs   string
	err    error
}

func runScript(t *testing.T, ctx context.Context, opts ServerOptions, c *script) session {
	t.Helper()
	var out, logs bytes.Buffer
	opts.LogOutput = &logs
	server := NewServer(bytes.NewReader(c.buf.Bytes()), &out, opts)
	err := server.Run(ctx)
	return session{server: server, frames: readFrames(t, out.Bytes()), logs: logs.String(), err: err}
}

func readFrames(t *testing.T, data []byte) []rpcMessage {
	t.Helper()
	reader := bufio.NewReader(bytes.NewReader(data))
	var frames []rpcMessage
	for {
		payload, err := readMessage(reader)
		if errors.Is(err, io.EOF) {
			return frames
		}
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		frames = append(frames, msg)
	}
}

func (s session) response(t *testing.T, id int) rpcMessage {
	t.Helper()
	want, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("marshal id: %v", err)
	}
	for _, msg := range s.frames {
		if msg.Method == "" && bytes.Equal(msg.ID, want) {
			return msg
		}
	}
	t.Fatalf("no response for id %d in %d frames", id, len(s.frames))
	return rpcMessage{}
}

func (s session) errorCode(t *testing.T, id int) int {
	t.Helper()
	msg := s.response(t, id)
	if msg.Error == nil {
		t.Fatalf("expected error for id %d, got result %s", id, msg.Result)
	}
	return msg.Error.Code
}

func (s session) result(t *testing.T, id int, v any) {
	t.Helper()
	msg := s.response(t, id)
	if msg.Error != nil {
		t.Fatalf("unexpected error for id %d: %+v", id, msg.Error)
	}
	if err := json.Unmarshal(msg.Result, v); err != nil {
		t.Fatalf("decode result %d: %v", id, err)
	}
}

func (s session) publishes(t *testing.T, uri string) []publishDiagnosticsParams {
	t.Helper()
	var out []publishDiagnosticsParams
	for _, msg := range s.frames {
		if msg.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var params publishDiagnosticsParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			t.Fatalf("decode publish: %v", err)
		}
		if params.URI == uri {
			out = append(out, params)
		}
	}
	return out
}

// newReadyServer returns an initialized server for calling handlers
// directly.
func newReadyServer(t *testing.T, opts ServerOptions) (*Server, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	if opts.LogOutput == nil {
		opts.LogOutput = io.Discard
	}
	server := NewServer(bytes.NewReader(nil), &out, opts)
	server.caps, _ = ComputeCapabilities(opts.Disabled)
	server.state = stateReady
	return server, &out
}

func openDoc(t *testing.T, s *Server, uri, languageID, text string) {
	t.Helper()
	params := mustParams(t, didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: languageID, Version: 1, Text: text},
	})
	if err := s.handleDidOpen(context.Background(), params); err != nil {
		t.Fatalf("didOpen: %v", err)
	}
}

func mustParams(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	return data
}

func posParams(uri string, line, character int) textDocumentPositionParams {
	return textDocumentPositionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Position:     position{Line: line, Character: character},
	}
}

func rng(startLine, startChar, endLine, endChar int) lspRange {
	return lspRange{
		Start: position{Line: startLine, Character: startChar},
		End:   position{Line: endLine, Character: endChar},
	}
}
