package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"

	"lexis/internal/trace"
)

type serverState uint8

const (
	stateUninitialized serverState = iota
	stateReady
	stateShutdown
)

func (st serverState) String() string {
	switch st {
	case stateUninitialized:
		return "uninitialized"
	case stateReady:
		return "ready"
	case stateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

type requestHandler func(s *Server, ctx context.Context, params json.RawMessage) (any, error)

type notificationHandler func(s *Server, ctx context.Context, params json.RawMessage) error

// route binds a method to its handler. A route gated by a feature is only
// reachable when the session capabilities enable it.
type route struct {
	feature Feature
	request requestHandler
	notify  notificationHandler
}

// routes holds every method served once the session is ready. The
// lifecycle methods initialize, shutdown and exit are handled by dispatch.
var routes = map[string]route{
	"initialized":                      {notify: (*Server).handleInitialized},
	"textDocument/didOpen":             {notify: (*Server).handleDidOpen},
	"textDocument/didChange":           {notify: (*Server).handleDidChange},
	"textDocument/didClose":            {notify: (*Server).handleDidClose},
	"workspace/didChangeConfiguration": {notify: (*Server).handleDidChangeConfiguration},
	"workspace/didChangeWatchedFiles":  {notify: (*Server).handleDidChangeWatchedFiles},

	"textDocument/completion":        {feature: FeatureCompletion, request: (*Server).handleCompletion},
	"completionItem/resolve":         {feature: FeatureCompletionResolve, request: (*Server).handleCompletionResolve},
	"textDocument/hover":             {feature: FeatureHover, request: (*Server).handleHover},
	"textDocument/documentSymbol":    {feature: FeatureDocumentSymbol, request: (*Server).handleDocumentSymbol},
	"textDocument/formatting":        {feature: FeatureFormatting, request: (*Server).handleFormatting},
	"textDocument/rangeFormatting":   {feature: FeatureRangeFormatting, request: (*Server).handleRangeFormatting},
	"textDocument/definition":        {feature: FeatureDefinition, request: (*Server).handleDefinition},
	"textDocument/references":        {feature: FeatureReferences, request: (*Server).handleReferences},
	"textDocument/documentHighlight": {feature: FeatureDocumentHighlight, request: (*Server).handleDocumentHighlight},
	"textDocument/codeAction":        {feature: FeatureCodeAction, request: (*Server).handleCodeAction},
	"textDocument/rename":            {feature: FeatureRename, request: (*Server).handleRename},
}

// handleMessage runs one inbound message to completion. The returned error
// is fatal for the session: exit, or a failure to write to the client.
func (s *Server) handleMessage(ctx context.Context, msg *rpcMessage) error {
	if msg.Method == "" {
		// responses to server-initiated requests; none are ever sent
		return nil
	}
	if msg.Method == "exit" {
		trace.Point(s.tracer, trace.ScopeSession, "exit", s.state.String())
		if s.state == stateShutdown {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	}

	span := trace.Begin(s.tracer, trace.ScopeMessage, msg.Method, s.sessionSpan)
	defer func() { span.End(s.state.String()) }()

	if msg.isRequest() && msg.JSONRPC != "2.0" {
		return s.sendError(msg.ID, CodeInvalidRequest, fmt.Sprintf("unsupported jsonrpc version %q", msg.JSONRPC))
	}

	switch s.state {
	case stateUninitialized:
		if msg.Method == "initialize" {
			return s.respond(msg, s.callRequest(ctx, msg, (*Server).handleInitialize))
		}
		if msg.isRequest() {
			return s.sendError(msg.ID, CodeServerNotInitialized, "server not initialized")
		}
		return nil
	case stateShutdown:
		if msg.isRequest() {
			return s.sendError(msg.ID, CodeInvalidRequest, "server is shutting down")
		}
		return nil
	}

	switch msg.Method {
	case "initialize":
		if msg.isRequest() {
			return s.sendError(msg.ID, CodeInvalidRequest, "server already initialized")
		}
		return nil
	case "shutdown":
		if msg.isRequest() {
			return s.respond(msg, s.callRequest(ctx, msg, (*Server).handleShutdown))
		}
		return nil
	}

	r, ok := routes[msg.Method]
	if !ok || !s.caps.Enabled(r.feature) {
		if msg.isRequest() {
			return s.sendError(msg.ID, CodeMethodNotFound, "method not found: "+msg.Method)
		}
		if !strings.HasPrefix(msg.Method, "$/") {
			s.logf("ignoring notification %s", msg.Method)
		}
		return nil
	}

	if msg.isRequest() {
		if r.request == nil {
			return s.sendError(msg.ID, CodeMethodNotFound, "method not found: "+msg.Method)
		}
		return s.respond(msg, s.callRequest(ctx, msg, r.request))
	}
	if r.notify == nil {
		return nil
	}
	return s.callNotify(ctx, msg, r.notify)
}

type handlerResult struct {
	value any
	err   error
}

// callRequest runs h and turns a panic into an InternalError result.
func (s *Server) callRequest(ctx context.Context, msg *rpcMessage, h requestHandler) (res handlerResult) {
	defer func() {
		if r := recover(); r != nil {
			s.recovered(msg.Method, r)
			res = handlerResult{err: newResponseError(CodeInternalError, "internal error in %s: %v", msg.Method, r)}
		}
	}()
	value, err := h(s, ctx, msg.Params)
	return handlerResult{value: value, err: err}
}

// callNotify runs h and swallows a panic after logging it.
func (s *Server) callNotify(ctx context.Context, msg *rpcMessage, h notificationHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.recovered(msg.Method, r)
			err = nil
		}
	}()
	return h(s, ctx, msg.Params)
}

func (s *Server) respond(msg *rpcMessage, res handlerResult) error {
	if res.err != nil {
		rerr := asResponseError(res.err)
		if rerr.Code == CodeInternalError {
			s.logf("%s failed: %v", msg.Method, res.err)
		}
		return s.sendError(msg.ID, rerr.Code, rerr.Message)
	}
	return s.sendResponse(msg.ID, res.value)
}

func (s *Server) recovered(method string, r any) {
	s.logf("panic in %s: %v\n%s", method, r, debug.Stack())
	trace.Point(s.tracer, trace.ScopeSession, "panic", method)
	d, ok := trace.FindDumper(s.tracer)
	if !ok {
		return
	}
	s.logf("recent trace events:")
	if err := d.Dump(s.logOut, trace.FormatText); err != nil {
		s.logf("failed to dump trace: %v", err)
	}
}
