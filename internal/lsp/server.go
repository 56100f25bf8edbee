package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"lexis/internal/checker"
	"lexis/internal/document"
	"lexis/internal/settings"
	"lexis/internal/trace"
	"lexis/internal/version"
)

// ServerName is reported to clients in the initialize result.
const ServerName = "lexis"

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	// Checker replaces the default rule set.
	Checker checker.Checker
	// Baseline seeds settings until a project file is found; nil means
	// settings.Default().
	Baseline *settings.Settings
	// MaxProblems overrides the baseline diagnostics cap when positive.
	MaxProblems int
	// Disabled names features to switch off (see Features).
	Disabled []string
	// LogOutput receives operational log lines; nil means stderr.
	LogOutput io.Writer
}

// Server handles stdio JSON-RPC for one client session. Messages are
// handled one at a time, so the document store and settings need no locks.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex
	logOut io.Writer

	tracer      trace.Tracer
	sessionSpan uint64

	state         serverState
	caps          Capabilities
	workspaceRoot string
	disabled      []string
	maxProblems   int

	docs     *document.Store
	settings *settings.State
	engine   *checker.Engine
	pending  []document.Change
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	logOut := opts.LogOutput
	if logOut == nil {
		logOut = os.Stderr
	}
	baseline := settings.Default()
	if opts.Baseline != nil {
		baseline = opts.Baseline.Clone()
	}
	if opts.MaxProblems > 0 {
		baseline.MaxNumberOfProblems = opts.MaxProblems
	}
	s := &Server{
		in:          bufio.NewReader(in),
		out:         bufio.NewWriter(out),
		logOut:      logOut,
		tracer:      trace.Nop,
		disabled:    slices.Clone(opts.Disabled),
		maxProblems: opts.MaxProblems,
		docs:        document.NewStore(),
		settings:    settings.NewState(baseline),
	}
	s.engine = checker.NewEngine(opts.Checker, checker.WithLogger(s.logf))
	s.docs.Watch(func(ch document.Change) {
		s.pending = append(s.pending, ch)
	})
	return s
}

// Run serves LSP requests until exit, end of input or ctx cancellation.
func (s *Server) Run(ctx context.Context) error {
	s.tracer = trace.FromContext(ctx)
	span := trace.Begin(s.tracer, trace.ScopeSession, "session", 0)
	s.sessionSpan = span.ID()
	defer func() { span.End(s.state.String()) }()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			if err := s.sendError(nil, CodeParseError, "parse error"); err != nil {
				return err
			}
			continue
		}
		if err := s.handleMessage(ctx, &msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleInitialize(_ context.Context, raw json.RawMessage) (any, error) {
	var params initializeParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	root := workspaceRoot(params)
	s.workspaceRoot = root

	disabled := slices.Clone(s.disabled)
	if root != "" {
		project, found, err := settings.LoadProject(root)
		switch {
		case err != nil:
			s.logf("%v", err)
		case found:
			baseline := project.Baseline
			if s.maxProblems > 0 {
				baseline.MaxNumberOfProblems = s.maxProblems
			}
			s.settings.SetBaseline(baseline)
			disabled = append(disabled, project.Disabled...)
			s.logf("loaded project settings from %s", project.Path)
		}
	}
	if len(params.InitializationOptions) > 0 {
		next, err := settings.Decode(params.InitializationOptions, s.settings.Baseline())
		if err != nil {
			s.logf("ignoring initializationOptions: %v", err)
		} else {
			s.settings.Replace(next)
		}
	}

	caps, unknown := ComputeCapabilities(disabled)
	for _, name := range unknown {
		s.logf("unknown feature %q in disable list", name)
	}
	s.caps = caps
	s.state = stateReady

	client := "unknown client"
	if params.ClientInfo != nil && params.ClientInfo.Name != "" {
		client = params.ClientInfo.Name
	}
	trace.Point(s.tracer, trace.ScopeSession, "initialize", fmt.Sprintf("client=%s root=%s", client, root))

	return initializeResult{
		Capabilities: caps.protocol(),
		ServerInfo: &serverInfo{
			Name:    ServerName,
			Version: version.Version,
		},
	}, nil
}

func workspaceRoot(params initializeParams) string {
	root := ""
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	return root
}

func (s *Server) handleInitialized(context.Context, json.RawMessage) error {
	return nil
}

func (s *Server) handleShutdown(context.Context, json.RawMessage) (any, error) {
	s.state = stateShutdown
	return nil, nil
}

func (s *Server) handleDidOpen(_ context.Context, raw json.RawMessage) error {
	var params didOpenTextDocumentParams
	if err := decodeParams(raw, &params); err != nil {
		s.logf("didOpen: %v", err)
		return nil
	}
	doc := params.TextDocument
	if doc.URI == "" {
		return nil
	}
	if err := s.docs.Open(doc.URI, doc.LanguageID, doc.Version, doc.Text); err != nil {
		s.logf("didOpen: %v", err)
	}
	return s.flushChanges()
}

func (s *Server) handleDidChange(_ context.Context, raw json.RawMessage) error {
	var params didChangeTextDocumentParams
	if err := decodeParams(raw, &params); err != nil {
		s.logf("didChange: %v", err)
		return nil
	}
	uri := params.TextDocument.URI
	text, err := fullText(params.ContentChanges)
	if err != nil {
		s.logf("didChange %s: %v", uri, err)
		return nil
	}
	if err := s.docs.Update(uri, params.TextDocument.Version, text); err != nil {
		s.logf("didChange: %v", err)
	}
	return s.flushChanges()
}

func (s *Server) handleDidClose(_ context.Context, raw json.RawMessage) error {
	var params didCloseTextDocumentParams
	if err := decodeParams(raw, &params); err != nil {
		s.logf("didClose: %v", err)
		return nil
	}
	if err := s.docs.Close(params.TextDocument.URI); err != nil {
		s.logf("didClose: %v", err)
	}
	return s.flushChanges()
}

func (s *Server) handleDidChangeWatchedFiles(_ context.Context, raw json.RawMessage) error {
	var params didChangeWatchedFilesParams
	if err := decodeParams(raw, &params); err != nil {
		s.logf("didChangeWatchedFiles: %v", err)
		return nil
	}
	for _, ch := range params.Changes {
		s.logf("watched file changed: %s (type %d)", ch.URI, ch.Type)
	}
	return nil
}

// flushChanges publishes diagnostics for every document change signalled by
// the store since the last flush. A closed document gets an empty set.
func (s *Server) flushChanges() error {
	pending := s.pending
	s.pending = nil
	for _, ch := range pending {
		var err error
		if ch.Kind == document.ChangeClosed {
			err = s.sendPublish(ch.URI, nil, nil)
		} else {
			err = s.publishDiagnostics(ch.URI)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendNotification(method string, params any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(s.logOut, "lexis: "+format+"\n", args...)
}
