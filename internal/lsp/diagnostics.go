package lsp

import (
	"strconv"

	"lexis/internal/diag"
	"lexis/internal/trace"
)

// publishDiagnostics analyzes the current text of uri and publishes the
// result tagged with the version it was computed from.
func (s *Server) publishDiagnostics(uri string) error {
	doc, ok := s.docs.Get(uri)
	if !ok {
		return nil
	}
	span := trace.Begin(s.tracer, trace.ScopeAnalysis, "analyze", s.sessionSpan).
		WithExtra("uri", uri).
		WithExtra("version", strconv.Itoa(doc.Version))
	diags := s.engine.Compute(doc.Text, s.settings.Current())
	span.WithExtra("count", strconv.Itoa(len(diags))).End("")

	version := doc.Version
	return s.sendPublish(uri, &version, toLSPDiagnostics(diags))
}

func (s *Server) sendPublish(uri string, version *int, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	return s.sendNotification("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Version:     version,
		Diagnostics: list,
	})
}

func toLSPDiagnostics(items []diag.Diagnostic) []lspDiagnostic {
	out := make([]lspDiagnostic, 0, len(items))
	for _, d := range items {
		out = append(out, toLSPDiagnostic(d))
	}
	return out
}

func toLSPDiagnostic(d diag.Diagnostic) lspDiagnostic {
	out := lspDiagnostic{
		Range:    toLSPRange(d.Range),
		Severity: int(d.Severity),
		Source:   d.Source,
		Message:  d.Message,
	}
	if d.Code != diag.UnknownCode {
		out.Code = d.Code.ID()
	}
	return out
}
