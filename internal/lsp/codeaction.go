package lsp

import (
	"context"
	"encoding/json"

	"lexis/internal/diag"
	"lexis/internal/source"
)

func (s *Server) handleCodeAction(_ context.Context, raw json.RawMessage) (any, error) {
	var params codeActionParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	doc, ok := s.docs.Get(params.TextDocument.URI)
	if !ok || !wantsQuickFix(params.Context.Only) {
		return []codeAction{}, nil
	}
	diags := s.engine.Compute(doc.Text, s.settings.Current())
	return buildCodeActions(doc.URI, diags, toSourceRange(params.Range)), nil
}

func wantsQuickFix(only []string) bool {
	if len(only) == 0 {
		return true
	}
	for _, kind := range only {
		if kind == codeActionQuickFix {
			return true
		}
	}
	return false
}

// buildCodeActions offers one quick fix per fix of every finding that
// intersects rng.
func buildCodeActions(uri string, diags []diag.Diagnostic, rng source.Range) []codeAction {
	out := []codeAction{}
	for _, d := range diags {
		if !d.Range.Intersects(rng) {
			continue
		}
		for _, fix := range d.Fixes {
			edits := make([]textEdit, 0, len(fix.Edits))
			for _, e := range fix.Edits {
				edits = append(edits, textEdit{Range: toLSPRange(e.Range), NewText: e.NewText})
			}
			out = append(out, codeAction{
				Title:       fix.Title,
				Kind:        codeActionQuickFix,
				Diagnostics: []lspDiagnostic{toLSPDiagnostic(d)},
				IsPreferred: len(d.Fixes) == 1,
				Edit:        &workspaceEdit{Changes: map[string][]textEdit{uri: edits}},
			})
		}
	}
	return out
}
