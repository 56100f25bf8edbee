package lsp

import (
	"context"
	"encoding/json"
	"strconv"

	"lexis/internal/settings"
	"lexis/internal/trace"
)

func (s *Server) handleDidChangeConfiguration(_ context.Context, raw json.RawMessage) error {
	var params didChangeConfigurationParams
	if err := decodeParams(raw, &params); err != nil {
		s.logf("didChangeConfiguration: %v", err)
		return nil
	}
	return s.applySettings(params.Settings)
}

// applySettings replaces the active settings wholesale and re-validates
// every open document. A payload that fails to decode leaves the previous
// settings in place.
func (s *Server) applySettings(raw json.RawMessage) error {
	next, err := settings.Decode(raw, s.settings.Baseline())
	if err != nil {
		s.logf("ignoring settings: %v", err)
		return nil
	}
	v := s.settings.Replace(next)
	trace.Point(s.tracer, trace.ScopeSession, "settings", "version="+strconv.FormatUint(v, 10))
	for _, doc := range s.docs.All() {
		if err := s.publishDiagnostics(doc.URI); err != nil {
			return err
		}
	}
	return nil
}
