package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"lexis/internal/checker"
	"lexis/internal/settings"
	"lexis/internal/source"
)

func (s *Server) handleHover(_ context.Context, raw json.RawMessage) (any, error) {
	var params hoverParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	_, index, ok := s.openDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	if h := buildHover(index, toSourcePosition(params.Position), s.settings.Current()); h != nil {
		return h, nil
	}
	return nil, nil
}

func buildHover(index *source.LineIndex, pos source.Position, cfg settings.Settings) *hover {
	w, ok := index.WordAt(pos)
	if !ok {
		return nil
	}
	var value string
	if entry, found := catalogByLabel(w.Text); found {
		value = fmt.Sprintf("**%s** (%s)\n\n%s", entry.Label, entry.Detail, entry.Documentation)
	} else if checker.IsBanned(w.Text, cfg) {
		value = fmt.Sprintf("`%s` is a banned token (%s).", w.Text, strings.ToLower(cfg.BannedSeverity.String()))
	} else {
		n := len(index.Occurrences(w.Text))
		noun := "occurrences"
		if n == 1 {
			noun = "occurrence"
		}
		value = fmt.Sprintf("`%s`: %d %s in this document.", w.Text, n, noun)
	}
	rng := toLSPRange(index.WordRange(w))
	return &hover{
		Contents: markupContent{Kind: "markdown", Value: value},
		Range:    &rng,
	}
}
