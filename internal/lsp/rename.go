package lsp

import (
	"context"
	"encoding/json"
	"strings"
	"unicode"

	"lexis/internal/document"
	"lexis/internal/source"
)

func (s *Server) handleRename(_ context.Context, raw json.RawMessage) (any, error) {
	var params renameParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	if params.NewName == "" || strings.IndexFunc(params.NewName, unicode.IsSpace) >= 0 {
		return nil, newResponseError(CodeInvalidParams, "invalid new name %q", params.NewName)
	}
	target, ok := s.targetAt(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	return buildRename(target, s.otherDocuments(target.doc.URI), params.NewName), nil
}

// buildRename replaces every occurrence of the target word in every open
// document.
func buildRename(target wordTarget, others []document.Document, newName string) *workspaceEdit {
	edit := &workspaceEdit{Changes: map[string][]textEdit{}}
	add := func(uri string, index *source.LineIndex) {
		occ := index.Occurrences(target.word.Text)
		if len(occ) == 0 {
			return
		}
		edits := make([]textEdit, 0, len(occ))
		for _, w := range occ {
			edits = append(edits, textEdit{Range: toLSPRange(index.WordRange(w)), NewText: newName})
		}
		edit.Changes[uri] = edits
	}
	add(target.doc.URI, target.index)
	for _, doc := range others {
		add(doc.URI, source.NewLineIndex(doc.Text))
	}
	return edit
}
