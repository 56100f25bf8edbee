package lsp

import (
	"lexis/internal/document"
	"lexis/internal/source"
)

func toSourcePosition(p position) source.Position {
	return source.Position{Line: p.Line, Character: p.Character}
}

func toLSPPosition(p source.Position) position {
	return position{Line: p.Line, Character: p.Character}
}

func toSourceRange(r lspRange) source.Range {
	return source.Range{Start: toSourcePosition(r.Start), End: toSourcePosition(r.End)}
}

func toLSPRange(r source.Range) lspRange {
	return lspRange{Start: toLSPPosition(r.Start), End: toLSPPosition(r.End)}
}

// fullText returns the document text carried by a full-sync change list.
// When several full replacements arrive in one notification the last wins.
func fullText(changes []textDocumentContentChangeEvent) (string, error) {
	if len(changes) == 0 {
		return "", errNoContentChanges
	}
	for _, change := range changes {
		if change.Range != nil {
			return "", errIncrementalChange
		}
	}
	return changes[len(changes)-1].Text, nil
}

// openDocument looks up uri and indexes its text. The bool is false when the
// store does not track uri.
func (s *Server) openDocument(uri string) (document.Document, *source.LineIndex, bool) {
	doc, ok := s.docs.Get(uri)
	if !ok {
		return document.Document{}, nil, false
	}
	return doc, source.NewLineIndex(doc.Text), true
}
