package lsp

import (
	"context"
	"encoding/json"

	"lexis/internal/document"
	"lexis/internal/source"
)

// wordTarget is the word under the cursor of a navigation request.
type wordTarget struct {
	doc   document.Document
	index *source.LineIndex
	word  source.Word
}

func (s *Server) targetAt(uri string, pos position) (wordTarget, bool) {
	doc, index, ok := s.openDocument(uri)
	if !ok {
		return wordTarget{}, false
	}
	w, ok := index.WordAt(toSourcePosition(pos))
	if !ok {
		return wordTarget{}, false
	}
	return wordTarget{doc: doc, index: index, word: w}, true
}

// otherDocuments returns open documents except uri, sorted by URI.
func (s *Server) otherDocuments(uri string) []document.Document {
	all := s.docs.All()
	out := all[:0]
	for _, doc := range all {
		if doc.URI != uri {
			out = append(out, doc)
		}
	}
	return out
}

func (s *Server) handleDefinition(_ context.Context, raw json.RawMessage) (any, error) {
	var params definitionParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	target, ok := s.targetAt(params.TextDocument.URI, params.Position)
	if !ok {
		return []location{}, nil
	}
	return buildDefinition(target, s.otherDocuments(target.doc.URI)), nil
}

// buildDefinition returns the first occurrence of the target word in its own
// document, then the first occurrence in each other document of the same
// language.
func buildDefinition(target wordTarget, others []document.Document) []location {
	name := target.word.Text
	out := []location{}
	if occ := target.index.Occurrences(name); len(occ) > 0 {
		out = append(out, location{URI: target.doc.URI, Range: toLSPRange(target.index.WordRange(occ[0]))})
	}
	for _, doc := range others {
		if doc.LanguageID != target.doc.LanguageID {
			continue
		}
		index := source.NewLineIndex(doc.Text)
		if occ := index.Occurrences(name); len(occ) > 0 {
			out = append(out, location{URI: doc.URI, Range: toLSPRange(index.WordRange(occ[0]))})
		}
	}
	return out
}

func (s *Server) handleReferences(_ context.Context, raw json.RawMessage) (any, error) {
	var params referenceParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	target, ok := s.targetAt(params.TextDocument.URI, params.Position)
	if !ok {
		return []location{}, nil
	}
	return buildReferences(target, s.otherDocuments(target.doc.URI), params.Context.IncludeDeclaration), nil
}

// buildReferences lists every occurrence in the requesting document, then in
// the other open documents. The first occurrence in the requesting document
// is the declaration.
func buildReferences(target wordTarget, others []document.Document, includeDeclaration bool) []location {
	name := target.word.Text
	out := []location{}
	for i, w := range target.index.Occurrences(name) {
		if i == 0 && !includeDeclaration {
			continue
		}
		out = append(out, location{URI: target.doc.URI, Range: toLSPRange(target.index.WordRange(w))})
	}
	for _, doc := range others {
		index := source.NewLineIndex(doc.Text)
		for _, w := range index.Occurrences(name) {
			out = append(out, location{URI: doc.URI, Range: toLSPRange(index.WordRange(w))})
		}
	}
	return out
}

func (s *Server) handleDocumentHighlight(_ context.Context, raw json.RawMessage) (any, error) {
	var params documentHighlightParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	target, ok := s.targetAt(params.TextDocument.URI, params.Position)
	if !ok {
		return []documentHighlight{}, nil
	}
	return buildHighlights(target), nil
}

func buildHighlights(target wordTarget) []documentHighlight {
	occ := target.index.Occurrences(target.word.Text)
	out := make([]documentHighlight, 0, len(occ))
	for i, w := range occ {
		kind := highlightText
		if i == 0 {
			kind = highlightWrite
		}
		out = append(out, documentHighlight{Range: toLSPRange(target.index.WordRange(w)), Kind: kind})
	}
	return out
}
