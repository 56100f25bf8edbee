package lsp

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"lexis/internal/source"
)

// catalogEntry is a fixed completion offered in every document.
type catalogEntry struct {
	ID            int
	Label         string
	Kind          int
	Detail        string
	Documentation string
	InsertText    string
}

// catalog ids are stable: clients echo them back in completionItem/resolve.
var catalog = []catalogEntry{
	{ID: 1, Label: "TODO", Kind: completionKindKeyword, Detail: "work marker",
		Documentation: "Marks work that is still outstanding. Uppercase words are reported by the uppercase rule, so markers are usually allowed through a project `lexis.toml`."},
	{ID: 2, Label: "FIXME", Kind: completionKindKeyword, Detail: "defect marker",
		Documentation: "Marks a known defect that needs a fix before release."},
	{ID: 3, Label: "NOTE", Kind: completionKindKeyword, Detail: "note marker",
		Documentation: "Draws attention to a non-obvious detail of the surrounding text."},
	{ID: 4, Label: "heading", Kind: completionKindSnippet, Detail: "markdown heading", InsertText: "# ",
		Documentation: "Starts a `#` heading. Headings show up as document symbols and nest by level."},
	{ID: 5, Label: "lexis", Kind: completionKindText, Detail: "server name",
		Documentation: "The language server answering this completion."},
}

func catalogByID(id int) (catalogEntry, bool) {
	for _, entry := range catalog {
		if entry.ID == id {
			return entry, true
		}
	}
	return catalogEntry{}, false
}

func catalogByLabel(label string) (catalogEntry, bool) {
	for _, entry := range catalog {
		if entry.Label == label {
			return entry, true
		}
	}
	return catalogEntry{}, false
}

func (s *Server) handleCompletion(_ context.Context, raw json.RawMessage) (any, error) {
	var params completionParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	_, index, ok := s.openDocument(params.TextDocument.URI)
	if !ok {
		return completionList{Items: []completionItem{}}, nil
	}
	return buildCompletion(index, toSourcePosition(params.Position)), nil
}

// buildCompletion offers catalog entries matching the word prefix before the
// cursor, then distinct words of the document with the same prefix.
func buildCompletion(index *source.LineIndex, pos source.Position) completionList {
	prefix := wordPrefix(index, pos)
	items := make([]completionItem, 0, len(catalog))
	seen := make(map[string]struct{})
	for _, entry := range catalog {
		if !strings.HasPrefix(entry.Label, prefix) {
			continue
		}
		data, _ := json.Marshal(completionItemData{ID: entry.ID}) //nolint:errcheck
		items = append(items, completionItem{
			Label:      entry.Label,
			Kind:       entry.Kind,
			InsertText: entry.InsertText,
			Data:       data,
		})
		seen[entry.Label] = struct{}{}
	}

	var words []string
	for n := 0; n < index.LineCount(); n++ {
		for _, w := range source.LineWords(index.Line(n), n) {
			// the word being typed is not a suggestion for itself
			if w.Line == pos.Line && w.Text == prefix {
				continue
			}
			if !strings.HasPrefix(w.Text, prefix) {
				continue
			}
			if _, dup := seen[w.Text]; dup {
				continue
			}
			seen[w.Text] = struct{}{}
			words = append(words, w.Text)
		}
	}
	sort.Strings(words)
	for _, w := range words {
		items = append(items, completionItem{Label: w, Kind: completionKindText})
	}
	return completionList{IsIncomplete: false, Items: items}
}

// wordPrefix returns the part of the word under pos that lies before it.
func wordPrefix(index *source.LineIndex, pos source.Position) string {
	w, ok := index.WordAt(pos)
	if !ok {
		return ""
	}
	line := index.Line(pos.Line)
	cursor := source.ByteOffsetForUTF16(line, pos.Character)
	if cursor < w.Start {
		return ""
	}
	if cursor > w.End {
		cursor = w.End
	}
	return line[w.Start:cursor]
}

func (s *Server) handleCompletionResolve(_ context.Context, raw json.RawMessage) (any, error) {
	var item map[string]json.RawMessage
	if err := decodeParams(raw, &item); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, newResponseError(CodeInvalidParams, "invalid params: missing completion item")
	}
	return resolveCompletion(item), nil
}

// resolveCompletion fills detail and documentation from the catalog. The item
// is kept as raw fields so anything the client attached survives the round
// trip; items without a known catalog id come back unchanged.
func resolveCompletion(item map[string]json.RawMessage) map[string]json.RawMessage {
	raw, ok := item["data"]
	if !ok {
		return item
	}
	var data completionItemData
	if err := json.Unmarshal(raw, &data); err != nil {
		return item
	}
	entry, ok := catalogByID(data.ID)
	if !ok {
		return item
	}
	detail, err := json.Marshal(entry.Detail)
	if err != nil {
		return item
	}
	doc, err := json.Marshal(markupContent{Kind: "markdown", Value: entry.Documentation})
	if err != nil {
		return item
	}
	item["detail"] = detail
	item["documentation"] = doc
	return item
}
