package lsp

import (
	"context"
	"encoding/json"
	"strings"

	"lexis/internal/source"
)

func (s *Server) handleDocumentSymbol(_ context.Context, raw json.RawMessage) (any, error) {
	var params documentSymbolParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	_, index, ok := s.openDocument(params.TextDocument.URI)
	if !ok {
		return []documentSymbol{}, nil
	}
	return buildDocumentSymbols(index), nil
}

type heading struct {
	level int
	line  int
	name  string
	start int // byte offset of the title within the line
}

// parseHeading recognizes ATX headings: 1-6 '#' followed by a space or the
// end of the line, with at most three spaces of indentation.
func parseHeading(line string, lineNo int) (heading, bool) {
	indent := len(line) - len(strings.TrimLeft(line, " "))
	if indent > 3 {
		return heading{}, false
	}
	rest := line[indent:]
	level := 0
	for level < len(rest) && rest[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return heading{}, false
	}
	if level < len(rest) && rest[level] != ' ' && rest[level] != '\t' {
		return heading{}, false
	}
	title := strings.TrimSpace(rest[level:])
	title = strings.TrimSpace(strings.TrimRight(title, "#"))
	if title == "" {
		return heading{}, false
	}
	start := indent + level + strings.Index(rest[level:], title)
	return heading{level: level, line: lineNo, name: title, start: start}, true
}

// buildDocumentSymbols turns headings into a tree. A heading spans until the
// next heading of the same or a higher level, or the end of the document.
func buildDocumentSymbols(index *source.LineIndex) []documentSymbol {
	var headings []heading
	inFence := false
	for n := 0; n < index.LineCount(); n++ {
		line := index.Line(n)
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if h, ok := parseHeading(line, n); ok {
			headings = append(headings, h)
		}
	}

	symbols, _ := nestHeadings(index, headings, 0, 0)
	if symbols == nil {
		return []documentSymbol{}
	}
	return symbols
}

// nestHeadings consumes headings[i:] deeper than parentLevel and returns the
// built siblings plus the index of the first heading not consumed.
func nestHeadings(index *source.LineIndex, headings []heading, i, parentLevel int) ([]documentSymbol, int) {
	var out []documentSymbol
	for i < len(headings) && headings[i].level > parentLevel {
		h := headings[i]
		children, next := nestHeadings(index, headings, i+1, h.level)

		end := index.End()
		if next < len(headings) {
			prev := headings[next].line - 1
			end = source.Position{Line: prev, Character: source.UTF16Len(index.Line(prev))}
		}
		out = append(out, documentSymbol{
			Name:           h.name,
			Detail:         strings.Repeat("#", h.level),
			Kind:           symbolKindString,
			Range:          toLSPRange(source.Range{Start: source.Position{Line: h.line}, End: end}),
			SelectionRange: toLSPRange(index.LineRange(h.line, h.start, h.start+len(h.name))),
			Children:       children,
		})
		i = next
	}
	return out, i
}
