package lsp

import (
	"context"
	"encoding/json"
	"strings"

	"lexis/internal/source"
)

const defaultTabSize = 4

func (s *Server) handleFormatting(_ context.Context, raw json.RawMessage) (any, error) {
	var params documentFormattingParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	_, index, ok := s.openDocument(params.TextDocument.URI)
	if !ok {
		return []textEdit{}, nil
	}
	return formatDocument(index, params.Options), nil
}

func (s *Server) handleRangeFormatting(_ context.Context, raw json.RawMessage) (any, error) {
	var params documentRangeFormattingParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	_, index, ok := s.openDocument(params.TextDocument.URI)
	if !ok {
		return []textEdit{}, nil
	}
	first, last := params.Range.Start.Line, params.Range.End.Line
	if last > first && params.Range.End.Character == 0 {
		// a selection ending at column 0 does not include that line
		last--
	}
	return formatLines(index, first, last, params.Options), nil
}

// formatDocument formats every line, then applies the final newline options.
// Edits are document-ordered and never overlap.
func formatDocument(index *source.LineIndex, opts formattingOptions) []textEdit {
	count := index.LineCount()
	lastContent := -1
	for n := count - 1; n >= 0; n-- {
		if strings.TrimSpace(index.Line(n)) != "" {
			lastContent = n
			break
		}
	}

	var trim *textEdit
	lastFormatted := count - 1
	if opts.TrimFinalNewlines && lastContent >= 0 && lastContent+1 < count-1 {
		trim = &textEdit{
			Range: toLSPRange(source.Range{
				Start: source.Position{Line: lastContent + 1},
				End:   index.End(),
			}),
		}
		lastFormatted = lastContent
	}

	edits := formatLines(index, 0, lastFormatted, opts)
	if trim != nil {
		// the kept text already ends right after a newline
		return append(edits, *trim)
	}

	lastLine := formatLine(index.Line(count-1), opts)
	if opts.InsertFinalNewline && index.Text() != "" && lastLine != "" {
		if n := len(edits); n > 0 && edits[n-1].Range.Start.Line == count-1 {
			edits[n-1].NewText += "\n"
		} else {
			end := toLSPPosition(index.End())
			edits = append(edits, textEdit{Range: lspRange{Start: end, End: end}, NewText: "\n"})
		}
	}
	return edits
}

// formatLines re-indents and trims lines first..last (inclusive, clamped).
func formatLines(index *source.LineIndex, first, last int, opts formattingOptions) []textEdit {
	if first < 0 {
		first = 0
	}
	if last >= index.LineCount() {
		last = index.LineCount() - 1
	}
	edits := []textEdit{}
	for n := first; n <= last; n++ {
		line := index.Line(n)
		formatted := formatLine(line, opts)
		if formatted == line {
			continue
		}
		edits = append(edits, textEdit{
			Range:   toLSPRange(index.LineRange(n, 0, len(line))),
			NewText: formatted,
		})
	}
	return edits
}

func formatLine(line string, opts formattingOptions) string {
	if opts.TrimTrailingWhitespace == nil || *opts.TrimTrailingWhitespace {
		line = strings.TrimRight(line, " \t")
	}
	body := strings.TrimLeft(line, " \t")
	if body == "" {
		return line
	}
	lead := line[:len(line)-len(body)]
	return reindent(lead, opts) + body
}

// reindent rewrites leading whitespace to the same visual width using tabs
// or spaces as requested.
func reindent(lead string, opts formattingOptions) string {
	tabSize := opts.TabSize
	if tabSize <= 0 {
		tabSize = defaultTabSize
	}
	width := 0
	for _, r := range lead {
		if r == '\t' {
			width += tabSize - width%tabSize
		} else {
			width++
		}
	}
	if opts.InsertSpaces {
		return strings.Repeat(" ", width)
	}
	return strings.Repeat("\t", width/tabSize) + strings.Repeat(" ", width%tabSize)
}
