package source

import (
	"fmt"
	"sort"

	"fortio.org/safecast"
)

// LineIndex maps between byte offsets of normalized text and protocol
// positions. It is immutable once built.
type LineIndex struct {
	text   string
	starts []uint32 // byte offset of the first character of every line
}

// NewLineIndex normalizes line endings in text and indexes line starts.
func NewLineIndex(text string) *LineIndex {
	normalized, _ := NormalizeNewlines(text)
	starts := make([]uint32, 1, 1+len(normalized)/32)
	for i := 0; i < len(normalized); i++ {
		if normalized[i] != '\n' {
			continue
		}
		next, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			panic(fmt.Errorf("line offset overflow: %w", err))
		}
		starts = append(starts, next)
	}
	return &LineIndex{text: normalized, starts: starts}
}

// Text returns the normalized text.
func (li *LineIndex) Text() string {
	return li.text
}

// LineCount returns the number of lines, counting a trailing empty line.
func (li *LineIndex) LineCount() int {
	return len(li.starts)
}

// Line returns the content of line n without its terminator, or "" when n is
// out of range.
func (li *LineIndex) Line(n int) string {
	if n < 0 || n >= len(li.starts) {
		return ""
	}
	start := int(li.starts[n])
	end := len(li.text)
	if n+1 < len(li.starts) {
		end = int(li.starts[n+1]) - 1
	}
	return li.text[start:end]
}

// LineStart returns the byte offset of line n, clamped to the text bounds.
func (li *LineIndex) LineStart(n int) int {
	if n <= 0 {
		return 0
	}
	if n >= len(li.starts) {
		return len(li.text)
	}
	return int(li.starts[n])
}

// Offset converts a position to a byte offset. Positions past the end of a
// line clamp to the line end; lines past the end clamp to the text end.
func (li *LineIndex) Offset(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(li.starts) {
		return len(li.text)
	}
	return li.LineStart(pos.Line) + ByteOffsetForUTF16(li.Line(pos.Line), pos.Character)
}

// Position converts a byte offset to a position.
func (li *LineIndex) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.text) {
		offset = len(li.text)
	}
	// бинпоиск: последняя строка, которая начинается не позже offset
	line := sort.Search(len(li.starts), func(i int) bool {
		return int(li.starts[i]) > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	start := int(li.starts[line])
	return Position{Line: line, Character: UTF16Len(li.text[start:offset])}
}

// Range converts a byte span to a protocol range.
func (li *LineIndex) Range(span Span) Range {
	return Range{
		Start: li.Position(int(span.Start)),
		End:   li.Position(int(span.End)),
	}
}

// LineRange returns the range of a byte interval [start, end) within line n.
func (li *LineIndex) LineRange(n, start, end int) Range {
	text := li.Line(n)
	if start > len(text) {
		start = len(text)
	}
	if end > len(text) {
		end = len(text)
	}
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	return Range{
		Start: Position{Line: n, Character: UTF16Len(text[:start])},
		End:   Position{Line: n, Character: UTF16Len(text[:end])},
	}
}

// End returns the position just past the last character.
func (li *LineIndex) End() Position {
	return li.Position(len(li.text))
}
