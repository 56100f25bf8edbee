package source

import (
	"unicode"
	"unicode/utf8"
)

// Word is an identifier-like run of letters, digits and underscores.
type Word struct {
	Text  string
	Line  int
	Start int // byte offset within the line
	End   int
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// LineWords returns the words of a single line in order.
func LineWords(line string, lineNo int) []Word {
	var out []Word
	start := -1
	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
		} else if start >= 0 {
			out = append(out, Word{Text: line[start:i], Line: lineNo, Start: start, End: i})
			start = -1
		}
		i += size
	}
	if start >= 0 {
		out = append(out, Word{Text: line[start:], Line: lineNo, Start: start, End: len(line)})
	}
	return out
}

// WordAt returns the word touching pos, preferring the word that starts at
// the cursor over one that ends there.
func (li *LineIndex) WordAt(pos Position) (Word, bool) {
	if pos.Line < 0 || pos.Line >= li.LineCount() {
		return Word{}, false
	}
	line := li.Line(pos.Line)
	offset := ByteOffsetForUTF16(line, pos.Character)
	var touching Word
	found := false
	for _, w := range LineWords(line, pos.Line) {
		if w.Start <= offset && offset < w.End {
			return w, true
		}
		if w.End == offset {
			touching = w
			found = true
		}
	}
	return touching, found
}

// Occurrences returns every whole-word occurrence of name in document order.
func (li *LineIndex) Occurrences(name string) []Word {
	if name == "" {
		return nil
	}
	var out []Word
	for n := 0; n < li.LineCount(); n++ {
		for _, w := range LineWords(li.Line(n), n) {
			if w.Text == name {
				out = append(out, w)
			}
		}
	}
	return out
}

// WordRange converts a word to its protocol range.
func (li *LineIndex) WordRange(w Word) Range {
	return li.LineRange(w.Line, w.Start, w.End)
}
