package source

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// NormalizeNewlines заменяет \r\n и одиночные \r на \n.
// Columns inside a line are unchanged, so positions computed on the result
// are valid for the original text.
func NormalizeNewlines(text string) (string, bool) {
	if !strings.Contains(text, "\r") {
		return text, false
	}
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\r' {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('\n')
		if i+1 < len(text) && text[i+1] == '\n' {
			i++
		}
	}
	return sb.String(), true
}

// SplitLines normalizes line endings and splits text into lines. A trailing
// newline yields a final empty line, the same way editors count lines.
func SplitLines(text string) []string {
	normalized, _ := NormalizeNewlines(text)
	return strings.Split(normalized, "\n")
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	units := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		units += utf16Units(r)
		i += size
	}
	return units
}

// ByteOffsetForUTF16 converts a UTF-16 column in line to a byte offset,
// clamping to the line length. A column that falls inside a surrogate pair
// snaps to the start of that rune.
func ByteOffsetForUTF16(line string, units int) int {
	if units <= 0 {
		return 0
	}
	seen := 0
	i := 0
	for i < len(line) {
		r, size := utf8.DecodeRuneInString(line[i:])
		need := utf16Units(r)
		if seen+need > units {
			break
		}
		seen += need
		i += size
		if seen == units {
			break
		}
	}
	return i
}

func utf16Units(r rune) int {
	if r == utf8.RuneError {
		return 1
	}
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}
