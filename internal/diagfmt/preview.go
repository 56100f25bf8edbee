package diagfmt

import (
	"fmt"
	"strings"

	"lexis/internal/diag"
	"lexis/internal/source"
)

type fixEditPreview struct {
	before []string
	after  []string
}

// buildFixEditPreview renders the lines touched by edit before and after it
// is applied.
func buildFixEditPreview(index *source.LineIndex, edit diag.FixEdit) (fixEditPreview, error) {
	if index == nil {
		return fixEditPreview{}, fmt.Errorf("nil line index")
	}
	startLine := edit.Range.Start.Line
	endLine := max(edit.Range.End.Line, startLine)
	if startLine < 0 || endLine >= index.LineCount() {
		return fixEditPreview{}, fmt.Errorf("edit lines %d-%d out of range", startLine, endLine)
	}

	blockStart := index.LineStart(startLine)
	blockEnd := index.LineStart(endLine) + len(index.Line(endLine))
	text := index.Text()
	original := text[blockStart:blockEnd]

	relStart := index.Offset(edit.Range.Start) - blockStart
	relEnd := index.Offset(edit.Range.End) - blockStart
	if relStart < 0 || relEnd < relStart || relEnd > len(original) {
		return fixEditPreview{}, fmt.Errorf("edit range %d-%d out of range for preview block", relStart, relEnd)
	}

	// правка целиком внутри блока, склеиваем до/после
	updated := original[:relStart] + edit.NewText + original[relEnd:]
	return fixEditPreview{
		before: strings.Split(original, "\n"),
		after:  strings.Split(updated, "\n"),
	}, nil
}
