package fix

import (
	"errors"
	"fmt"
	"sort"

	"lexis/internal/diag"
	"lexis/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	// ApplyModeOnce applies the first fix in document order.
	ApplyModeOnce ApplyMode = iota
	// ApplyModeAll applies the first fix of every diagnostic.
	ApplyModeAll
	ApplyModeID
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID        string
	Title     string
	Code      diag.Code
	Message   string
	Line      int // с единицы
	EditCount int
}

// SkippedFix captures a skipped fix with a reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// Result aggregates applied and skipped fixes together with the new text.
type Result struct {
	Text    string
	Applied []AppliedFix
	Skipped []SkippedFix
}

// Changed reports whether any edit was applied.
func (r *Result) Changed() bool {
	return r != nil && len(r.Applied) > 0
}

type candidate struct {
	id    string
	diag  diag.Diagnostic
	fix   diag.Fix
	first bool // первый fix своей диагностики
	order int
}

type offsetEdit struct {
	start, end int
	newText    string
}

// ID returns the stable identifier of the idx-th fix of d, e.g.
// "LNT1001-3-7-0" for the first fix of a diagnostic at line 3, column 7.
func ID(d diag.Diagnostic, idx int) string {
	return fmt.Sprintf("%s-%d-%d-%d", d.Code.ID(), d.Range.Start.Line+1, d.Range.Start.Character+1, idx)
}

// Apply selects fixes from diagnostics according to opts and applies them to
// text. Edits are interpreted against text; a fix whose edits overlap an
// already selected fix is skipped. The returned text keeps text's line
// endings normalized to \n.
func Apply(text string, diagnostics []diag.Diagnostic, opts ApplyOptions) (*Result, error) {
	index := source.NewLineIndex(text)
	result := &Result{
		Text:    index.Text(),
		Applied: make([]AppliedFix, 0),
		Skipped: make([]SkippedFix, 0),
	}

	candidates, skips := gatherCandidates(diagnostics)
	result.Skipped = append(result.Skipped, skips...)
	if len(candidates) == 0 {
		return result, ErrNoFixes
	}
	sortCandidates(candidates)

	selected, skips := selectCandidates(candidates, opts)
	result.Skipped = append(result.Skipped, skips...)
	if len(selected) == 0 {
		return result, ErrNoFixes
	}

	var accepted []offsetEdit
	for _, cand := range selected {
		edits := make([]offsetEdit, 0, len(cand.fix.Edits))
		for _, e := range cand.fix.Edits {
			edits = append(edits, offsetEdit{
				start:   index.Offset(e.Range.Start),
				end:     index.Offset(e.Range.End),
				newText: e.NewText,
			})
		}
		if reason := validateEdits(edits, accepted); reason != "" {
			result.Skipped = append(result.Skipped, SkippedFix{ID: cand.id, Title: cand.fix.Title, Reason: reason})
			continue
		}
		accepted = append(accepted, edits...)
		result.Applied = append(result.Applied, AppliedFix{
			ID:        cand.id,
			Title:     cand.fix.Title,
			Code:      cand.diag.Code,
			Message:   cand.diag.Message,
			Line:      cand.diag.Range.Start.Line + 1,
			EditCount: len(edits),
		})
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}

	result.Text = splice(index.Text(), accepted)
	return result, nil
}

func gatherCandidates(diagnostics []diag.Diagnostic) ([]candidate, []SkippedFix) {
	cands := make([]candidate, 0)
	skips := make([]SkippedFix, 0)
	seen := make(map[string]struct{})

	order := 0
	for _, d := range diagnostics {
		for idx, f := range d.Fixes {
			id := ID(d, idx)
			if len(f.Edits) == 0 {
				skips = append(skips, SkippedFix{ID: id, Title: f.Title, Reason: "fix has no edits"})
				continue
			}
			if _, dup := seen[id]; dup {
				skips = append(skips, SkippedFix{ID: id, Title: f.Title, Reason: "duplicate fix id"})
				continue
			}
			seen[id] = struct{}{}
			cands = append(cands, candidate{
				id:    id,
				diag:  d,
				fix:   f,
				first: idx == 0,
				order: order,
			})
			order++
		}
	}
	return cands, skips
}

// sortCandidates orders candidates by diagnostic start, then end, then
// insertion order.
func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := candidates[i].diag.Range, candidates[j].diag.Range
		if ri.Start != rj.Start {
			return ri.Start.Before(rj.Start)
		}
		if ri.End != rj.End {
			return ri.End.Before(rj.End)
		}
		return candidates[i].order < candidates[j].order
	})
}

func selectCandidates(candidates []candidate, opts ApplyOptions) ([]candidate, []SkippedFix) {
	switch opts.Mode {
	case ApplyModeID:
		for _, cand := range candidates {
			if cand.id == opts.TargetID {
				return []candidate{cand}, nil
			}
		}
		return nil, []SkippedFix{{ID: opts.TargetID, Reason: "fix id not found"}}
	case ApplyModeAll:
		selected := make([]candidate, 0, len(candidates))
		skipped := make([]SkippedFix, 0)
		for _, cand := range candidates {
			if cand.first {
				selected = append(selected, cand)
				continue
			}
			skipped = append(skipped, SkippedFix{
				ID:     cand.id,
				Title:  cand.fix.Title,
				Reason: "alternative fix; apply it by id",
			})
		}
		return selected, skipped
	case ApplyModeOnce:
		return candidates[:1], nil
	default:
		return nil, nil
	}
}

// validateEdits checks edits against each other and against already
// accepted edits. It returns an empty string when they can be applied.
func validateEdits(edits, accepted []offsetEdit) string {
	for i, e := range edits {
		if e.end < e.start {
			return "edit range is inverted"
		}
		for _, prev := range accepted {
			if editsConflict(prev, e) {
				return "conflicts with a previously applied fix"
			}
		}
		for _, other := range edits[i+1:] {
			if editsConflict(other, e) {
				return "fix edits overlap"
			}
		}
	}
	return ""
}

// editsConflict reports whether two edits overlap. Ranges are half-open; two
// insertions never conflict, and an insertion conflicts with a replacement
// only when it lies strictly inside it.
func editsConflict(a, b offsetEdit) bool {
	if a.start == a.end && b.start == b.end {
		return false
	}
	if a.start == a.end {
		return b.start < a.start && a.start < b.end
	}
	if b.start == b.end {
		return a.start < b.start && b.start < a.end
	}
	return a.start < b.end && b.start < a.end
}

// splice applies non-overlapping edits to text, last edit first so earlier
// offsets stay valid.
func splice(text string, edits []offsetEdit) string {
	sorted := append([]offsetEdit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].start == sorted[j].start {
			return sorted[i].end > sorted[j].end
		}
		return sorted[i].start > sorted[j].start
	})
	buf := []byte(text)
	for _, e := range sorted {
		suffix := append([]byte(nil), buf[e.end:]...)
		buf = append(append(buf[:e.start], e.newText...), suffix...)
	}
	return string(buf)
}
