package checker

import (
	"errors"
	"fmt"
	"sort"

	"lexis/internal/diag"
	"lexis/internal/settings"
	"lexis/internal/source"
)

// SourceName tags every diagnostic produced by this engine.
const SourceName = "lexis"

// ErrAnalysisFailure wraps errors and panics raised by a checker.
var ErrAnalysisFailure = errors.New("analysis failed")

// Checker computes diagnostics for a document. Implementations must be
// deterministic and must not perform I/O.
type Checker interface {
	Check(text string, s settings.Settings) ([]diag.Diagnostic, error)
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(text string, s settings.Settings) ([]diag.Diagnostic, error)

func (f CheckerFunc) Check(text string, s settings.Settings) ([]diag.Diagnostic, error) {
	return f(text, s)
}

// Match is a single rule hit inside one line. Start and End are byte offsets
// into the line.
type Match struct {
	Start    int
	End      int
	Severity diag.Severity
	Code     diag.Code
	Message  string
	// FixTitle and FixText describe an optional replacement of the matched
	// text; an empty title means no fix is offered.
	FixTitle string
	FixText  string
}

// Rule finds matches in a single line.
type Rule interface {
	Code() diag.Code
	Match(line string, s settings.Settings) []Match
}

// LineChecker applies rules to each line of a document.
type LineChecker struct {
	rules []Rule
}

// NewLineChecker returns a checker running rules in the given order. The
// order breaks ties between matches starting at the same column.
func NewLineChecker(rules ...Rule) *LineChecker {
	return &LineChecker{rules: rules}
}

// Default returns the checker with the built-in rules.
func Default() *LineChecker {
	return NewLineChecker(UppercaseRule{}, BannedTokenRule{})
}

// Check implements Checker.
func (c *LineChecker) Check(text string, s settings.Settings) ([]diag.Diagnostic, error) {
	if text == "" || s.MaxNumberOfProblems <= 0 {
		return nil, nil
	}
	li := source.NewLineIndex(text)
	bag := diag.NewBag(s.MaxNumberOfProblems)
	for n := 0; n < li.LineCount(); n++ {
		line := li.Line(n)
		var matches []Match
		for _, rule := range c.rules {
			matches = append(matches, rule.Match(line, s)...)
		}
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Start < matches[j].Start
		})
		for _, m := range matches {
			if m.Start < 0 || m.End < m.Start || m.End > len(line) {
				return nil, fmt.Errorf("rule %s: match %d-%d outside line %d", m.Code.ID(), m.Start, m.End, n)
			}
			rng := li.LineRange(n, m.Start, m.End)
			d := diag.New(m.Severity, m.Code, rng, m.Message).WithSource(SourceName)
			if m.FixTitle != "" {
				d = d.WithFix(m.FixTitle, diag.FixEdit{Range: rng, NewText: m.FixText})
			}
			if !bag.Add(d) {
				return bag.Items(), nil
			}
		}
		if bag.Full() {
			break
		}
	}
	return bag.Items(), nil
}
