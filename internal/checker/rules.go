package checker

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"lexis/internal/diag"
	"lexis/internal/settings"
	"lexis/internal/source"
)

var (
	uppercaseWord = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	folder        = cases.Fold()
)

// UppercaseRule flags words written entirely in capitals.
type UppercaseRule struct{}

func (UppercaseRule) Code() diag.Code { return diag.LintUppercaseWord }

func (UppercaseRule) Match(line string, s settings.Settings) []Match {
	if !s.UppercaseRule {
		return nil
	}
	locs := uppercaseWord.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make([]Match, 0, len(locs))
	for _, loc := range locs {
		word := line[loc[0]:loc[1]]
		out = append(out, Match{
			Start:    loc[0],
			End:      loc[1],
			Severity: diag.SevWarning,
			Code:     diag.LintUppercaseWord,
			Message:  word + " is all uppercase.",
			FixTitle: "Convert to lowercase",
			FixText:  strings.ToLower(word),
		})
	}
	return out
}

// BannedTokenRule flags words from Settings.BannedTokens, compared with
// Unicode case folding.
type BannedTokenRule struct{}

func (BannedTokenRule) Code() diag.Code { return diag.LintBannedToken }

func (BannedTokenRule) Match(line string, s settings.Settings) []Match {
	if len(s.BannedTokens) == 0 {
		return nil
	}
	banned := make(map[string]struct{}, len(s.BannedTokens))
	for _, tok := range s.BannedTokens {
		if tok = strings.TrimSpace(tok); tok != "" {
			banned[folder.String(tok)] = struct{}{}
		}
	}
	sev := s.BannedSeverity
	if sev == 0 {
		sev = diag.SevError
	}
	var out []Match
	for _, w := range source.LineWords(line, 0) {
		if _, ok := banned[folder.String(w.Text)]; !ok {
			continue
		}
		out = append(out, Match{
			Start:    w.Start,
			End:      w.End,
			Severity: sev,
			Code:     diag.LintBannedToken,
			Message:  fmt.Sprintf("banned token %q", w.Text),
			FixTitle: "Remove banned token",
		})
	}
	return out
}

// IsBanned reports whether word is in the banned list of s.
func IsBanned(word string, s settings.Settings) bool {
	if word == "" {
		return false
	}
	folded := folder.String(word)
	for _, tok := range s.BannedTokens {
		if folder.String(strings.TrimSpace(tok)) == folded {
			return true
		}
	}
	return false
}
