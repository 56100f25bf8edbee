// Package settings holds the process-wide analysis configuration pushed by
// the client and the project file baseline it falls back to.
package settings

import (
	"encoding/json"
	"fmt"
	"slices"

	"lexis/internal/diag"
)

// DefaultMaxProblems caps diagnostics per document when nothing else is set.
const DefaultMaxProblems = 100

// Section is the configuration key clients nest settings under.
const Section = "lexis"

// Settings is the analysis configuration. It is replaced wholesale, never
// merged field by field with a previous value.
type Settings struct {
	MaxNumberOfProblems int
	UppercaseRule       bool
	BannedTokens        []string
	BannedSeverity      diag.Severity
	// Extra carries keys the core does not recognize; checkers may read them.
	Extra map[string]json.RawMessage
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		MaxNumberOfProblems: DefaultMaxProblems,
		UppercaseRule:       true,
		BannedSeverity:      diag.SevError,
	}
}

// Clone returns a deep copy so the caller may mutate slices and maps freely.
func (s Settings) Clone() Settings {
	out := s
	out.BannedTokens = slices.Clone(s.BannedTokens)
	if s.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(s.Extra))
		for k, v := range s.Extra {
			out.Extra[k] = slices.Clone(v)
		}
	}
	return out
}

type wireSettings struct {
	MaxNumberOfProblems *int     `json:"maxNumberOfProblems,omitempty"`
	Uppercase           *bool    `json:"uppercase,omitempty"`
	BannedTokens        []string `json:"bannedTokens,omitempty"`
	BannedSeverity      *string  `json:"bannedSeverity,omitempty"`
}

var knownKeys = []string{"maxNumberOfProblems", "uppercase", "bannedTokens", "bannedSeverity"}

// Decode parses a workspace/didChangeConfiguration settings payload. Fields
// the payload leaves unset take their value from baseline.
func Decode(raw json.RawMessage, baseline Settings) (Settings, error) {
	out := baseline.Clone()
	out.Extra = nil
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil {
		return baseline, fmt.Errorf("decode settings: %w", err)
	}
	section, ok := root[Section]
	if !ok || string(section) == "null" {
		return out, nil
	}
	var wire wireSettings
	if err := json.Unmarshal(section, &wire); err != nil {
		return baseline, fmt.Errorf("decode %q settings: %w", Section, err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(section, &keys); err != nil {
		return baseline, fmt.Errorf("decode %q settings: %w", Section, err)
	}

	if wire.MaxNumberOfProblems != nil {
		out.MaxNumberOfProblems = max(*wire.MaxNumberOfProblems, 0)
	}
	if wire.Uppercase != nil {
		out.UppercaseRule = *wire.Uppercase
	}
	if _, ok := keys["bannedTokens"]; ok {
		out.BannedTokens = slices.Clone(wire.BannedTokens)
	}
	if wire.BannedSeverity != nil {
		sev, err := diag.ParseSeverity(*wire.BannedSeverity)
		if err != nil {
			return baseline, fmt.Errorf("decode %q settings: %w", Section, err)
		}
		out.BannedSeverity = sev
	}
	for k, v := range keys {
		if slices.Contains(knownKeys, k) {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage)
		}
		out.Extra[k] = v
	}
	return out, nil
}
