package checker

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"lexis/internal/diag"
	"lexis/internal/settings"
	"lexis/internal/source"
)

func bannedSettings(limit int, tokens ...string) settings.Settings {
	s := settings.Default()
	s.UppercaseRule = false
	s.MaxNumberOfProblems = limit
	s.BannedTokens = tokens
	return s
}

func rangeOf(line, start, end int) source.Range {
	return source.Range{
		Start: source.Position{Line: line, Character: start},
		End:   source.Position{Line: line, Character: end},
	}
}

func TestCapKeepsEarliestMatches(t *testing.T) {
	text := "foo bar\nbaz foo\nfoo"
	got := NewEngine(nil).Compute(text, bannedSettings(2, "foo"))
	if len(got) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(got))
	}
	want := []source.Range{rangeOf(0, 0, 3), rangeOf(1, 4, 7)}
	for i, d := range got {
		if d.Range != want[i] {
			t.Fatalf("diagnostic %d range = %+v, want %+v", i, d.Range, want[i])
		}
		if d.Code != diag.LintBannedToken || d.Severity != diag.SevError {
			t.Fatalf("diagnostic %d: unexpected code/severity %v/%v", i, d.Code, d.Severity)
		}
		if d.Source != SourceName {
			t.Fatalf("diagnostic %d: unexpected source %q", i, d.Source)
		}
	}
}

func TestComputeIsPure(t *testing.T) {
	text := "HELLO world\nsecret SECRET\n"
	s := settings.Default()
	s.BannedTokens = []string{"secret"}
	eng := NewEngine(nil)
	first := eng.Compute(text, s)
	second := eng.Compute(text, s)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ:\n%+v\n%+v", first, second)
	}
	if len(first) != 4 {
		t.Fatalf("expected 4 diagnostics, got %d", len(first))
	}
}

func TestEmptyInputs(t *testing.T) {
	eng := NewEngine(nil)
	if got := eng.Compute("", settings.Default()); len(got) != 0 {
		t.Fatalf("empty text produced %d diagnostics", len(got))
	}
	if got := eng.Compute("ALL CAPS", bannedSettings(0, "caps")); len(got) != 0 {
		t.Fatalf("zero cap produced %d diagnostics", len(got))
	}
}

func TestLineEndingsDoNotShiftLines(t *testing.T) {
	s := bannedSettings(10, "x")
	eng := NewEngine(nil)
	lf := eng.Compute("a\nb x\n\nx", s)
	crlf := eng.Compute("a\r\nb x\r\n\r\nx", s)
	if !reflect.DeepEqual(lf, crlf) {
		t.Fatalf("line ending variants disagree:\n%+v\n%+v", lf, crlf)
	}
	if len(lf) != 2 || lf[0].Range.Start.Line != 1 || lf[1].Range.Start.Line != 3 {
		t.Fatalf("unexpected lines: %+v", lf)
	}
}

func TestUppercaseRule(t *testing.T) {
	got := NewEngine(nil).Compute("say HELLO to A friend", settings.Default())
	if len(got) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(got))
	}
	d := got[0]
	if d.Message != "HELLO is all uppercase." || d.Severity != diag.SevWarning {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if d.Range != rangeOf(0, 4, 9) {
		t.Fatalf("unexpected range %+v", d.Range)
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Edits[0].NewText != "hello" {
		t.Fatalf("unexpected fix %+v", d.Fixes)
	}
}

func TestMatchesOrderedByColumnAcrossRules(t *testing.T) {
	s := settings.Default()
	s.BannedTokens = []string{"foo"}
	got := NewEngine(nil).Compute("foo BAR FOO", s)
	codes := make([]diag.Code, 0, len(got))
	for _, d := range got {
		codes = append(codes, d.Code)
	}
	want := []diag.Code{diag.LintBannedToken, diag.LintUppercaseWord, diag.LintUppercaseWord, diag.LintBannedToken}
	if !reflect.DeepEqual(codes, want) {
		t.Fatalf("codes = %v, want %v", codes, want)
	}
}

func TestBannedTokenCaseFoldingAndUTF16Columns(t *testing.T) {
	s := bannedSettings(10, "café")
	s.BannedSeverity = diag.SevHint
	got := NewEngine(nil).Compute("😀 CAFÉ Café", s)
	if len(got) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(got))
	}
	if got[0].Range != rangeOf(0, 3, 7) {
		t.Fatalf("unexpected first range %+v", got[0].Range)
	}
	if got[1].Severity != diag.SevHint {
		t.Fatalf("unexpected severity %v", got[1].Severity)
	}
}

type panicRule struct{}

func (panicRule) Code() diag.Code { return diag.UnknownCode }

func (panicRule) Match(string, settings.Settings) []Match { panic("boom") }

func TestPanickingRuleDegradesToNoDiagnostics(t *testing.T) {
	var logged []string
	eng := NewEngine(NewLineChecker(panicRule{}), WithLogger(func(format string, args ...any) {
		logged = append(logged, format)
	}))
	if got := eng.Compute("text", settings.Default()); got != nil {
		t.Fatalf("expected nil diagnostics, got %+v", got)
	}
	if len(logged) != 1 {
		t.Fatalf("expected failure to be logged once, got %d", len(logged))
	}
}

func TestCheckerErrorDegrades(t *testing.T) {
	var msg string
	failing := CheckerFunc(func(string, settings.Settings) ([]diag.Diagnostic, error) {
		return nil, errors.New("parser exploded")
	})
	eng := NewEngine(failing, WithLogger(func(format string, args ...any) {
		if len(args) > 0 {
			if err, ok := args[0].(error); ok {
				msg = err.Error()
				if !errors.Is(err, ErrAnalysisFailure) {
					t.Errorf("expected ErrAnalysisFailure, got %v", err)
				}
			}
		}
	}))
	if got := eng.Compute("text", settings.Default()); len(got) != 0 {
		t.Fatalf("expected no diagnostics, got %d", len(got))
	}
	if !strings.Contains(msg, "parser exploded") {
		t.Fatalf("unexpected log message %q", msg)
	}
}

func TestEngineCapsPluggedChecker(t *testing.T) {
	noisy := CheckerFunc(func(string, settings.Settings) ([]diag.Diagnostic, error) {
		out := make([]diag.Diagnostic, 5)
		for i := range out {
			out[i] = diag.New(diag.SevInfo, diag.UnknownCode, rangeOf(i, 0, 1), "n")
		}
		return out, nil
	})
	s := settings.Default()
	s.MaxNumberOfProblems = 3
	got := NewEngine(noisy).Compute("x", s)
	if len(got) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(got))
	}
	if got[0].Source != SourceName {
		t.Fatalf("expected source to be stamped, got %q", got[0].Source)
	}
}

func TestIsBanned(t *testing.T) {
	s := bannedSettings(1, " Foo ")
	if !IsBanned("FOO", s) {
		t.Fatal("expected FOO to be banned")
	}
	if IsBanned("food", s) || IsBanned("", s) {
		t.Fatal("unexpected banned match")
	}
}
