package lsp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"lexis/internal/source"
)

func TestCompletionFiltersByPrefix(t *testing.T) {
	s, _ := newReadyServer(t, ServerOptions{})
	openDoc(t, s, uriA, "plaintext", "FIXup FIXED fixture\nFI")

	got, err := s.handleCompletion(context.Background(), mustParams(t, posParams(uriA, 1, 2)))
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	list := got.(completionList)
	var labels []string
	for _, item := range list.Items {
		labels = append(labels, item.Label)
	}
	want := []string{"FIXME", "FIXED", "FIXup"}
	if strings.Join(labels, ",") != strings.Join(want, ",") {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	if string(list.Items[0].Data) != `{"id":2}` {
		t.Fatalf("catalog item must carry its id, got %s", list.Items[0].Data)
	}
	if list.Items[1].Kind != completionKindText || list.Items[1].Data != nil {
		t.Fatalf("document words are plain text items: %+v", list.Items[1])
	}
}

func TestCompletionOffWordOffersEverything(t *testing.T) {
	s, _ := newReadyServer(t, ServerOptions{})
	openDoc(t, s, uriA, "plaintext", "alpha beta alpha ")
	got, err := s.handleCompletion(context.Background(), mustParams(t, posParams(uriA, 0, 17)))
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	list := got.(completionList)
	if len(list.Items) != len(catalog)+2 {
		t.Fatalf("expected catalog plus 2 distinct words, got %d", len(list.Items))
	}
}

func TestCompletionResolve(t *testing.T) {
	s, _ := newReadyServer(t, ServerOptions{})

	got, err := s.handleCompletionResolve(context.Background(), json.RawMessage(`{"label":"TODO","data":{"id":1},"sortText":"a"}`))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	item := got.(map[string]json.RawMessage)
	if string(item["detail"]) != `"work marker"` {
		t.Fatalf("unexpected detail %s", item["detail"])
	}
	if string(item["sortText"]) != `"a"` {
		t.Fatal("client fields must survive resolve")
	}

	unknown := `{"label":"x","data":{"id":999}}`
	got, err = s.handleCompletionResolve(context.Background(), json.RawMessage(unknown))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, ok := got.(map[string]json.RawMessage)["detail"]; ok {
		t.Fatal("unknown ids must come back unchanged")
	}
}

func TestHover(t *testing.T) {
	s, _ := newReadyServer(t, ServerOptions{})
	openDoc(t, s, uriA, "plaintext", "NOTE spam spam eggs\n   ")
	if err := s.applySettings(json.RawMessage(`{"lexis":{"bannedTokens":["SPAM"],"bannedSeverity":"warning"}}`)); err != nil {
		t.Fatalf("settings: %v", err)
	}

	cases := []struct {
		line, char int
		contains   string
	}{
		{0, 2, "**NOTE** (note marker)"},
		{0, 6, "`spam` is a banned token (warning)."},
		{0, 16, "`eggs`: 1 occurrence in this document."},
	}
	for _, tc := range cases {
		got, err := s.handleHover(context.Background(), mustParams(t, posParams(uriA, tc.line, tc.char)))
		if err != nil {
			t.Fatalf("hover: %v", err)
		}
		h, ok := got.(*hover)
		if !ok || !strings.Contains(h.Contents.Value, tc.contains) {
			t.Fatalf("hover at %d:%d = %+v, want %q", tc.line, tc.char, got, tc.contains)
		}
	}

	got, err := s.handleHover(context.Background(), mustParams(t, posParams(uriA, 1, 1)))
	if err != nil || got != nil {
		t.Fatalf("expected no hover off-word, got %v, %v", got, err)
	}
}

func TestDocumentSymbolsNestByLevel(t *testing.T) {
	text := strings.Join([]string{
		"# Intro",
		"text",
		"## Setup",
		"```",
		"# not a heading",
		"```",
		"### Details ##",
		"# Usage",
		"#hashtag",
	}, "\n")
	symbols := buildDocumentSymbols(source.NewLineIndex(text))
	if len(symbols) != 2 {
		t.Fatalf("expected 2 top-level symbols, got %d", len(symbols))
	}
	intro := symbols[0]
	if intro.Name != "Intro" || intro.Range != rng(0, 0, 6, 14) {
		t.Fatalf("unexpected intro symbol %+v", intro)
	}
	if len(intro.Children) != 1 || intro.Children[0].Name != "Setup" {
		t.Fatalf("unexpected children %+v", intro.Children)
	}
	details := intro.Children[0].Children
	if len(details) != 1 || details[0].Name != "Details" || details[0].SelectionRange != rng(6, 4, 6, 11) {
		t.Fatalf("unexpected details %+v", details)
	}
	if symbols[1].Name != "Usage" || symbols[1].Range.End != (position{Line: 8, Character: 8}) {
		t.Fatalf("unexpected usage symbol %+v", symbols[1])
	}
	if got := buildDocumentSymbols(source.NewLineIndex("plain")); got == nil || len(got) != 0 {
		t.Fatalf("expected [], got %v", got)
	}
}

func TestFormatting(t *testing.T) {
	index := source.NewLineIndex("a  \n\tb\n  \t c\n\n\n")
	edits := formatDocument(index, formattingOptions{TabSize: 4, InsertSpaces: true, TrimFinalNewlines: true})
	want := []textEdit{
		{Range: rng(0, 0, 0, 3), NewText: "a"},
		{Range: rng(1, 0, 1, 2), NewText: "    b"},
		{Range: rng(2, 0, 2, 5), NewText: "     c"},
		{Range: rng(3, 0, 5, 0), NewText: ""},
	}
	if len(edits) != len(want) {
		t.Fatalf("expected %d edits, got %+v", len(want), edits)
	}
	for i := range want {
		if edits[i] != want[i] {
			t.Fatalf("edit %d = %+v, want %+v", i, edits[i], want[i])
		}
	}
}

func TestFormattingTabsAndFinalNewline(t *testing.T) {
	index := source.NewLineIndex("        x\n  y ")
	edits := formatDocument(index, formattingOptions{TabSize: 4, InsertFinalNewline: true})
	want := []textEdit{
		{Range: rng(0, 0, 0, 9), NewText: "\t\tx"},
		{Range: rng(1, 0, 1, 4), NewText: "  y\n"},
	}
	if len(edits) != 2 || edits[0] != want[0] || edits[1] != want[1] {
		t.Fatalf("unexpected edits %+v", edits)
	}

	clean := source.NewLineIndex("done\n")
	if got := formatDocument(clean, formattingOptions{TabSize: 4, InsertSpaces: true, InsertFinalNewline: true}); len(got) != 0 {
		t.Fatalf("formatted text must produce no edits, got %+v", got)
	}
}

func TestRangeFormattingStaysInRange(t *testing.T) {
	s, _ := newReadyServer(t, ServerOptions{})
	openDoc(t, s, uriA, "plaintext", "a \nb \nc ")
	got, err := s.handleRangeFormatting(context.Background(), mustParams(t, documentRangeFormattingParams{
		TextDocument: textDocumentIdentifier{URI: uriA},
		Range:        rng(1, 0, 2, 0),
		Options:      formattingOptions{TabSize: 2, InsertSpaces: true, InsertFinalNewline: true},
	}))
	if err != nil {
		t.Fatalf("rangeFormatting: %v", err)
	}
	edits := got.([]textEdit)
	if len(edits) != 1 || edits[0].Range != rng(1, 0, 1, 2) || edits[0].NewText != "b" {
		t.Fatalf("unexpected edits %+v", edits)
	}
}

func TestNavigationAcrossDocuments(t *testing.T) {
	const uriC = "file:///work/c.md"
	s, _ := newReadyServer(t, ServerOptions{})
	openDoc(t, s, uriA, "plaintext", "use widget\nwidget again")
	openDoc(t, s, uriB, "plaintext", "the widget")
	openDoc(t, s, uriC, "markdown", "widget")

	got, err := s.handleDefinition(context.Background(), mustParams(t, posParams(uriA, 1, 2)))
	if err != nil {
		t.Fatalf("definition: %v", err)
	}
	defs := got.([]location)
	if len(defs) != 2 || defs[0] != (location{URI: uriA, Range: rng(0, 4, 0, 10)}) || defs[1] != (location{URI: uriB, Range: rng(0, 4, 0, 10)}) {
		t.Fatalf("unexpected definitions %+v", defs)
	}

	params := referenceParams{TextDocument: textDocumentIdentifier{URI: uriA}, Position: position{Line: 1, Character: 0}}
	got, err = s.handleReferences(context.Background(), mustParams(t, params))
	if err != nil {
		t.Fatalf("references: %v", err)
	}
	if refs := got.([]location); len(refs) != 3 || refs[0].Range != rng(1, 0, 1, 6) {
		t.Fatalf("references without declaration: %+v", refs)
	}
	params.Context.IncludeDeclaration = true
	got, err = s.handleReferences(context.Background(), mustParams(t, params))
	if err != nil {
		t.Fatalf("references: %v", err)
	}
	if refs := got.([]location); len(refs) != 4 || refs[0].Range != rng(0, 4, 0, 10) {
		t.Fatalf("references with declaration: %+v", refs)
	}

	got, err = s.handleDocumentHighlight(context.Background(), mustParams(t, posParams(uriA, 0, 5)))
	if err != nil {
		t.Fatalf("highlight: %v", err)
	}
	highlights := got.([]documentHighlight)
	if len(highlights) != 2 || highlights[0].Kind != highlightWrite || highlights[1].Kind != highlightText {
		t.Fatalf("unexpected highlights %+v", highlights)
	}

	got, err = s.handleDefinition(context.Background(), mustParams(t, posParams(uriA, 0, 3)))
	if err != nil {
		t.Fatalf("definition: %v", err)
	}
	if defs := got.([]location); len(defs) != 1 {
		t.Fatalf("expected only the local definition of 'use', got %+v", defs)
	}
}

func TestCodeActionFromFix(t *testing.T) {
	s, _ := newReadyServer(t, ServerOptions{})
	openDoc(t, s, uriA, "plaintext", "fine\nvery LOUD text")

	params := codeActionParams{TextDocument: textDocumentIdentifier{URI: uriA}, Range: rng(1, 6, 1, 6)}
	got, err := s.handleCodeAction(context.Background(), mustParams(t, params))
	if err != nil {
		t.Fatalf("codeAction: %v", err)
	}
	actions := got.([]codeAction)
	if len(actions) != 1 {
		t.Fatalf("expected 1 action, got %+v", actions)
	}
	action := actions[0]
	if action.Title != "Convert to lowercase" || action.Kind != codeActionQuickFix {
		t.Fatalf("unexpected action %+v", action)
	}
	edits := action.Edit.Changes[uriA]
	if len(edits) != 1 || edits[0].Range != rng(1, 5, 1, 9) || edits[0].NewText != "loud" {
		t.Fatalf("unexpected edits %+v", edits)
	}

	params.Range = rng(0, 0, 0, 2)
	got, err = s.handleCodeAction(context.Background(), mustParams(t, params))
	if err != nil {
		t.Fatalf("codeAction: %v", err)
	}
	if actions := got.([]codeAction); len(actions) != 0 {
		t.Fatalf("expected no actions outside findings, got %+v", actions)
	}

	params.Range = rng(1, 6, 1, 6)
	params.Context.Only = []string{"refactor"}
	got, err = s.handleCodeAction(context.Background(), mustParams(t, params))
	if err != nil {
		t.Fatalf("codeAction: %v", err)
	}
	if actions := got.([]codeAction); len(actions) != 0 {
		t.Fatalf("only=refactor must filter quick fixes, got %+v", actions)
	}
}

func TestRename(t *testing.T) {
	s, _ := newReadyServer(t, ServerOptions{})
	openDoc(t, s, uriA, "plaintext", "cat cat\ndog")
	openDoc(t, s, uriB, "plaintext", "a cat")

	got, err := s.handleRename(context.Background(), mustParams(t, renameParams{
		TextDocument: textDocumentIdentifier{URI: uriA},
		Position:     position{Line: 0, Character: 1},
		NewName:      "lion",
	}))
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	edit := got.(*workspaceEdit)
	if len(edit.Changes[uriA]) != 2 || len(edit.Changes[uriB]) != 1 {
		t.Fatalf("unexpected changes %+v", edit.Changes)
	}
	if edit.Changes[uriB][0] != (textEdit{Range: rng(0, 2, 0, 5), NewText: "lion"}) {
		t.Fatalf("unexpected edit %+v", edit.Changes[uriB][0])
	}

	for _, name := range []string{"", "big cat", "\t"} {
		_, err := s.handleRename(context.Background(), mustParams(t, renameParams{
			TextDocument: textDocumentIdentifier{URI: uriA},
			NewName:      name,
		}))
		if asResponseError(err).Code != CodeInvalidParams {
			t.Fatalf("name %q: expected InvalidParams, got %v", name, err)
		}
	}
}

func TestComputeCapabilities(t *testing.T) {
	caps, unknown := ComputeCapabilities([]string{"completion", " references ", "bogus"})
	if caps.Completion || caps.CompletionResolve || caps.References {
		t.Fatalf("disabled features still on: %+v", caps)
	}
	if !caps.Hover || !caps.Rename {
		t.Fatalf("other features must stay on: %+v", caps)
	}
	if len(unknown) != 1 || unknown[0] != "bogus" {
		t.Fatalf("unexpected unknown list %v", unknown)
	}
	proto := caps.protocol()
	if proto.CompletionProvider != nil || proto.ReferencesProvider {
		t.Fatalf("disabled features advertised: %+v", proto)
	}
	if !caps.Enabled("") {
		t.Fatal("ungated routes are always enabled")
	}
}
