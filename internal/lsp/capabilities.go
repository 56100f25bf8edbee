package lsp

import (
	"sort"
	"strings"
)

// Feature names a server feature that can be switched off.
type Feature string

const (
	FeatureCompletion        Feature = "completion"
	FeatureCompletionResolve Feature = "completionResolve"
	FeatureHover             Feature = "hover"
	FeatureDocumentSymbol    Feature = "documentSymbol"
	FeatureFormatting        Feature = "formatting"
	FeatureRangeFormatting   Feature = "rangeFormatting"
	FeatureDefinition        Feature = "definition"
	FeatureReferences        Feature = "references"
	FeatureDocumentHighlight Feature = "documentHighlight"
	FeatureCodeAction        Feature = "codeAction"
	FeatureRename            Feature = "rename"
)

// Features lists every switchable feature in a stable order.
var Features = []Feature{
	FeatureCompletion,
	FeatureCompletionResolve,
	FeatureHover,
	FeatureDocumentSymbol,
	FeatureFormatting,
	FeatureRangeFormatting,
	FeatureDefinition,
	FeatureReferences,
	FeatureDocumentHighlight,
	FeatureCodeAction,
	FeatureRename,
}

// Capabilities is the feature set of one session. It is computed once at
// initialize and never changes afterwards.
type Capabilities struct {
	Completion        bool
	CompletionResolve bool
	Hover             bool
	DocumentSymbol    bool
	Formatting        bool
	RangeFormatting   bool
	Definition        bool
	References        bool
	DocumentHighlight bool
	CodeAction        bool
	Rename            bool
}

// ComputeCapabilities enables every feature except the disabled ones.
// Names are matched case-insensitively; unknown names are returned so the
// caller can report them. Disabling completion also disables resolve.
func ComputeCapabilities(disabled []string) (Capabilities, []string) {
	off := make(map[Feature]bool, len(disabled))
	var unknown []string
	for _, name := range disabled {
		f, ok := lookupFeature(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		off[f] = true
	}
	caps := Capabilities{
		Completion:        !off[FeatureCompletion],
		CompletionResolve: !off[FeatureCompletion] && !off[FeatureCompletionResolve],
		Hover:             !off[FeatureHover],
		DocumentSymbol:    !off[FeatureDocumentSymbol],
		Formatting:        !off[FeatureFormatting],
		RangeFormatting:   !off[FeatureRangeFormatting],
		Definition:        !off[FeatureDefinition],
		References:        !off[FeatureReferences],
		DocumentHighlight: !off[FeatureDocumentHighlight],
		CodeAction:        !off[FeatureCodeAction],
		Rename:            !off[FeatureRename],
	}
	sort.Strings(unknown)
	return caps, unknown
}

func lookupFeature(name string) (Feature, bool) {
	name = strings.TrimSpace(name)
	for _, f := range Features {
		if strings.EqualFold(string(f), name) {
			return f, true
		}
	}
	return "", false
}

// Enabled reports whether f is on. The empty feature is always on.
func (c Capabilities) Enabled(f Feature) bool {
	switch f {
	case "":
		return true
	case FeatureCompletion:
		return c.Completion
	case FeatureCompletionResolve:
		return c.CompletionResolve
	case FeatureHover:
		return c.Hover
	case FeatureDocumentSymbol:
		return c.DocumentSymbol
	case FeatureFormatting:
		return c.Formatting
	case FeatureRangeFormatting:
		return c.RangeFormatting
	case FeatureDefinition:
		return c.Definition
	case FeatureReferences:
		return c.References
	case FeatureDocumentHighlight:
		return c.DocumentHighlight
	case FeatureCodeAction:
		return c.CodeAction
	case FeatureRename:
		return c.Rename
	default:
		return false
	}
}

func (c Capabilities) protocol() serverCapabilities {
	out := serverCapabilities{
		TextDocumentSync: textDocumentSyncOptions{
			OpenClose: true,
			Change:    1,
		},
		HoverProvider:                   c.Hover,
		DocumentSymbolProvider:          c.DocumentSymbol,
		DocumentFormattingProvider:      c.Formatting,
		DocumentRangeFormattingProvider: c.RangeFormatting,
		DefinitionProvider:              c.Definition,
		ReferencesProvider:              c.References,
		DocumentHighlightProvider:       c.DocumentHighlight,
		CodeActionProvider:              c.CodeAction,
		RenameProvider:                  c.Rename,
	}
	if c.Completion {
		out.CompletionProvider = &completionOptions{
			ResolveProvider: c.CompletionResolve,
		}
	}
	return out
}
