package diag

import (
	"lexis/internal/source"
)

// FixEdit replaces the text covered by Range with NewText.
type FixEdit struct {
	Range   source.Range
	NewText string
}

// Fix is a named group of edits applied together.
type Fix struct {
	Title string
	Edits []FixEdit
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Range    source.Range
	Source   string
	Fixes    []Fix
}

func New(sev Severity, code Code, rng source.Range, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Range:    rng,
		Message:  msg,
	}
}

func (d Diagnostic) WithSource(src string) Diagnostic {
	d.Source = src
	return d
}

func (d Diagnostic) WithFix(title string, edits ...FixEdit) Diagnostic {
	d.Fixes = append(d.Fixes, Fix{Title: title, Edits: edits})
	return d
}
