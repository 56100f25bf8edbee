package diagfmt

import (
	"encoding/json"
	"io"

	"lexis/internal/diag"
	"lexis/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON.
// Строки и колонки считаются с единицы, колонки в UTF-16.
type LocationJSON struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
}

// FixEditJSON представляет одно редактирование для JSON
type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

// FixJSON представляет предложение по исправлению для JSON
type FixJSON struct {
	Title string        `json:"title"`
	Edits []FixEditJSON `json:"edits,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code,omitempty"`
	Source   string       `json:"source,omitempty"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
}

func makeLocation(path string, rng source.Range) LocationJSON {
	return LocationJSON{
		File:      path,
		StartLine: rng.Start.Line + 1,
		StartCol:  rng.Start.Character + 1,
		EndLine:   rng.End.Line + 1,
		EndCol:    rng.End.Character + 1,
	}
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(files []File, opts JSONOpts) DiagnosticsOutput {
	diagnostics := make([]DiagnosticJSON, 0)
	errors := 0
	for _, f := range files {
		path := formatPath(f.Path, opts.PathMode, opts.BaseDir)
		items := f.Diagnostics
		if opts.Max > 0 && opts.Max < len(items) {
			items = items[:opts.Max]
		}
		for _, d := range items {
			if d.Severity == diag.SevError {
				errors++
			}
			out := DiagnosticJSON{
				Severity: d.Severity.String(),
				Source:   d.Source,
				Message:  d.Message,
				Location: makeLocation(path, d.Range),
			}
			if d.Code != diag.UnknownCode {
				out.Code = d.Code.ID()
			}
			if opts.IncludeFixes && len(d.Fixes) > 0 {
				out.Fixes = make([]FixJSON, 0, len(d.Fixes))
				for _, fix := range d.Fixes {
					out.Fixes = append(out.Fixes, buildFixJSON(path, f.Index, fix, opts))
				}
			}
			diagnostics = append(diagnostics, out)
		}
	}
	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
		Errors:      errors,
	}
}

func buildFixJSON(path string, index *source.LineIndex, fix diag.Fix, opts JSONOpts) FixJSON {
	out := FixJSON{Title: fix.Title}
	if len(fix.Edits) == 0 {
		return out
	}
	out.Edits = make([]FixEditJSON, len(fix.Edits))
	for k, edit := range fix.Edits {
		editJSON := FixEditJSON{
			Location: makeLocation(path, edit.Range),
			NewText:  edit.NewText,
		}
		if index != nil {
			start, end := index.Offset(edit.Range.Start), index.Offset(edit.Range.End)
			if start <= end {
				editJSON.OldText = index.Text()[start:end]
			}
			if opts.IncludePreviews {
				if preview, err := buildFixEditPreview(index, edit); err == nil {
					editJSON.BeforeLines = append([]string(nil), preview.before...)
					editJSON.AfterLines = append([]string(nil), preview.after...)
				}
			}
		}
		out.Edits[k] = editJSON
	}
	return out
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, files []File, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(files, opts))
}
