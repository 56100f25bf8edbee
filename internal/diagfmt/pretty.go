package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"lexis/internal/diag"
	"lexis/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строку с подчёркиванием ^~~~ по Range, затем исправления.
// Цвет включается опцией.
func Pretty(w io.Writer, files []File, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, f := range files {
		path := formatPath(f.Path, opts.PathMode, opts.BaseDir)
		for _, d := range f.Diagnostics {
			prettyOne(w, p, path, f.Index, d, opts)
		}
	}
}

type palette struct {
	severity map[diag.Severity]*color.Color
	path     *color.Color
	gutter   *color.Color
	caret    *color.Color
	fix      *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		severity: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgBlue, color.Bold),
			diag.SevHint:    color.New(color.FgCyan),
		},
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		fix:    color.New(color.FgGreen),
	}
	all := []*color.Color{p.path, p.gutter, p.caret, p.fix}
	for _, c := range p.severity {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) sev(s diag.Severity) *color.Color {
	if c, ok := p.severity[s]; ok {
		return c
	}
	return p.path
}

func prettyOne(w io.Writer, p palette, path string, index *source.LineIndex, d diag.Diagnostic, opts PrettyOpts) {
	start := d.Range.Start
	header := fmt.Sprintf("%s:%d:%d:", path, start.Line+1, start.Character+1)
	code := ""
	if d.Code != diag.UnknownCode {
		code = " " + d.Code.ID()
	}
	fmt.Fprintf(w, "%s %s%s: %s\n", p.path.Sprint(header), p.sev(d.Severity).Sprint(d.Severity.String()), code, d.Message)

	if index != nil && start.Line < index.LineCount() {
		line := index.Line(start.Line)
		num := strconv.Itoa(start.Line + 1)
		pad := strings.Repeat(" ", len(num))
		fmt.Fprintf(w, " %s %s %s\n", p.gutter.Sprint(num), p.gutter.Sprint("|"), line)
		fmt.Fprintf(w, " %s %s %s\n", pad, p.gutter.Sprint("|"), p.caret.Sprint(underline(line, d.Range)))
	}

	if !opts.ShowFixes {
		return
	}
	for _, fix := range d.Fixes {
		fmt.Fprintf(w, "  %s %s\n", p.fix.Sprint("fix:"), fix.Title)
		if !opts.ShowPreview {
			continue
		}
		for _, edit := range fix.Edits {
			preview, err := buildFixEditPreview(index, edit)
			if err != nil {
				continue
			}
			for _, l := range preview.before {
				fmt.Fprintf(w, "    - %s\n", l)
			}
			for _, l := range preview.after {
				fmt.Fprintf(w, "    + %s\n", l)
			}
		}
	}
}

// underline builds the ^~~~ marker for rng on line. Padding copies tabs and
// uses display width for everything else so the marker lines up in a
// terminal; wide characters under the marker count with their width too.
func underline(line string, rng source.Range) string {
	startByte := source.ByteOffsetForUTF16(line, rng.Start.Character)
	endByte := len(line)
	if rng.End.Line == rng.Start.Line {
		endByte = source.ByteOffsetForUTF16(line, rng.End.Character)
	}
	if endByte < startByte {
		endByte = startByte
	}

	var sb strings.Builder
	for _, r := range line[:startByte] {
		if r == '\t' {
			sb.WriteRune('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	width := runewidth.StringWidth(line[startByte:endByte])
	sb.WriteByte('^')
	if width > 1 {
		sb.WriteString(strings.Repeat("~", width-1))
	}
	return sb.String()
}
