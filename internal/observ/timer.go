// Package observ measures the phases of a command run.
package observ

import (
	"fmt"
	"strings"
	"time"

	"lexis/internal/trace"
)

// Phase is one measured step of a run.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string

	span  *trace.Span
	ended bool
}

// Timer measures consecutive or nested phases. Phases are mirrored as
// session-scope trace spans when a tracer is attached.
type Timer struct {
	phases []*Phase
	tracer trace.Tracer
	now    func() time.Time
}

func NewTimer() *Timer {
	return &Timer{tracer: trace.Nop, now: time.Now}
}

// WithTracer mirrors subsequent phases into tr. A nil tracer is ignored.
func (t *Timer) WithTracer(tr trace.Tracer) *Timer {
	if tr != nil {
		t.tracer = tr
	}
	return t
}

// Begin starts a phase and returns its handle for End.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, &Phase{
		Name:  name,
		Start: t.now(),
		span:  trace.Begin(t.tracer, trace.ScopeSession, name, 0),
	})
	return len(t.phases) - 1
}

// End closes the phase idx. Unknown or already closed phases are ignored.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) || t.phases[idx].ended {
		return
	}
	p := t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Note = note
	p.ended = true
	p.span.End(note)
}

// PhaseReport is the serializable form of a phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Share      float64 `json:"share"` // доля от total, 0..1
	Note       string  `json:"note,omitempty"`
}

// Report aggregates all phases.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report returns the measured phases. Phases that were never ended count
// with zero duration.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	var total time.Duration
	for _, p := range t.phases {
		total += p.Dur
	}
	out := Report{TotalMS: millis(total), Phases: make([]PhaseReport, 0, len(t.phases))}
	for _, p := range t.phases {
		share := 0.0
		if total > 0 {
			share = float64(p.Dur) / float64(total)
		}
		out.Phases = append(out.Phases, PhaseReport{
			Name:       p.Name,
			DurationMS: millis(p.Dur),
			Share:      share,
			Note:       p.Note,
		})
	}
	return out
}

// Summary renders the report as an aligned table.
func (t *Timer) Summary() string {
	report := t.Report()
	width := len("total")
	for _, p := range report.Phases {
		width = max(width, len(p.Name))
	}

	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&sb, "  %-*s %8.2f ms %5.1f%%", width, p.Name, p.DurationMS, p.Share*100)
		if p.Note != "" {
			fmt.Fprintf(&sb, "  // %s", p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-*s %8.2f ms\n", width, "total", report.TotalMS)
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
