package observ

import (
	"strings"
	"testing"
	"time"

	"lexis/internal/trace"
)

// fakeClock advances by step on every call.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReportsPhases(t *testing.T) {
	ring := trace.NewRingTracer(16, trace.LevelSession)
	timer := NewTimer().WithTracer(ring)
	timer.now = fakeClock(10 * time.Millisecond)

	load := timer.Begin("load")
	timer.End(load, "3 files")
	analyze := timer.Begin("analyze")
	timer.End(analyze, "")
	timer.End(analyze, "twice")
	timer.End(42, "ignored")

	report := timer.Report()
	if len(report.Phases) != 2 || report.Phases[0].Name != "load" || report.Phases[0].Note != "3 files" {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.TotalMS != 20 || report.Phases[1].Share != 0.5 || report.Phases[1].Note != "" {
		t.Fatalf("unexpected totals %+v", report)
	}
	summary := timer.Summary()
	for _, want := range []string{"timings:", "load", "10.00 ms", "50.0%", "// 3 files", "total"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
	if n := len(ring.Snapshot()); n != 4 {
		t.Fatalf("expected begin/end events for both phases, got %d", n)
	}
}

func TestUnendedPhaseCountsZero(t *testing.T) {
	timer := NewTimer()
	timer.Begin("dangling")
	report := timer.Report()
	if len(report.Phases) != 1 || report.Phases[0].DurationMS != 0 || report.Phases[0].Share != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestEmptyTimer(t *testing.T) {
	if got := NewTimer().Report(); got.Phases != nil || got.TotalMS != 0 {
		t.Fatalf("expected empty report, got %+v", got)
	}
}
