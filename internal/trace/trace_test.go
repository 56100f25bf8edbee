package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

func TestLevelShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeSession, false},
		{LevelError, ScopeSession, false},
		{LevelSession, ScopeSession, true},
		{LevelSession, ScopeMessage, false},
		{LevelMessage, ScopeMessage, true},
		{LevelMessage, ScopeAnalysis, false},
		{LevelDebug, ScopeAnalysis, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestParseLevelCaseInsensitive(t *testing.T) {
	lvl, err := ParseLevel("Message")
	if err != nil || lvl != LevelMessage {
		t.Fatalf("ParseLevel(Message) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelMessage, FormatNDJSON)

	span := Begin(tr, ScopeMessage, "textDocument/hover", 0)
	span.WithExtra("id", "3").End("ok")
	Begin(tr, ScopeAnalysis, "analyze", span.ID()).End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines (analysis filtered), got %d: %q", len(lines), buf.String())
	}
	var rec Record
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Kind != "end" || rec.Name != "textDocument/hover" || rec.Detail != "ok" || rec.Extra["id"] != "3" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestStreamTracerMsgpack(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelSession, FormatMsgpack)
	Point(tr, ScopeSession, "initialize", "root=/tmp")

	var rec Record
	if err := msgpack.NewDecoder(&buf).Decode(&rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Kind != "point" || rec.Scope != "session" || rec.Detail != "root=/tmp" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestFormatTextSortsExtra(t *testing.T) {
	ev := &Event{
		Time:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Kind:  KindSpanEnd,
		Scope: ScopeMessage,
		Name:  "shutdown",
		Extra: map[string]string{"b": "2", "a": "1"},
	}
	got := string(FormatEvent(ev, FormatText))
	want := "03:04:05.000 [message] ← shutdown {a=1, b=2}\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRingTracerWrapsAround(t *testing.T) {
	tr := NewRingTracer(3, LevelError)
	for i := 1; i <= 5; i++ {
		tr.Emit(&Event{Seq: uint64(i), Kind: KindPoint, Scope: ScopeAnalysis})
	}
	snap := tr.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 events, got %d", len(snap))
	}
	if tr.Len() != 3 || tr.Dropped() != 2 {
		t.Fatalf("len=%d dropped=%d, want 3 and 2", tr.Len(), tr.Dropped())
	}
	for i, ev := range snap {
		if ev.Seq != uint64(i+3) {
			t.Fatalf("snapshot[%d].Seq = %d, want %d", i, ev.Seq, i+3)
		}
	}

	var buf bytes.Buffer
	if err := tr.Dump(&buf, FormatNDJSON); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 3 {
		t.Fatalf("dump wrote %d lines, want 3", n)
	}
}

func TestNewModeBothFindsDumper(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelSession, Mode: ModeBoth, Output: &buf, RingSize: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Point(tr, ScopeSession, "exit", "")
	if buf.Len() == 0 {
		t.Fatal("stream half wrote nothing")
	}
	d, ok := FindDumper(tr)
	if !ok {
		t.Fatal("expected a dumper inside the multi tracer")
	}
	var dump bytes.Buffer
	if err := d.Dump(&dump, FormatText); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(dump.String(), "exit") {
		t.Fatalf("dump missing event: %q", dump.String())
	}
}

func TestMultiTracerSkipsDisabledChildren(t *testing.T) {
	ring := NewRingTracer(4, LevelDebug)
	multi := NewMultiTracer(LevelDebug, Nop, nil, ring)
	if !multi.Enabled() {
		t.Fatal("multi tracer with an enabled child must be enabled")
	}
	Point(multi, ScopeMessage, "didOpen", "file:///a.txt")
	if ring.Len() != 1 {
		t.Fatalf("ring got %d events, want 1", ring.Len())
	}
	if NewMultiTracer(LevelDebug, Nop).Enabled() {
		t.Fatal("multi tracer without children must be disabled")
	}
	if err := multi.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewOffReturnsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff, Mode: ModeStream})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Enabled() {
		t.Fatal("off level must give a disabled tracer")
	}
	if _, ok := FindDumper(tr); ok {
		t.Fatal("nop tracer has nothing to dump")
	}
}

func TestContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("empty context should yield Nop")
	}
	ring := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatal("tracer not carried by context")
	}
}
