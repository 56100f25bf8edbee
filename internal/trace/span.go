package trace

import (
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns the next global sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// NextSpanID returns a fresh span identifier.
func NextSpanID() uint64 { return spanCounter.Add(1) }

// Span is an open begin/end pair. A span from a disabled tracer is inert.
type Span struct {
	tracer Tracer
	base   Event // общие поля begin и end
	extra  map[string]string
}

// emit stamps a copy of base and sends it.
func (s *Span) emit(kind Kind, detail string, extra map[string]string) {
	ev := s.base
	ev.Time = time.Now()
	ev.Seq = NextSeq()
	ev.Kind = kind
	ev.Detail = detail
	ev.Extra = extra
	s.tracer.Emit(&ev)
}

func (s *Span) live() bool {
	return s != nil && s.tracer != nil && s.tracer.Enabled()
}

// Begin opens a span under parent (0 for a root span) and emits its begin
// event.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() {
		return &Span{tracer: Nop}
	}
	s := &Span{
		tracer: t,
		base: Event{
			Scope:    scope,
			SpanID:   NextSpanID(),
			ParentID: parent,
			Name:     name,
		},
	}
	s.base.Time = time.Now()
	s.emit(KindSpanBegin, "", nil)
	return s
}

// End emits the end event and returns the time since Begin.
func (s *Span) End(detail string) time.Duration {
	if !s.live() {
		return 0
	}
	dur := time.Since(s.base.Time)
	s.emit(KindSpanEnd, detail, s.extra)
	return dur
}

// WithExtra attaches a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.live() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID returns the span identifier, 0 for inert spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.base.SpanID
}

// Point emits an instant event.
func Point(t Tracer, scope Scope, name, detail string) {
	if t == nil || !t.Enabled() {
		return
	}
	t.Emit(&Event{
		Time:   time.Now(),
		Seq:    NextSeq(),
		Kind:   KindPoint,
		Scope:  scope,
		SpanID: NextSpanID(),
		Name:   name,
		Detail: detail,
	})
}
