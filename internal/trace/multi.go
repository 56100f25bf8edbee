package trace

import "errors"

// MultiTracer fans events out to several tracers. Disabled children are
// dropped at construction.
type MultiTracer struct {
	children []Tracer
	level    Level
}

// NewMultiTracer combines tracers under level.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	children := make([]Tracer, 0, len(tracers))
	for _, tr := range tracers {
		if tr == nil || !tr.Enabled() {
			continue
		}
		children = append(children, tr)
	}
	return &MultiTracer{children: children, level: level}
}

func (t *MultiTracer) Emit(ev *Event) {
	for _, child := range t.children {
		child.Emit(ev)
	}
}

// Flush flushes every child and joins their errors.
func (t *MultiTracer) Flush() error {
	errs := make([]error, 0, len(t.children))
	for _, child := range t.children {
		errs = append(errs, child.Flush())
	}
	return errors.Join(errs...)
}

// Close closes every child and joins their errors.
func (t *MultiTracer) Close() error {
	errs := make([]error, 0, len(t.children))
	for _, child := range t.children {
		errs = append(errs, child.Close())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Level() Level {
	return t.level
}

func (t *MultiTracer) Enabled() bool {
	return t.level > LevelOff && len(t.children) > 0
}
