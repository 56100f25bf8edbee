package checker

import (
	"fmt"

	"lexis/internal/diag"
	"lexis/internal/settings"
)

// Engine runs a Checker and enforces the engine contract on its output: the
// cap is honored, every diagnostic carries a source tag, and failures
// degrade to no diagnostics.
type Engine struct {
	checker Checker
	logf    func(format string, args ...any)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes analysis failures to logf.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(e *Engine) {
		e.logf = logf
	}
}

// NewEngine wraps c. A nil checker means Default().
func NewEngine(c Checker, opts ...Option) *Engine {
	if c == nil {
		c = Default()
	}
	e := &Engine{checker: c, logf: func(string, ...any) {}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute returns the diagnostics for text under s. It never fails: checker
// errors and panics are logged and yield an empty result.
func (e *Engine) Compute(text string, s settings.Settings) []diag.Diagnostic {
	diags, err := e.run(text, s)
	if err != nil {
		e.logf("%v", err)
		return nil
	}
	return diags
}

func (e *Engine) run(text string, s settings.Settings) (out []diag.Diagnostic, err error) {
	if text == "" || s.MaxNumberOfProblems <= 0 {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: panic: %v", ErrAnalysisFailure, r)
		}
	}()
	diags, err := e.checker.Check(text, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailure, err)
	}
	if len(diags) > s.MaxNumberOfProblems {
		diags = diags[:s.MaxNumberOfProblems]
	}
	out = make([]diag.Diagnostic, len(diags))
	for i, d := range diags {
		if d.Source == "" {
			d.Source = SourceName
		}
		out[i] = d
	}
	return out, nil
}
