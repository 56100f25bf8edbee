// Package trace records what a language server session does: which messages
// arrived, how long each took, and when documents were re-analyzed.
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - Nop: zero-overhead tracer used when tracing is disabled
//   - StreamTracer: immediate write to a file or stderr
//   - RingTracer: circular buffer dumped when a handler panics
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// Events carry a Scope (session, message, analysis). The tracer Level decides
// which scopes are emitted: LevelSession keeps lifecycle events only,
// LevelMessage adds one span per protocol message, LevelDebug adds analysis
// rounds.
//
// # Formats
//
// Stream output is human-readable text, NDJSON, or msgpack. The msgpack form
// is a plain concatenation of encoded events and can be read back with a
// msgpack.Decoder loop.
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeMessage, "textDocument/hover", 0)
//	defer span.End("")
package trace
