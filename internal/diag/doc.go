// Package diag defines the diagnostic model produced by the checker and
// consumed by the language server and the CLI.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – protocol-aligned enum (Error, Warning, Information, Hint).
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Range – half-open source.Range in line / UTF-16 character coordinates of
//     the text the diagnostic was computed from.
//   - Source – tag naming the engine that produced it.
//   - Fixes – optional Fix records describing how to address the problem.
//
// Diagnostics are values: they are never stored between analysis rounds. A
// newer set for the same document replaces the older one wholesale.
//
// # Capping
//
// Bag collects diagnostics up to a fixed capacity and refuses further items
// once full, which is how the per-document problem limit is enforced. Items
// stay in insertion order.
package diag
