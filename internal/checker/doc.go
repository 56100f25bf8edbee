// Package checker is the diagnostics engine: a pure function from document
// text and settings to an ordered list of findings.
//
// A Checker is the extension point. The default one scans the text line by
// line and applies a fixed list of Rules to every line; findings are emitted
// in document order until the per-document cap is reached. Engine wraps any
// Checker and turns its failures into an empty result so a broken rule never
// takes the session down.
package checker
