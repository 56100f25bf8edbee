package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic. Values match the protocol
// numbering so they can be sent as-is.
type Severity uint8

const (
	// SevError is for errors.
	SevError Severity = iota + 1
	// SevWarning is for warning diagnostics.
	SevWarning
	// SevInfo is for informational diagnostics.
	SevInfo
	SevHint
)

func (s Severity) String() string {
	switch s {
	case SevError:
		return "ERROR"
	case SevWarning:
		return "WARNING"
	case SevInfo:
		return "INFO"
	case SevHint:
		return "HINT"
	}
	return "UNKNOWN"
}

// ParseSeverity accepts the lowercase names used in configuration files.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SevError, nil
	case "warning", "warn":
		return SevWarning, nil
	case "information", "info":
		return SevInfo, nil
	case "hint":
		return SevHint, nil
	}
	return 0, fmt.Errorf("invalid severity: %q (expected: error|warning|information|hint)", s)
}
