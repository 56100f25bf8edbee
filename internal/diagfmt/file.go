package diagfmt

import (
	"path/filepath"
	"strings"

	"lexis/internal/diag"
	"lexis/internal/source"
)

// File is one checked file with its findings.
type File struct {
	Path        string
	Index       *source.LineIndex
	Diagnostics []diag.Diagnostic
}

// formatPath renders path according to mode.
func formatPath(path string, mode PathMode, baseDir string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	switch mode {
	case PathModeAbsolute:
		return abs
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeRelative:
		if rel, ok := relativeTo(abs, baseDir); ok {
			return rel
		}
		return path
	default:
		if rel, ok := relativeTo(abs, baseDir); ok && !strings.HasPrefix(rel, "..") {
			return rel
		}
		return abs
	}
}

func relativeTo(abs, baseDir string) (string, bool) {
	if baseDir == "" {
		return "", false
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return "", false
	}
	return rel, true
}
