package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"lexis/internal/diag"
)

// ProjectFileName is the per-project configuration file.
const ProjectFileName = "lexis.toml"

// Project is a decoded project file.
type Project struct {
	Path     string
	Root     string
	Baseline Settings
	// Disabled lists server features turned off for this project.
	Disabled []string
}

type projectConfig struct {
	Diagnostics diagnosticsConfig `toml:"diagnostics"`
	Server      serverConfig      `toml:"server"`
}

type diagnosticsConfig struct {
	MaxProblems    int      `toml:"max_problems"`
	Uppercase      bool     `toml:"uppercase"`
	Banned         []string `toml:"banned"`
	BannedSeverity string   `toml:"banned_severity"`
}

type serverConfig struct {
	Disable []string `toml:"disable"`
}

// FindProjectFile walks from startDir up to the filesystem root looking for
// lexis.toml.
func FindProjectFile(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ProjectFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadProjectFile decodes a project file on top of the built-in defaults.
func LoadProjectFile(path string) (*Project, error) {
	base := Default()
	cfg := projectConfig{
		Diagnostics: diagnosticsConfig{
			MaxProblems: base.MaxNumberOfProblems,
			Uppercase:   base.UppercaseRule,
		},
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Diagnostics.MaxProblems < 0 {
		return nil, fmt.Errorf("%s: [diagnostics].max_problems must not be negative", path)
	}

	base.MaxNumberOfProblems = cfg.Diagnostics.MaxProblems
	base.UppercaseRule = cfg.Diagnostics.Uppercase
	base.BannedTokens = cfg.Diagnostics.Banned
	if meta.IsDefined("diagnostics", "banned_severity") {
		sev, err := diag.ParseSeverity(cfg.Diagnostics.BannedSeverity)
		if err != nil {
			return nil, fmt.Errorf("%s: [diagnostics].banned_severity: %w", path, err)
		}
		base.BannedSeverity = sev
	}
	return &Project{
		Path:     path,
		Root:     filepath.Dir(path),
		Baseline: base,
		Disabled: cfg.Server.Disable,
	}, nil
}

// LoadProject finds and loads the project file governing dir. The boolean is
// false when there is none.
func LoadProject(dir string) (*Project, bool, error) {
	path, ok, err := FindProjectFile(dir)
	if err != nil || !ok {
		return nil, ok, err
	}
	project, err := LoadProjectFile(path)
	if err != nil {
		return nil, true, err
	}
	return project, true, nil
}
