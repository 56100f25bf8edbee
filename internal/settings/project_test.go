package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"

	"lexis/internal/diag"
)

func writeProject(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ProjectFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write project file: %v", err)
	}
	return path
}

func TestLoadProjectFile(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	path := writeProject(t, dir, `
[diagnostics]
max_problems = 5
uppercase = false
banned = ["foo", "bar"]
banned_severity = "hint"

[server]
disable = ["rename"]
`)
	project, err := LoadProjectFile(path)
	is.NoErr(err)
	is.Equal(project.Root, dir)
	is.Equal(project.Baseline.MaxNumberOfProblems, 5)
	is.True(!project.Baseline.UppercaseRule)
	is.Equal(project.Baseline.BannedTokens, []string{"foo", "bar"})
	is.Equal(project.Baseline.BannedSeverity, diag.SevHint)
	is.Equal(project.Disabled, []string{"rename"})
}

func TestLoadProjectFileDefaults(t *testing.T) {
	is := is.New(t)
	path := writeProject(t, t.TempDir(), "[diagnostics]\nbanned = [\"x\"]\n")
	project, err := LoadProjectFile(path)
	is.NoErr(err)
	is.Equal(project.Baseline.MaxNumberOfProblems, DefaultMaxProblems)
	is.True(project.Baseline.UppercaseRule)
	is.Equal(project.Baseline.BannedSeverity, diag.SevError)
}

func TestLoadProjectFileErrors(t *testing.T) {
	tests := map[string]string{
		"syntax":       "[diagnostics\n",
		"unknown key":  "[diagnostics]\nmystery = 1\n",
		"negative cap": "[diagnostics]\nmax_problems = -1\n",
		"bad severity": "[diagnostics]\nbanned_severity = \"loud\"\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeProject(t, t.TempDir(), content)
			if _, err := LoadProjectFile(path); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestFindProjectFileWalksUp(t *testing.T) {
	is := is.New(t)
	root := t.TempDir()
	want := writeProject(t, root, "")
	nested := filepath.Join(root, "a", "b")
	is.NoErr(os.MkdirAll(nested, 0o755))

	got, ok, err := FindProjectFile(nested)
	is.NoErr(err)
	is.True(ok)
	is.Equal(got, want)

	project, ok, err := LoadProject(nested)
	is.NoErr(err)
	is.True(ok)
	is.Equal(project.Path, want)
}
