package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"

	"lexis/internal/settings"
)

// fixArgs spells out every fix flag so values left by earlier runs of the
// shared root command do not leak in.
func fixArgs(all, once, dryRun bool, id string, paths ...string) []string {
	args := []string{
		"fix",
		"--all=" + boolString(all),
		"--once=" + boolString(once),
		"--dry-run=" + boolString(dryRun),
		"--id=" + id,
	}
	return append(args, paths...)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func readString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestFixAllRewritesFiles(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, settings.ProjectFileName), "[diagnostics]\nbanned = [\"foo\"]\n")
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.md")
	writeFile(t, a, "LOUD foo\r\nquiet\r\n")
	writeFile(t, b, "nothing here\n")

	out, _, err := runRoot(t, fixArgs(true, false, false, "", dir)...)
	is.NoErr(err)
	is.Equal(readString(t, a), "loud \r\nquiet\r\n")
	is.Equal(readString(t, b), "nothing here\n")
	is.True(strings.Contains(out, "Applied 2 fix(es)"))
	is.True(strings.Contains(out, "Convert to lowercase [LNT1001-1-1-0] line 1"))
}

func TestFixOnceAndDryRun(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	writeFile(t, p, "AAA BBB\n")

	out, _, err := runRoot(t, fixArgs(false, false, true, "", p)...)
	is.NoErr(err)
	is.True(strings.Contains(out, "Would apply 1 fix(es)"))
	is.Equal(readString(t, p), "AAA BBB\n")

	_, _, err = runRoot(t, fixArgs(false, true, false, "", p)...)
	is.NoErr(err)
	is.Equal(readString(t, p), "aaa BBB\n")
}

func TestFixByID(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	writeFile(t, p, "AAA BBB\n")

	_, _, err := runRoot(t, fixArgs(false, false, false, "LNT1001-1-5-0", p)...)
	is.NoErr(err)
	is.Equal(readString(t, p), "AAA bbb\n")

	writeFile(t, filepath.Join(dir, "b.txt"), "CCC\n")
	_, _, err = runRoot(t, fixArgs(false, false, false, "LNT1001-1-1-0", dir)...)
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "single file"))
}

func TestFixRejectsConflictingModes(t *testing.T) {
	is := is.New(t)
	p := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, p, "AAA\n")

	_, _, err := runRoot(t, fixArgs(true, true, false, "", p)...)
	is.True(err != nil)
	_, _, err = runRoot(t, fixArgs(true, false, false, "x", p)...)
	is.True(err != nil)
	is.Equal(readString(t, p), "AAA\n")
}

func TestFixNothingToDo(t *testing.T) {
	is := is.New(t)
	p := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, p, "calm text\n")

	out, _, err := runRoot(t, fixArgs(true, false, false, "", p)...)
	is.NoErr(err)
	is.True(strings.Contains(out, "No applicable fixes found."))
}
