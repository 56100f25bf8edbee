package main

import (
	"bytes"
	"encoding/json"
	"runtime/debug"
	"strings"
	"testing"

	"lexis/internal/version"
)

func noBuildInfo() (*debug.BuildInfo, bool) { return nil, false }

func TestCollectBuildFactsFallsBackToVCS(t *testing.T) {
	saved := version.GitCommit
	t.Cleanup(func() { version.GitCommit = saved })
	version.GitCommit = ""

	facts := collectBuildFacts(func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "deadbeef"},
			{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
		}}, true
	})
	if facts.GitCommit != "deadbeef" {
		t.Fatalf("commit = %q", facts.GitCommit)
	}
	if version.BuildDate == "" && facts.BuildDate != "2024-05-01T10:00:00Z" {
		t.Fatalf("build date = %q", facts.BuildDate)
	}

	version.GitCommit = "cafe"
	if got := collectBuildFacts(noBuildInfo).GitCommit; got != "cafe" {
		t.Fatalf("stamped commit = %q, want cafe", got)
	}
}

func TestCollectBuildFactsBlankVersion(t *testing.T) {
	saved := version.Version
	t.Cleanup(func() { version.Version = saved })

	version.Version = "  "
	if got := collectBuildFacts(noBuildInfo).Version; got != "dev" {
		t.Fatalf("blank version = %q, want dev", got)
	}
}

func TestRenderVersionJSON(t *testing.T) {
	facts := buildFacts{Tool: "lexis", Version: "1.2.3", GitCommit: "abc123", GoVersion: "go1.25.1", Platform: "linux/amd64"}
	var buf bytes.Buffer
	if err := renderVersionJSON(&buf, facts.filter(versionFields{hash: true, date: true})); err != nil {
		t.Fatalf("render: %v", err)
	}
	var payload buildFacts
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Tool != "lexis" || payload.Version != "1.2.3" || payload.GitCommit != "abc123" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.BuildDate != "unknown" {
		t.Fatalf("build date = %q, want unknown", payload.BuildDate)
	}
	if payload.GitMessage != "" || payload.GoVersion != "" {
		t.Fatalf("unrequested fields leaked: %+v", payload)
	}
}

func TestRenderVersionPretty(t *testing.T) {
	facts := buildFacts{Tool: "lexis", Version: "1.2.3", GoVersion: "go1.25.1", Platform: "linux/amd64"}

	var buf bytes.Buffer
	renderVersionPretty(&buf, facts, versionFields{})
	if out := buf.String(); !strings.HasPrefix(out, "lexis ") || !strings.Contains(out, "--full") {
		t.Fatalf("unexpected output %q", out)
	}

	buf.Reset()
	renderVersionPretty(&buf, facts, versionFields{runtime: true, hash: true})
	out := buf.String()
	for _, want := range []string{"commit:   unknown", "go:       go1.25.1", "platform: linux/amd64"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "--full") {
		t.Fatalf("hint printed with fields set:\n%s", out)
	}
}

func TestVersionCommandRejectsFormat(t *testing.T) {
	_, _, err := runRoot(t, "version", "--format", "yaml")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("err = %v", err)
	}
}
