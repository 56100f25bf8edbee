package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"lexis/internal/version"
)

// buildFacts is everything the version command can report.
type buildFacts struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
	GoVersion  string `json:"go_version,omitempty"`
	Platform   string `json:"platform,omitempty"`
}

// versionFields selects the optional facts.
type versionFields struct {
	hash, message, date, runtime bool
}

func (f versionFields) any() bool {
	return f.hash || f.message || f.date || f.runtime
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show lexis build information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().Bool("hash", false, "include git commit hash")
	versionCmd.Flags().Bool("message", false, "include git commit message")
	versionCmd.Flags().Bool("date", false, "include build timestamp")
	versionCmd.Flags().Bool("runtime", false, "include Go version and platform")
	versionCmd.Flags().Bool("full", false, "show every recorded bit of build metadata")
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	format, err := flags.GetString("format")
	if err != nil {
		return err
	}
	full, err := flags.GetBool("full")
	if err != nil {
		return err
	}
	var fields versionFields
	for name, dst := range map[string]*bool{
		"hash":    &fields.hash,
		"message": &fields.message,
		"date":    &fields.date,
		"runtime": &fields.runtime,
	} {
		v, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = v || full
	}

	facts := collectBuildFacts(debug.ReadBuildInfo)
	switch strings.ToLower(format) {
	case "json":
		return renderVersionJSON(cmd.OutOrStdout(), facts.filter(fields))
	case "pretty":
		renderVersionPretty(cmd.OutOrStdout(), facts, fields)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

// collectBuildFacts reads the linker-stamped values and falls back to the
// VCS stamp the go tool embeds in the binary.
func collectBuildFacts(readInfo func() (*debug.BuildInfo, bool)) buildFacts {
	facts := buildFacts{
		Tool:       "lexis",
		Version:    strings.TrimSpace(version.Version),
		GitCommit:  strings.TrimSpace(version.GitCommit),
		GitMessage: strings.TrimSpace(version.GitMessage),
		BuildDate:  strings.TrimSpace(version.BuildDate),
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
	if facts.Version == "" {
		facts.Version = "dev"
	}
	if info, ok := readInfo(); ok && info != nil {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if facts.GitCommit == "" {
					facts.GitCommit = s.Value
				}
			case "vcs.time":
				if facts.BuildDate == "" {
					facts.BuildDate = s.Value
				}
			}
		}
	}
	return facts
}

// filter blanks the facts that were not requested; unknown values of
// requested facts read "unknown".
func (f buildFacts) filter(fields versionFields) buildFacts {
	out := buildFacts{Tool: f.Tool, Version: f.Version}
	if fields.hash {
		out.GitCommit = valueOrUnknown(f.GitCommit)
	}
	if fields.message {
		out.GitMessage = valueOrUnknown(f.GitMessage)
	}
	if fields.date {
		out.BuildDate = valueOrUnknown(f.BuildDate)
	}
	if fields.runtime {
		out.GoVersion = f.GoVersion
		out.Platform = f.Platform
	}
	return out
}

func renderVersionPretty(out io.Writer, facts buildFacts, fields versionFields) {
	fmt.Fprintf(out, "lexis %s\n", version.Colored())
	shown := facts.filter(fields)
	rows := []struct {
		label string
		value string
		on    bool
	}{
		{"commit", shown.GitCommit, fields.hash},
		{"message", shown.GitMessage, fields.message},
		{"built", shown.BuildDate, fields.date},
		{"go", shown.GoVersion, fields.runtime},
		{"platform", shown.Platform, fields.runtime},
	}
	for _, row := range rows {
		if row.on {
			fmt.Fprintf(out, "  %-9s %s\n", row.label+":", row.value)
		}
	}
	if !fields.any() {
		fmt.Fprintln(out, "set --hash, --message, --date, --runtime, or --full for build details")
	}
}

func renderVersionJSON(out io.Writer, facts buildFacts) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(facts)
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
