package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lexis/internal/diagfmt"
	"lexis/internal/fix"
	"lexis/internal/ui"
)

var fixCmd = &cobra.Command{
	Use:          "fix [flags] <file|directory>...",
	Short:        "Apply available quick fixes to text files",
	Long:         "Run the checker, surface available fixes, and apply them according to the chosen strategy.",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply the first fix of every diagnostic")
	fixCmd.Flags().Bool("once", false, "apply the first available fix per file (default)")
	fixCmd.Flags().String("id", "", "apply fix with a specific identifier")
	fixCmd.Flags().Bool("dry-run", false, "report fixes without writing files")
	fixCmd.Flags().StringSlice("ext", []string{".txt", ".md", ".markdown"}, "file extensions fixed inside directories")
}

// fileOutcome is the fix result of one file.
type fileOutcome struct {
	path   string
	result *fix.Result
	err    error
}

func runFix(cmd *cobra.Command, args []string) error {
	applyAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	applyOnce, err := cmd.Flags().GetBool("once")
	if err != nil {
		return err
	}
	targetID, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	exts, err := cmd.Flags().GetStringSlice("ext")
	if err != nil {
		return err
	}

	if targetID != "" && (applyAll || applyOnce) {
		return fmt.Errorf("--id cannot be combined with --all or --once")
	}
	if applyAll && applyOnce {
		return fmt.Errorf("--all and --once are mutually exclusive")
	}

	mode := fix.ApplyModeOnce
	if targetID != "" {
		mode = fix.ApplyModeID
	} else if applyAll {
		mode = fix.ApplyModeAll
	}
	opts := fix.ApplyOptions{Mode: mode, TargetID: targetID}

	maxProblems, err := cmd.Root().PersistentFlags().GetInt("max-problems")
	if err != nil {
		return err
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	paths, err := collectFiles(args, normalizeExts(exts))
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}
	// id уникален только в пределах одного файла
	if targetID != "" && len(paths) != 1 {
		return fmt.Errorf("fix: id can only be used with a single file")
	}

	baselines, err := resolveBaselines(paths, maxProblems)
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}
	files, err := checkFiles(cmd.Context(), paths, baselines, 0, ui.NopSink{})
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}

	outcomes := make([]fileOutcome, 0, len(files))
	for _, f := range files {
		outcomes = append(outcomes, applyFile(f, opts, dryRun))
	}
	return reportFixes(cmd.OutOrStdout(), outcomes, dryRun)
}

// applyFile applies fixes to one checked file and writes it back unless
// dryRun is set. CRLF line endings survive the rewrite.
func applyFile(f diagfmt.File, opts fix.ApplyOptions, dryRun bool) fileOutcome {
	out := fileOutcome{path: f.Path}
	res, err := fix.Apply(f.Index.Text(), f.Diagnostics, opts)
	out.result = res
	if err != nil {
		if !errors.Is(err, fix.ErrNoFixes) {
			out.err = err
		}
		return out
	}
	if dryRun || !res.Changed() {
		return out
	}

	original, err := os.ReadFile(f.Path)
	if err != nil {
		out.err = fmt.Errorf("read %s: %w", f.Path, err)
		return out
	}
	text := res.Text
	if strings.Contains(string(original), "\r\n") {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(f.Path); err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(f.Path, []byte(text), mode); err != nil {
		out.err = fmt.Errorf("write %s: %w", f.Path, err)
	}
	return out
}

func reportFixes(w io.Writer, outcomes []fileOutcome, dryRun bool) error {
	verb := "Applied"
	if dryRun {
		verb = "Would apply"
	}
	applied := 0
	var errs []error
	for _, o := range outcomes {
		if o.err != nil {
			errs = append(errs, o.err)
		}
		if o.result == nil {
			continue
		}
		if len(o.result.Applied) > 0 {
			fmt.Fprintf(w, "%s: %s %d fix(es):\n", o.path, verb, len(o.result.Applied))
			for _, item := range o.result.Applied {
				fmt.Fprintf(w, "  %s [%s] line %d (%d edits)\n", item.Title, item.ID, item.Line, item.EditCount)
			}
			applied += len(o.result.Applied)
		}
		if len(o.result.Skipped) > 0 {
			fmt.Fprintf(w, "%s: skipped fixes:\n", o.path)
			for _, skip := range o.result.Skipped {
				id := skip.ID
				if id == "" {
					id = "(unnamed)"
				}
				if skip.Title != "" {
					fmt.Fprintf(w, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
				} else {
					fmt.Fprintf(w, "  [%s]: %s\n", id, skip.Reason)
				}
			}
		}
	}
	if applied == 0 {
		fmt.Fprintln(w, "No applicable fixes found.")
	}
	return errors.Join(errs...)
}

func normalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
