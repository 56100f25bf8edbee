package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lexis/internal/checker"
	"lexis/internal/diag"
	"lexis/internal/diagfmt"
	"lexis/internal/observ"
	"lexis/internal/settings"
	"lexis/internal/source"
	"lexis/internal/trace"
	"lexis/internal/ui"
)

// errProblemsFound signals a non-zero exit after the report was printed.
var errProblemsFound = errors.New("problems found")

var checkCmd = &cobra.Command{
	Use:          "check [paths...]",
	Short:        "Check text files and print diagnostics",
	Long:         `Check runs the same rules the language server uses over files on disk. Directories are walked recursively; hidden entries are skipped.`,
	SilenceUsage: true,
	RunE:         runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0 = GOMAXPROCS)")
	checkCmd.Flags().StringSlice("ext", []string{".txt", ".md", ".markdown"}, "file extensions checked inside directories")
	checkCmd.Flags().String("path-mode", "auto", "path display mode (auto|absolute|relative|basename)")
	checkCmd.Flags().Bool("fixes", false, "show suggested fixes")
	checkCmd.Flags().Bool("preview", false, "show fix previews (implies --fixes)")
	checkCmd.Flags().Bool("timings", false, "print phase timings to stderr")
	checkCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

type checkOptions struct {
	format      string
	jobs        int
	exts        []string
	pathMode    diagfmt.PathMode
	showFixes   bool
	showPreview bool
	timings     bool
	ui          uiMode
	maxProblems int
}

func readCheckOptions(cmd *cobra.Command) (checkOptions, error) {
	var opts checkOptions
	var err error
	flags := cmd.Flags()

	if opts.format, err = flags.GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	opts.format = strings.ToLower(opts.format)
	if opts.format != "pretty" && opts.format != "json" {
		return opts, fmt.Errorf("unsupported format %q (must be pretty or json)", opts.format)
	}
	if opts.jobs, err = flags.GetInt("jobs"); err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if opts.exts, err = flags.GetStringSlice("ext"); err != nil {
		return opts, fmt.Errorf("failed to get ext flag: %w", err)
	}
	opts.exts = normalizeExts(opts.exts)
	mode, err := flags.GetString("path-mode")
	if err != nil {
		return opts, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if opts.pathMode, ok = diagfmt.ParsePathMode(mode); !ok {
		return opts, fmt.Errorf("invalid path mode %q", mode)
	}
	if opts.showFixes, err = flags.GetBool("fixes"); err != nil {
		return opts, fmt.Errorf("failed to get fixes flag: %w", err)
	}
	if opts.showPreview, err = flags.GetBool("preview"); err != nil {
		return opts, fmt.Errorf("failed to get preview flag: %w", err)
	}
	opts.showFixes = opts.showFixes || opts.showPreview
	if opts.timings, err = flags.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}
	if opts.maxProblems, err = cmd.Root().PersistentFlags().GetInt("max-problems"); err != nil {
		return opts, fmt.Errorf("failed to get max-problems flag: %w", err)
	}
	return opts, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts, err := readCheckOptions(cmd)
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

	if len(args) == 0 {
		args = []string{"."}
	}

	timer := observ.NewTimer().WithTracer(trace.FromContext(cmd.Context()))

	idx := timer.Begin("collect")
	paths, err := collectFiles(args, opts.exts)
	timer.End(idx, fmt.Sprintf("%d files", len(paths)))
	if err != nil {
		return err
	}

	idx = timer.Begin("baseline")
	baselines, err := resolveBaselines(paths, opts.maxProblems)
	timer.End(idx, "")
	if err != nil {
		return err
	}

	idx = timer.Begin("check")
	var files []diagfmt.File
	if shouldUseTUI(opts.ui) && len(paths) > 0 {
		files, err = checkFilesWithUI(cmd.Context(), cmd.ErrOrStderr(), paths, baselines, opts.jobs)
	} else {
		files, err = checkFiles(cmd.Context(), paths, baselines, opts.jobs, ui.NopSink{})
	}
	timer.End(idx, "")
	if err != nil {
		return err
	}

	idx = timer.Begin("report")
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	out := cmd.OutOrStdout()
	switch opts.format {
	case "json":
		err = diagfmt.JSON(out, files, diagfmt.JSONOpts{
			PathMode:        opts.pathMode,
			BaseDir:         cwd,
			IncludeFixes:    opts.showFixes,
			IncludePreviews: opts.showPreview,
		})
	default:
		diagfmt.Pretty(out, files, diagfmt.PrettyOpts{
			Color:       !color.NoColor,
			PathMode:    opts.pathMode,
			BaseDir:     cwd,
			ShowFixes:   opts.showFixes,
			ShowPreview: opts.showPreview,
		})
	}
	timer.End(idx, "")
	if err != nil {
		return err
	}

	if opts.timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}

	if hasErrors(files) {
		return errProblemsFound
	}
	return nil
}

// collectFiles expands args into a sorted, de-duplicated file list. Explicit
// file arguments are always included; directory walks keep only exts.
func collectFiles(args, exts []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %q: %w", arg, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(arg))
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			name := d.Name()
			// скрытые каталоги и файлы пропускаем, кроме самого корня обхода
			if path != arg && strings.HasPrefix(name, ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && slices.Contains(exts, strings.ToLower(filepath.Ext(name))) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %q: %w", arg, err)
		}
	}

	slices.Sort(files)
	return files, nil
}

// resolveBaselines finds the settings governing every path. Project files
// are looked up once per directory.
func resolveBaselines(paths []string, maxProblems int) ([]settings.Settings, error) {
	byDir := make(map[string]settings.Settings)
	out := make([]settings.Settings, len(paths))
	for i, path := range paths {
		dir := filepath.Dir(path)
		base, ok := byDir[dir]
		if !ok {
			base = settings.Default()
			project, found, err := settings.LoadProject(dir)
			if err != nil {
				return nil, err
			}
			if found {
				base = project.Baseline
			}
			if maxProblems > 0 {
				base.MaxNumberOfProblems = maxProblems
			}
			byDir[dir] = base
		}
		out[i] = base.Clone()
	}
	return out, nil
}

// checkFiles runs the engine over paths in parallel and reports per-file
// progress to sink. Results keep the order of paths.
func checkFiles(ctx context.Context, paths []string, baselines []settings.Settings, jobs int, sink ui.Sink) ([]diagfmt.File, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	engine := checker.NewEngine(nil)
	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]diagfmt.File, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			sink.OnEvent(ui.Event{File: path, Status: ui.StatusChecking})
			data, err := os.ReadFile(path)
			if err != nil {
				sink.OnEvent(ui.Event{File: path, Status: ui.StatusError})
				return fmt.Errorf("failed to read %q: %w", path, err)
			}
			index := source.NewLineIndex(string(data))
			diags := engine.Compute(index.Text(), baselines[i])
			results[i] = diagfmt.File{
				Path:        path,
				Index:       index,
				Diagnostics: diags,
			}
			status := ui.StatusDone
			if len(diags) > 0 {
				status = ui.StatusProblems
			}
			sink.OnEvent(ui.Event{File: path, Status: status, Problems: len(diags)})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func hasErrors(files []diagfmt.File) bool {
	for _, f := range files {
		for _, d := range f.Diagnostics {
			if d.Severity == diag.SevError {
				return true
			}
		}
	}
	return false
}
