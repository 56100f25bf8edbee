package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"lexis/internal/diagfmt"
	"lexis/internal/settings"
	"lexis/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI decides whether progress is drawn. The report itself goes to
// stdout, so the progress view needs a terminal on stderr.
func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stderr)
	}
}

type checkOutcome struct {
	files []diagfmt.File
	err   error
}

// checkFilesWithUI runs checkFiles while a progress view renders to out.
func checkFilesWithUI(ctx context.Context, out io.Writer, paths []string, baselines []settings.Settings, jobs int) ([]diagfmt.File, error) {
	events := make(chan ui.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		files, err := checkFiles(ctx, paths, baselines, jobs, ui.ChannelSink{Ch: events})
		outcomeCh <- checkOutcome{files: files, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("checking", paths, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.files, uiErr
	}
	return outcome.files, outcome.err
}
