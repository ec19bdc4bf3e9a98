package ui

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/fnspan/internal/analyzer"
)

// ErrNoFindings is returned when there is nothing to browse
var ErrNoFindings = errors.New("no functions to browse")

// getTTY returns file handles for TUI input/output.
// Uses /dev/tty when stdout is piped so the report can still be redirected.
func getTTY() (in *os.File, out *os.File, cleanup func()) {
	var closers []func()

	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) == 0 {
		out, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			out = os.Stderr
		} else {
			closers = append(closers, func() { out.Close() })
		}

		in, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			in = os.Stdin
		} else {
			closers = append(closers, func() { in.Close() })
		}

		// color detection follows the terminal, not the pipe
		lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(out))

		return in, out, func() {
			for _, c := range closers {
				c()
			}
		}
	}

	return os.Stdin, os.Stdout, func() {}
}

// RefreshStyles reloads the browser styles from config
func RefreshStyles() {
	styles.LoadFromConfig()
}

// Run launches the findings browser. sources maps a finding's Path to the
// file text shown in the preview. Choosing a finding with Enter opens it in
// the editor after the browser exits.
func Run(report *analyzer.Report, sources map[string]string, opener Opener) error {
	if len(report.Findings) == 0 {
		return ErrNoFindings
	}

	m := newBrowserModel(report, sources, opener)

	ttyIn, ttyOut, cleanup := getTTY()
	RefreshStyles() // after getTTY sets up the renderer
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(ttyOut), tea.WithInput(ttyIn))
	finalModel, err := p.Run()
	cleanup()

	if err != nil {
		return err
	}

	result := finalModel.(browserModel)
	if result.selected == nil {
		return nil
	}
	return opener.OpenInEditor(result.selected.Path, result.selected.Span.StartLine)
}
