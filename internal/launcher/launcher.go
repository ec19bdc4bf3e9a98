// Package launcher opens findings in the user's editor and copies locations
// to the system clipboard.
package launcher

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gubarz/fnspan/internal/config"
)

// ============================================================================
// Shell Runner
// ============================================================================

// Runner executes a shell command line
type Runner interface {
	Execute(command string) error
}

// ShellRunner runs commands through a shell with the given standard streams
type ShellRunner struct {
	Shell  string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Execute runs command with "shell -c"
func (r *ShellRunner) Execute(command string) error {
	cmd := exec.Command(r.Shell, "-c", command)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Env = os.Environ()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("shell error: %w", err)
	}
	return nil
}

// ============================================================================
// Clipboard
// ============================================================================

// Clipboard defines the interface for clipboard operations
type Clipboard interface {
	Copy(text string) error
}

// SystemClipboard copies through the first clipboard tool found in PATH and
// prints the text to Fallback when there is none.
type SystemClipboard struct {
	Fallback io.Writer
}

// Copy copies text to the system clipboard
func (c *SystemClipboard) Copy(text string) error {
	cmd := findClipboardCommand()
	if cmd == nil {
		out := c.Fallback
		if out == nil {
			out = os.Stdout
		}
		_, err := fmt.Fprintln(out, text)
		return err
	}
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// findClipboardCommand returns the clipboard command for the system
func findClipboardCommand() *exec.Cmd {
	switch {
	case commandExists("wl-copy"):
		return exec.Command("wl-copy")
	case commandExists("xclip"):
		return exec.Command("xclip", "-selection", "clipboard")
	case commandExists("xsel"):
		return exec.Command("xsel", "--clipboard", "--input")
	case commandExists("pbcopy"):
		return exec.Command("pbcopy")
	default:
		return nil
	}
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ============================================================================
// Launcher
// ============================================================================

// Launcher opens source locations in an editor
type Launcher struct {
	editor    string
	runner    Runner
	clipboard Clipboard
}

// New creates a launcher using the configured editor and shell, attached to
// the process's standard streams.
func New() *Launcher {
	return &Launcher{
		editor: config.GetEditor(),
		runner: &ShellRunner{
			Shell:  config.GetShell(),
			Stdin:  os.Stdin,
			Stdout: os.Stdout,
			Stderr: os.Stderr,
		},
		clipboard: &SystemClipboard{Fallback: os.Stdout},
	}
}

// WithEditor overrides the editor command
func (l *Launcher) WithEditor(editor string) *Launcher {
	l.editor = editor
	return l
}

// WithRunner sets a custom runner (useful for testing)
func (l *Launcher) WithRunner(r Runner) *Launcher {
	l.runner = r
	return l
}

// WithClipboard sets a custom clipboard implementation (useful for testing)
func (l *Launcher) WithClipboard(c Clipboard) *Launcher {
	l.clipboard = c
	return l
}

// EditorCommand builds the shell command opening path at line
func (l *Launcher) EditorCommand(path string, line int) string {
	editor := strings.TrimSpace(l.editor)
	if editor == "" {
		editor = "vi"
	}
	quoted := shellQuote(path)
	if line < 1 {
		return editor + " " + quoted
	}

	switch filepath.Base(strings.Fields(editor)[0]) {
	case "code", "code-insiders", "codium", "cursor":
		return editor + " -g " + shellQuote(path+":"+strconv.Itoa(line))
	case "subl", "zed":
		return editor + " " + shellQuote(path+":"+strconv.Itoa(line))
	default:
		// vi, vim, nvim, nano, emacs, micro, helix and kakoune all accept +N
		return editor + " +" + strconv.Itoa(line) + " " + quoted
	}
}

// OpenInEditor opens path at line in the configured editor
func (l *Launcher) OpenInEditor(path string, line int) error {
	return l.runner.Execute(l.EditorCommand(path, line))
}

// Copy places text on the clipboard
func (l *Launcher) Copy(text string) error {
	return l.clipboard.Copy(text)
}

// shellQuote wraps s in single quotes for POSIX shells
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
