package launcher

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	commands []string
	err      error
}

func (r *fakeRunner) Execute(command string) error {
	r.commands = append(r.commands, command)
	return r.err
}

type fakeClipboard struct {
	copied []string
}

func (c *fakeClipboard) Copy(text string) error {
	c.copied = append(c.copied, text)
	return nil
}

func TestLauncher_EditorCommand(t *testing.T) {
	tests := []struct {
		name   string
		editor string
		path   string
		line   int
		want   string
	}{
		{"vim", "vim", "src/a.js", 12, "vim +12 'src/a.js'"},
		{"editor with args", "nvim -R", "src/a.js", 3, "nvim -R +3 'src/a.js'"},
		{"vscode", "code --wait", "src/a.js", 7, "code --wait -g 'src/a.js:7'"},
		{"absolute vscode", "/usr/bin/codium", "a.ts", 1, "/usr/bin/codium -g 'a.ts:1'"},
		{"sublime", "subl", "a.ts", 9, "subl 'a.ts:9'"},
		{"no line", "vim", "a.ts", 0, "vim 'a.ts'"},
		{"empty editor", "  ", "a.ts", 4, "vi +4 'a.ts'"},
		{"quotes path", "vim", "it's here.js", 2, `vim +2 'it'\''s here.js'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := (&Launcher{}).WithEditor(tt.editor)
			assert.Equal(t, tt.want, l.EditorCommand(tt.path, tt.line))
		})
	}
}

func TestLauncher_OpenInEditor(t *testing.T) {
	runner := &fakeRunner{}
	l := (&Launcher{}).WithEditor("nano").WithRunner(runner)

	require.NoError(t, l.OpenInEditor("lib/util.js", 40))
	assert.Equal(t, []string{"nano +40 'lib/util.js'"}, runner.commands)
}

func TestLauncher_OpenInEditorError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1")}
	l := (&Launcher{}).WithEditor("vim").WithRunner(runner)

	assert.EqualError(t, l.OpenInEditor("a.js", 1), "exit status 1")
}

func TestLauncher_Copy(t *testing.T) {
	clip := &fakeClipboard{}
	l := (&Launcher{}).WithClipboard(clip)

	require.NoError(t, l.Copy("src/a.js:10"))
	assert.Equal(t, []string{"src/a.js:10"}, clip.copied)
}

func TestSystemClipboard_FallbackPrints(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	var out bytes.Buffer
	c := &SystemClipboard{Fallback: &out}
	require.NoError(t, c.Copy("src/a.js:10"))
	assert.Equal(t, "src/a.js:10\n", out.String())
}

func TestShellRunner_Execute(t *testing.T) {
	var out bytes.Buffer
	r := &ShellRunner{Shell: "/bin/sh", Stdout: &out, Stderr: &out}

	require.NoError(t, r.Execute("printf hello"))
	assert.Equal(t, "hello", out.String())

	assert.Error(t, r.Execute("exit 3"))
}
