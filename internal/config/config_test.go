package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	C = Config{}
	t.Cleanup(func() {
		viper.Reset()
		C = Config{}
	})
}

func TestInit_Defaults(t *testing.T) {
	resetViper(t)
	chdir(t, t.TempDir())

	require.NoError(t, Init(""))

	assert.Equal(t, 50, GetMaxLines())
	assert.Equal(t, 50, C.MaxLines)
	assert.Equal(t, DefaultExtensions, GetExtensions())
	assert.Contains(t, GetSkipDirs(), "node_modules")
	assert.Contains(t, GetSkipDirs(), ".git")
	assert.True(t, GetRespectGitignore())
	assert.True(t, GetFailOnViolation())
	assert.Equal(t, "text", GetOutput())
	assert.Equal(t, "info", GetLogLevel())
	assert.Equal(t, "text", GetLogFormat())
	assert.GreaterOrEqual(t, GetWorkers(), 1)
	assert.Empty(t, GetAllow())
}

func TestInit_ConfigFile(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "fnspan.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`max_lines: 30
extensions: [js, .TS]
allow:
  - legacy/**
  - src/app.js:bootstrap
output: json
log:
  level: debug
  format: json
`), 0o644))

	require.NoError(t, Init(cfgPath))

	assert.Equal(t, 30, GetMaxLines())
	assert.Equal(t, []string{".js", ".ts"}, GetExtensions())
	assert.Equal(t, []string{"legacy/**", "src/app.js:bootstrap"}, GetAllow())
	assert.Equal(t, "json", GetOutput())
	assert.Equal(t, "debug", GetLogLevel())
	assert.Equal(t, "json", C.Log.Format)
}

func TestInit_MissingExplicitFile(t *testing.T) {
	resetViper(t)

	err := Init(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestInit_Env(t *testing.T) {
	resetViper(t)
	chdir(t, t.TempDir())
	t.Setenv("FNSPAN_MAX_LINES", "12")
	t.Setenv("FNSPAN_LOG_LEVEL", "warn")

	require.NoError(t, Init(""))

	assert.Equal(t, 12, GetMaxLines())
	assert.Equal(t, "warn", GetLogLevel())
}

func TestSetters(t *testing.T) {
	resetViper(t)
	chdir(t, t.TempDir())
	require.NoError(t, Init(""))

	SetMaxLines(80)
	SetOutput("yaml")
	SetShowAll(true)
	SetFailOnViolation(false)
	SetWorkers(3)
	AddAllow("a.js", "b.js:run")

	assert.Equal(t, 80, GetMaxLines())
	assert.Equal(t, "yaml", GetOutput())
	assert.True(t, GetShowAll())
	assert.False(t, GetFailOnViolation())
	assert.Equal(t, 3, GetWorkers())
	assert.Equal(t, []string{"a.js", "b.js:run"}, GetAllow())
	assert.Equal(t, []string{"a.js", "b.js:run"}, C.Allow)
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", expandTilde(""))
	assert.Equal(t, "src", expandTilde("src"))
	assert.Equal(t, filepath.Join(home, "code"), expandTilde("~/code"))
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
