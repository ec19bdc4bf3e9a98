package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	ScanPath         string   `mapstructure:"path"`
	MaxLines         int      `mapstructure:"max_lines"`
	Extensions       []string `mapstructure:"extensions"`
	SkipDirs         []string `mapstructure:"skip_dirs"`
	RespectGitignore bool     `mapstructure:"respect_gitignore"`
	MaxFileBytes     int64    `mapstructure:"max_file_bytes"`
	Workers          int      `mapstructure:"workers"`
	Allow            []string `mapstructure:"allow"`
	Output           string   `mapstructure:"output"`
	ShowAll          bool     `mapstructure:"show_all"`
	FailOnViolation  bool     `mapstructure:"fail_on_violation"`
	Editor           string   `mapstructure:"editor"`
	Shell            string   `mapstructure:"shell"`
	ColorPath        string   `mapstructure:"color_path"`
	ColorName        string   `mapstructure:"color_name"`
	ColorViolation   string   `mapstructure:"color_violation"`
	ColorExcused     string   `mapstructure:"color_excused"`
	ColorDim         string   `mapstructure:"color_dim"`
	ColorBorder      string   `mapstructure:"color_border"`
	ColorCursor      string   `mapstructure:"color_cursor"`
	ColorSelected    string   `mapstructure:"color_selected"`
	ColumnGap        int      `mapstructure:"column_gap"`
	ColumnLocation   int      `mapstructure:"column_location"`
	ColumnName       int      `mapstructure:"column_name"`
	Log              Log      `mapstructure:"log"`
}

// Log holds logging settings
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// C is the global config instance
var C Config

// DefaultExtensions are the source file extensions scanned when none are configured
var DefaultExtensions = []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx"}

// DefaultSkipDirs are build-output, dependency and version-control directories
var DefaultSkipDirs = []string{"node_modules", ".git", "dist", "build", "coverage", ".next", "out"}

// Init initializes configuration with viper. An explicit cfgFile must exist;
// otherwise the usual search paths are tried and a missing file is fine.
func Init(cfgFile string) error {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("fnspan")
		viper.SetConfigType("yaml")

		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "fnspan"))
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("FNSPAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return err
		}
	}

	return viper.Unmarshal(&C)
}

func setDefaults() {
	viper.SetDefault("path", ".")
	viper.SetDefault("max_lines", 50)
	viper.SetDefault("extensions", DefaultExtensions)
	viper.SetDefault("skip_dirs", DefaultSkipDirs)
	viper.SetDefault("respect_gitignore", true)
	viper.SetDefault("max_file_bytes", 2<<20)
	viper.SetDefault("workers", runtime.NumCPU())
	viper.SetDefault("allow", []string{})
	viper.SetDefault("output", "text")
	viper.SetDefault("show_all", false)
	viper.SetDefault("fail_on_violation", true)
	viper.SetDefault("editor", getDefaultEditor())
	viper.SetDefault("shell", getDefaultShell())
	viper.SetDefault("color_path", "36")      // Cyan
	viper.SetDefault("color_name", "97")      // White
	viper.SetDefault("color_violation", "31") // Red
	viper.SetDefault("color_excused", "33")   // Yellow
	viper.SetDefault("color_dim", "241")
	viper.SetDefault("color_border", "240")
	viper.SetDefault("color_cursor", "212")
	viper.SetDefault("color_selected", "236")
	viper.SetDefault("column_gap", 2)       // Spaces between columns
	viper.SetDefault("column_location", 48) // Max file:lines width
	viper.SetDefault("column_name", 32)     // Max function name width
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

// GetPath returns the scan path with tilde expansion
func GetPath() string {
	return expandTilde(viper.GetString("path"))
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetMaxLines returns the function length threshold
func GetMaxLines() int {
	return viper.GetInt("max_lines")
}

// GetExtensions returns the accepted file extensions, lowercased with a leading dot
func GetExtensions() []string {
	exts := viper.GetStringSlice("extensions")
	if len(exts) == 0 {
		return DefaultExtensions
	}
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// GetSkipDirs returns directory names never descended into
func GetSkipDirs() []string {
	return viper.GetStringSlice("skip_dirs")
}

// GetRespectGitignore returns whether the root .gitignore is honoured
func GetRespectGitignore() bool {
	return viper.GetBool("respect_gitignore")
}

// GetMaxFileBytes returns the largest file size scanned
func GetMaxFileBytes() int64 {
	return viper.GetInt64("max_file_bytes")
}

// GetWorkers returns the analyzer concurrency, at least 1
func GetWorkers() int {
	if n := viper.GetInt("workers"); n > 0 {
		return n
	}
	return 1
}

// GetAllow returns the allow-list entries
func GetAllow() []string {
	return viper.GetStringSlice("allow")
}

// GetOutput returns the report format
func GetOutput() string {
	return viper.GetString("output")
}

// GetShowAll returns whether every function is reported
func GetShowAll() bool {
	return viper.GetBool("show_all")
}

// GetFailOnViolation returns whether unexcused violations fail the run
func GetFailOnViolation() bool {
	return viper.GetBool("fail_on_violation")
}

// GetEditor returns the editor command used to open findings
func GetEditor() string {
	return viper.GetString("editor")
}

// GetShell returns the shell
func GetShell() string {
	return viper.GetString("shell")
}

// GetColorPath returns ANSI color code for file locations
func GetColorPath() string {
	return viper.GetString("color_path")
}

// GetColorName returns ANSI color code for function names
func GetColorName() string {
	return viper.GetString("color_name")
}

// GetColorViolation returns ANSI color code for line counts over the threshold
func GetColorViolation() string {
	return viper.GetString("color_violation")
}

// GetColorExcused returns ANSI color code for allow-listed violations
func GetColorExcused() string {
	return viper.GetString("color_excused")
}

// GetColorDim returns the color for secondary text
func GetColorDim() string {
	return viper.GetString("color_dim")
}

// GetColorBorder returns the color for borders and dividers
func GetColorBorder() string {
	return viper.GetString("color_border")
}

// GetColorCursor returns the color for the TUI cursor
func GetColorCursor() string {
	return viper.GetString("color_cursor")
}

// GetColorSelected returns the background color for the selected row
func GetColorSelected() string {
	return viper.GetString("color_selected")
}

// GetColumnGap returns spacing between columns
func GetColumnGap() int {
	return viper.GetInt("column_gap")
}

// GetColumnLocation returns max location column width
func GetColumnLocation() int {
	return viper.GetInt("column_location")
}

// GetColumnName returns max function name column width
func GetColumnName() int {
	return viper.GetInt("column_name")
}

// GetLogLevel returns the log level
func GetLogLevel() string {
	return viper.GetString("log.level")
}

// GetLogFormat returns the log format
func GetLogFormat() string {
	return viper.GetString("log.format")
}

// SetOutput sets the report format at runtime
func SetOutput(mode string) {
	viper.Set("output", mode)
	C.Output = mode
}

// SetMaxLines sets the threshold at runtime
func SetMaxLines(n int) {
	viper.Set("max_lines", n)
	C.MaxLines = n
}

// SetWorkers sets the analyzer concurrency at runtime
func SetWorkers(n int) {
	viper.Set("workers", n)
	C.Workers = n
}

// SetShowAll sets whether every function is reported
func SetShowAll(all bool) {
	viper.Set("show_all", all)
	C.ShowAll = all
}

// SetFailOnViolation sets whether violations fail the run
func SetFailOnViolation(fail bool) {
	viper.Set("fail_on_violation", fail)
	C.FailOnViolation = fail
}

// AddAllow appends allow-list entries at runtime
func AddAllow(entries ...string) {
	allow := append(GetAllow(), entries...)
	viper.Set("allow", allow)
	C.Allow = allow
}

func getDefaultShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/sh"
}

func getDefaultEditor() string {
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	return "vi"
}
