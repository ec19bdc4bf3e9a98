// Package report renders analyzer results as text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gubarz/fnspan/internal/analyzer"
	"github.com/gubarz/fnspan/internal/theme"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the supported output formats
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// Options controls rendering
type Options struct {
	Format string
	// Styles colors the text format; nil renders plain text
	Styles *theme.Styles
	// Column widths for the text format; zero uses the defaults
	ColumnGap     int
	LocationWidth int
	NameWidth     int
}

// Write renders report to w in the requested format
func Write(w io.Writer, report *analyzer.Report, opts Options) error {
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", FormatText:
		return writeText(w, report, opts)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (supported: %s)", opts.Format, strings.Join(Formats, ", "))
	}
}

type columns struct {
	gap      string
	location int
	name     int
}

func (o Options) columns(report *analyzer.Report) columns {
	gap := o.ColumnGap
	if gap <= 0 {
		gap = 2
	}
	maxLoc := o.LocationWidth
	if maxLoc <= 0 {
		maxLoc = 48
	}
	maxName := o.NameWidth
	if maxName <= 0 {
		maxName = 32
	}

	// shrink to the widest value actually present
	cols := columns{gap: strings.Repeat(" ", gap)}
	for _, f := range report.Findings {
		cols.location = max(cols.location, len(Location(f)))
		cols.name = max(cols.name, len(f.Span.Name))
	}
	cols.location = min(cols.location, maxLoc)
	cols.name = min(cols.name, maxName)
	return cols
}

func writeText(w io.Writer, report *analyzer.Report, opts Options) error {
	styles := opts.Styles
	if styles == nil {
		styles = theme.PlainStyles()
	}
	cols := opts.columns(report)

	var b strings.Builder
	for _, f := range report.Findings {
		b.WriteString(styles.Path.Render(pad(Location(f), cols.location)))
		b.WriteString(cols.gap)
		b.WriteString(styles.Name.Render(pad(f.Span.Name, cols.name)))
		b.WriteString(cols.gap)
		b.WriteString(lengthStyle(styles, f).Render(strconv.Itoa(f.Span.LineCount) + " lines"))
		if f.Allowed {
			b.WriteString(cols.gap)
			b.WriteString(styles.Dim.Render("allowed by " + f.AllowRule))
		}
		b.WriteByte('\n')
	}
	b.WriteString(Summary(report))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func lengthStyle(styles *theme.Styles, f analyzer.Finding) lipgloss.Style {
	switch {
	case f.Violation():
		return styles.Violation
	case f.Allowed:
		return styles.Excused
	default:
		return styles.Dim
	}
}

// Location formats a finding as path:start-end
func Location(f analyzer.Finding) string {
	return fmt.Sprintf("%s:%d-%d", f.File, f.Span.StartLine, f.Span.EndLine)
}

// Summary is the one-line totals footer of the text report
func Summary(report *analyzer.Report) string {
	return fmt.Sprintf("%s, %d excused, %s in %s (max %d lines)",
		plural(report.Violations, "violation"),
		report.Excused,
		plural(report.Functions, "function"),
		plural(report.Files, "file"),
		report.Threshold)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// pad truncates or right-pads s to exactly width runes
func pad(s string, width int) string {
	if width <= 0 {
		return s
	}
	s = truncateString(s, width)
	if n := lipgloss.Width(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}

func truncateString(s string, maxLen int) string {
	if maxLen <= 3 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
