// Package theme holds the lipgloss styles shared by the text report and the
// interactive browser.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/gubarz/fnspan/internal/config"
)

// Styles bundles every style used to render findings
type Styles struct {
	// Finding columns
	Path      lipgloss.Style
	Name      lipgloss.Style
	Violation lipgloss.Style
	Excused   lipgloss.Style
	Dim       lipgloss.Style

	// Browser chrome
	Header   lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Border   lipgloss.Style
	Divider  lipgloss.Style

	SelectedBg lipgloss.Color
}

// DefaultStyles returns the built-in styles
func DefaultStyles() *Styles {
	return &Styles{
		Path:       lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Name:       lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		Violation:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Excused:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Header:     lipgloss.NewStyle().Bold(true),
		Selected:   lipgloss.NewStyle().Background(lipgloss.Color("236")),
		Cursor:     lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Border:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
		Divider:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		SelectedBg: lipgloss.Color("236"),
	}
}

// PlainStyles returns styles that render text unchanged
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Path:      plain,
		Name:      plain,
		Violation: plain,
		Excused:   plain,
		Dim:       plain,
		Header:    plain,
		Selected:  plain,
		Cursor:    plain,
		Border:    plain,
		Divider:   plain,
	}
}

// LoadFromConfig updates styles from the color_* settings
func (s *Styles) LoadFromConfig() {
	pathColor := ParseANSIColor(config.GetColorPath())
	nameColor := ParseANSIColor(config.GetColorName())
	violationColor := ParseANSIColor(config.GetColorViolation())
	excusedColor := ParseANSIColor(config.GetColorExcused())
	dimColor := lipgloss.Color(config.GetColorDim())
	borderColor := lipgloss.Color(config.GetColorBorder())
	cursorColor := lipgloss.Color(config.GetColorCursor())
	selectedBg := lipgloss.Color(config.GetColorSelected())

	s.Path = lipgloss.NewStyle().Foreground(pathColor)
	s.Name = lipgloss.NewStyle().Foreground(nameColor)
	s.Violation = lipgloss.NewStyle().Foreground(violationColor)
	s.Excused = lipgloss.NewStyle().Foreground(excusedColor)
	s.Dim = lipgloss.NewStyle().Foreground(dimColor)

	s.Header = lipgloss.NewStyle().Bold(true).Foreground(nameColor)
	s.Selected = lipgloss.NewStyle().Background(selectedBg)
	s.Cursor = lipgloss.NewStyle().Foreground(cursorColor)
	s.Border = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderColor)
	s.Divider = lipgloss.NewStyle().Foreground(borderColor)
	s.SelectedBg = selectedBg
}

// FromConfig returns default styles updated from config
func FromConfig() *Styles {
	s := DefaultStyles()
	s.LoadFromConfig()
	return s
}

// WithSelection returns a copy of style with the selected background applied
func (s *Styles) WithSelection(style lipgloss.Style) lipgloss.Style {
	if s.SelectedBg == "" {
		return style
	}
	return style.Background(s.SelectedBg)
}

// ParseANSIColor maps ANSI SGR foreground codes (31, 92, ...) to the
// terminal palette index lipgloss expects; anything else passes through.
func ParseANSIColor(code string) lipgloss.Color {
	ansiToLipgloss := map[string]string{
		"30": "0", "31": "1", "32": "2", "33": "3",
		"34": "4", "35": "5", "36": "6", "37": "7",
		"90": "8", "91": "9", "92": "10", "93": "11",
		"94": "12", "95": "13", "96": "14", "97": "15",
	}
	if mapped, ok := ansiToLipgloss[code]; ok {
		return lipgloss.Color(mapped)
	}
	return lipgloss.Color(code)
}
