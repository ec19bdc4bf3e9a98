package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/fnspan/internal/analyzer"
	"github.com/gubarz/fnspan/internal/config"
	"github.com/gubarz/fnspan/internal/theme"
)

// ============================================================================
// String Builder Pool - reduces GC pressure from rendering
// ============================================================================

var builderPool = sync.Pool{
	New: func() interface{} {
		return &strings.Builder{}
	},
}

func getBuilder() *strings.Builder {
	b := builderPool.Get().(*strings.Builder)
	b.Reset()
	return b
}

func putBuilder(b *strings.Builder) {
	if b.Cap() < 64*1024 {
		builderPool.Put(b)
	}
}

var styles = theme.DefaultStyles()

// Opener is what the browser needs to act on a finding
type Opener interface {
	OpenInEditor(path string, line int) error
	Copy(text string) error
}

// ============================================================================
// Finding Item
// ============================================================================

// findingItem wraps a Finding with display and search metadata
type findingItem struct {
	finding  analyzer.Finding
	location string
	search   string // lower-cased file and function name
	source   []string
}

func newFindingItem(f analyzer.Finding, sources map[string]string) findingItem {
	item := findingItem{
		finding:  f,
		location: fmt.Sprintf("%s:%d-%d", f.File, f.Span.StartLine, f.Span.EndLine),
		search:   strings.ToLower(f.File + " " + f.Span.Name),
	}
	if text, ok := sources[f.Path]; ok {
		item.source = strings.Split(text, "\n")
	}
	return item
}

// target is the path:line copied to the clipboard
func (item *findingItem) target() string {
	return item.finding.Path + ":" + strconv.Itoa(item.finding.Span.StartLine)
}

// matchesQuery checks that every lower-cased word occurs in the item
func (item *findingItem) matchesQuery(words []string) bool {
	for _, word := range words {
		if !strings.Contains(item.search, word) {
			return false
		}
	}
	return true
}

// ============================================================================
// Column Config
// ============================================================================

type columnConfig struct {
	locationWidth int
	nameWidth     int
	gap           int
}

func loadColumnConfig() columnConfig {
	return columnConfig{
		locationWidth: max(config.GetColumnLocation(), 8),
		nameWidth:     max(config.GetColumnName(), 4),
		gap:           max(config.GetColumnGap(), 1),
	}
}

// ============================================================================
// Messages
// ============================================================================

// filterMsg triggers filtering after debounce
type filterMsg struct{}

func debounceFilter() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return filterMsg{}
	})
}

// statusMsg replaces the footer status text
type statusMsg struct {
	text string
	err  error
}

// execFunc adapts a blocking call to tea.ExecCommand so the terminal is
// released while it runs.
type execFunc func() error

func (f execFunc) Run() error { return f() }

func (execFunc) SetStdin(io.Reader) {}

func (execFunc) SetStdout(io.Writer) {}

func (execFunc) SetStderr(io.Writer) {}

// ============================================================================
// Browser Model
// ============================================================================

const previewLines = 8

// browserModel is the Bubble Tea model listing findings
type browserModel struct {
	width     int
	height    int
	textInput textinput.Model
	quitting  bool

	items     []findingItem
	filtered  []findingItem
	cursor    int
	offset    int
	selected  *analyzer.Finding
	columns   columnConfig
	threshold int
	status    string

	opener Opener
}

func newBrowserModel(report *analyzer.Report, sources map[string]string, opener Opener) browserModel {
	ti := textinput.New()
	ti.Placeholder = "Filter by file or function..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	items := make([]findingItem, len(report.Findings))
	for i, f := range report.Findings {
		items[i] = newFindingItem(f, sources)
	}

	return browserModel{
		textInput: ti,
		items:     items,
		filtered:  items,
		columns:   loadColumnConfig(),
		threshold: report.Threshold,
		opener:    opener,
	}
}

// Init implements tea.Model
func (m browserModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 4
	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}
	case filterMsg:
		m.filterFindings()
		return m, nil
	case statusMsg:
		m.status = msg.text
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
		}
		return m, nil
	}

	prevQuery := m.textInput.Value()
	var tiCmd tea.Cmd
	m.textInput, tiCmd = m.textInput.Update(msg)
	cmds = append(cmds, tiCmd)

	if m.textInput.Value() != prevQuery {
		cmds = append(cmds, debounceFilter())
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes navigation and action keys
func (m *browserModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return tea.Quit
	case "enter":
		if item, ok := m.current(); ok {
			m.selected = &item.finding
			return tea.Quit
		}
	case "up", "ctrl+p":
		m.moveCursor(-1)
	case "down", "ctrl+n":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-10)
	case "pgdown":
		m.moveCursor(10)
	case "home", "ctrl+a":
		m.cursor = 0
		m.adjustOffset()
	case "end", "ctrl+e":
		m.cursor = max(0, len(m.filtered)-1)
		m.adjustOffset()
	case "ctrl+o":
		if item, ok := m.current(); ok && m.opener != nil {
			f, opener := item.finding, m.opener
			return tea.Exec(execFunc(func() error {
				return opener.OpenInEditor(f.Path, f.Span.StartLine)
			}), func(err error) tea.Msg {
				return statusMsg{text: "opened " + f.File, err: err}
			})
		}
	case "ctrl+y":
		if item, ok := m.current(); ok && m.opener != nil {
			target := item.target()
			opener := m.opener
			return func() tea.Msg {
				return statusMsg{text: "copied " + target, err: opener.Copy(target)}
			}
		}
	}
	return nil
}

func (m *browserModel) current() (findingItem, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return findingItem{}, false
	}
	return m.filtered[m.cursor], true
}

// moveCursor moves the cursor by delta, clamping to valid range
func (m *browserModel) moveCursor(delta int) {
	m.cursor += delta
	m.cursor = clamp(m.cursor, 0, max(0, len(m.filtered)-1))
	m.adjustOffset()
}

// adjustOffset keeps the cursor inside the estimated viewport
func (m *browserModel) adjustOffset() {
	viewHeight := max(m.height-previewLines-5, 3)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+viewHeight {
		m.offset = m.cursor - viewHeight + 1
	}
	m.offset = clamp(m.offset, 0, max(0, len(m.filtered)-viewHeight))
}

// filterFindings applies the multi-word query to the item list
func (m *browserModel) filterFindings() {
	query := strings.TrimSpace(m.textInput.Value())

	if query == "" {
		m.filtered = m.items
	} else {
		words := strings.Fields(strings.ToLower(query))
		m.filtered = make([]findingItem, 0, len(m.items))
		for i := range m.items {
			if m.items[i].matchesQuery(words) {
				m.filtered = append(m.filtered, m.items[i])
			}
		}
	}

	m.cursor = clamp(m.cursor, 0, max(0, len(m.filtered)-1))
	m.adjustOffset()
}

// ============================================================================
// Rendering
// ============================================================================

// View implements tea.Model
func (m browserModel) View() string {
	if m.quitting {
		return ""
	}

	width := max(m.width, 80)
	height := max(m.height, 24)

	preview := m.renderPreview(width)
	previewHeight := countLines(preview)

	inputLines := 3 // divider + info + input
	listHeight := max(height-previewHeight-inputLines, 3)
	list := m.renderList(listHeight)

	padding := max(height-previewHeight-countLines(list)-inputLines, 0)

	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(preview)
	b.WriteString(list)
	b.WriteString(strings.Repeat("\n", padding))
	b.WriteString(m.renderInput(width))

	return b.String()
}

// renderPreview shows the header and first source lines of the current finding
func (m browserModel) renderPreview(width int) string {
	b := getBuilder()
	defer putBuilder(b)
	lines := 0

	if item, ok := m.current(); ok {
		f := item.finding
		b.WriteString(styles.Path.Render(item.location))
		b.WriteString(" ")
		b.WriteString(styles.Header.Render(f.Span.Name))
		b.WriteString(" ")
		b.WriteString(lengthStyle(f).Render(fmt.Sprintf("%d lines", f.Span.LineCount)))
		b.WriteString("\n")
		lines++

		for _, line := range sourceWindow(item.source, f.Span.StartLine, f.Span.EndLine, previewLines-1) {
			b.WriteString(styles.Dim.Render(line.number))
			b.WriteString(" ")
			b.WriteString(truncateString(strings.ReplaceAll(line.text, "\t", "    "), width-len(line.number)-1))
			b.WriteString("\n")
			lines++
		}
	}

	for lines < previewLines {
		b.WriteString("\n")
		lines++
	}

	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")

	return b.String()
}

type numberedLine struct {
	number string
	text   string
}

// sourceWindow returns up to limit lines from start to end, 1-based
func sourceWindow(source []string, start, end, limit int) []numberedLine {
	if len(source) == 0 || start < 1 {
		return nil
	}
	end = min(end, len(source), start+limit-1)
	digits := len(strconv.Itoa(end))

	var out []numberedLine
	for n := start; n <= end; n++ {
		out = append(out, numberedLine{
			number: fmt.Sprintf("%*d", digits, n),
			text:   strings.TrimRight(source[n-1], "\r"),
		})
	}
	return out
}

// renderList renders the scrollable list of findings
func (m *browserModel) renderList(maxHeight int) string {
	if len(m.filtered) == 0 {
		return ""
	}

	start, end := scrollWindow(m.cursor, len(m.filtered), maxHeight, &m.offset)
	gap := strings.Repeat(" ", m.columns.gap)

	b := getBuilder()
	defer putBuilder(b)
	for i := start; i < end; i++ {
		b.WriteString(m.renderListItem(m.filtered[i], i == m.cursor, gap))
		b.WriteString("\n")
	}

	return b.String()
}

// renderListItem renders one finding row
func (m browserModel) renderListItem(item findingItem, selected bool, gap string) string {
	pathStyle, nameStyle, lenStyle := styles.Path, styles.Name, lengthStyle(item.finding)
	gapStr := gap
	if selected {
		pathStyle = styles.WithSelection(pathStyle)
		nameStyle = styles.WithSelection(nameStyle)
		lenStyle = styles.WithSelection(lenStyle)
		gapStr = styles.Selected.Render(gap)
	}

	location := padRight(truncateString(item.location, m.columns.locationWidth), m.columns.locationWidth)
	name := padRight(truncateString(item.finding.Span.Name, m.columns.nameWidth), m.columns.nameWidth)
	length := strconv.Itoa(item.finding.Span.LineCount)
	if item.finding.Allowed {
		length += " (allowed)"
	}

	line := pathStyle.Render(location) + gapStr + nameStyle.Render(name) + gapStr + lenStyle.Render(length)
	if selected {
		return styles.Cursor.Render("▶ ") + line
	}
	return "  " + line
}

func lengthStyle(f analyzer.Finding) lipgloss.Style {
	switch {
	case f.Violation():
		return styles.Violation
	case f.Allowed:
		return styles.Excused
	default:
		return styles.Dim
	}
}

// renderInput renders the footer with counts, key help and the filter input
func (m browserModel) renderInput(width int) string {
	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render(fmt.Sprintf("  %d/%d over %d lines", len(m.filtered), len(m.items), m.threshold)))
	b.WriteString(" • ")
	b.WriteString(styles.Dim.Render("Enter/Ctrl+O open"))
	b.WriteString(" • ")
	b.WriteString(styles.Dim.Render("Ctrl+Y copy"))
	b.WriteString(" • ")
	b.WriteString(styles.Dim.Render("ESC exit"))
	if m.status != "" {
		b.WriteString(" • ")
		b.WriteString(styles.Excused.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.textInput.View())
	return b.String()
}

// ============================================================================
// Helpers
// ============================================================================

// clamp restricts v to the range [minV, maxV]
func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// countLines counts the number of lines in a string
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// scrollWindow calculates the visible range for a scrollable list
func scrollWindow(cursor, total, height int, offset *int) (start, end int) {
	if cursor < *offset {
		*offset = cursor
	}
	if cursor >= *offset+height {
		*offset = cursor - height + 1
	}
	*offset = clamp(*offset, 0, max(0, total-height))

	start = *offset
	end = min(start+height, total)
	return
}

// truncateString truncates a string to maxLen with ellipsis
func truncateString(s string, maxLen int) string {
	if maxLen <= 3 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
