// Package tui shows a highlighted markdown file next to its table of
// contents in the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/erkantaylan/marklite/internal/document"
	"github.com/erkantaylan/marklite/internal/highlight"
	"github.com/erkantaylan/marklite/internal/toc"
)

const (
	tocWidth = 32
	// Rows kept above a heading after jumping to it.
	scrollMargin = 1
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	focusedBorder = borderStyle.BorderForeground(lipgloss.Color("212"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	selectedItem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalItem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimText = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	statusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
)

type focus int

const (
	focusTOC focus = iota
	focusSource
)

// Model is the bubbletea model of the terminal view.
type Model struct {
	doc      *document.Document
	headings []toc.Heading
	elems    []toc.Element
	lines    []highlight.Line
	styles   highlight.Styles

	source viewport.Model
	cursor int
	focus  focus
	width  int
	height int
	ready  bool
}

// New builds the model for doc using the named theme.
func New(doc *document.Document, theme string) Model {
	return Model{
		doc:      doc,
		headings: toc.Extract(doc.Content),
		elems:    toc.SourceHeadings([]byte(doc.Content)),
		lines:    highlight.ClassifyDocument(doc.Content),
		styles:   highlight.NewStyles(theme),
		source:   viewport.New(0, 0),
	}
}

// Run starts the terminal view.
func Run(doc *document.Document, theme string) error {
	p := tea.NewProgram(New(doc, theme), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			if m.focus == focusTOC {
				m.focus = focusSource
			} else {
				m.focus = focusTOC
			}
			return m, nil
		}
		if m.focus == focusTOC {
			return m.updateTOC(msg), nil
		}
	}

	var cmd tea.Cmd
	m.source, cmd = m.source.Update(msg)
	return m, cmd
}

func (m Model) updateTOC(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.headings)-1 {
			m.cursor++
		}
	case "enter", "l":
		m.jump()
	}
	return m
}

// jump scrolls the source view to the selected heading.
func (m *Model) jump() {
	if m.cursor >= len(m.headings) {
		return
	}
	h := m.headings[m.cursor]
	screen := sourceScreen{&m.source}
	if toc.LocateLine(screen, m.elems, h.Line, scrollMargin) {
		return
	}
	// No parsed heading on that line (a "#" inside fenced code, say):
	// the row is still the line itself.
	screen.ScrollTo(float64(h.Line - scrollMargin))
}

// sourceScreen exposes the source viewport to the heading locator. Rows
// map one to one to source lines since the viewport does not wrap.
type sourceScreen struct {
	vp *viewport.Model
}

func (s sourceScreen) ElementTop(el toc.Element) (float64, bool) {
	if el.Line < 0 {
		return 0, false
	}
	return float64(el.Line - s.vp.YOffset), true
}

func (s sourceScreen) ScrollTop() float64 { return float64(s.vp.YOffset) }

func (s sourceScreen) ScrollTo(top float64) { s.vp.SetYOffset(int(top)) }

func (m *Model) layout() {
	// borders take two columns/rows, the status bar one row
	w := m.width - tocWidth - 4
	h := m.height - 3
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	m.source.Width = w
	m.source.Height = h

	rendered := make([]string, len(m.lines))
	for i, l := range m.lines {
		rendered[i] = m.styles.Render(l)
	}
	m.source.SetContent(strings.Join(rendered, "\n"))
	m.ready = true
}

func (m Model) tocView(height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Table of Contents"))
	b.WriteByte('\n')

	if len(m.headings) == 0 {
		b.WriteString(dimText.Padding(0, 1).Render("No headings found"))
		return b.String()
	}

	// keep the cursor visible
	start := 0
	rows := height - 1
	if rows < 1 {
		rows = 1
	}
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	for i := start; i < len(m.headings) && i < start+rows; i++ {
		h := m.headings[i]
		line := strings.Repeat(" ", toc.Indent(h.Level)) + h.Text
		if limit := tocWidth - 3; len([]rune(line)) > limit {
			line = string([]rune(line)[:limit-1]) + "…"
		}
		style := normalItem
		if i == m.cursor {
			style = selectedItem
		}
		b.WriteString(" ")
		b.WriteString(style.Render(line))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	tocBox, srcBox := borderStyle, borderStyle
	if m.focus == focusTOC {
		tocBox = focusedBorder
	} else {
		srcBox = focusedBorder
	}

	left := tocBox.Width(tocWidth).Height(m.source.Height).Render(m.tocView(m.source.Height))
	right := srcBox.Render(m.source.View())

	info := m.doc.Info()
	status := statusBar.Width(m.width).Render(fmt.Sprintf(
		"%s  %d lines  %s  %d%%  tab: switch  enter: jump  q: quit",
		info.Name, info.LineCount, info.Size, int(m.source.ScrollPercent()*100),
	))

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		status,
	)
}
