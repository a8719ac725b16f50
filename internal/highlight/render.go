package highlight

import (
	"html"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HTML renders a line as escaped spans with "md-<role>" classes. Plain
// spans are emitted without a wrapper. An empty line renders as a
// non-breaking space so the row keeps its height next to the textarea.
func HTML(l Line) string {
	if l.String() == "" {
		return "&nbsp;"
	}
	var b strings.Builder
	for _, s := range l {
		if s.Role == Plain {
			b.WriteString(html.EscapeString(s.Text))
			continue
		}
		b.WriteString(`<span class="md-`)
		b.WriteString(s.Role.String())
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(s.Text))
		b.WriteString(`</span>`)
	}
	return b.String()
}

// HTMLDocument renders every line of doc.
func HTMLDocument(doc string) []string {
	lines := ClassifyDocument(doc)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = HTML(l)
	}
	return out
}

// Palette holds the syntax colors of one theme.
type Palette struct {
	Text   lipgloss.Color
	H1     lipgloss.Color
	H2     lipgloss.Color
	H3     lipgloss.Color
	Code   lipgloss.Color
	List   lipgloss.Color
	Number lipgloss.Color
	Quote  lipgloss.Color
	Link   lipgloss.Color
	Bold   lipgloss.Color
}

var palettes = map[string]Palette{
	"dark": {
		Text:   lipgloss.Color("#e5e5e5"),
		H1:     lipgloss.Color("#ffffff"),
		H2:     lipgloss.Color("#e5e5e5"),
		H3:     lipgloss.Color("#d4d4d4"),
		Code:   lipgloss.Color("#a3a3a3"),
		List:   lipgloss.Color("#cba6f7"),
		Number: lipgloss.Color("#f9e2af"),
		Quote:  lipgloss.Color("#737373"),
		Link:   lipgloss.Color("#89b4fa"),
		Bold:   lipgloss.Color("#ffffff"),
	},
	"light": {
		Text:   lipgloss.Color("#171717"),
		H1:     lipgloss.Color("#171717"),
		H2:     lipgloss.Color("#262626"),
		H3:     lipgloss.Color("#404040"),
		Code:   lipgloss.Color("#dc2626"),
		List:   lipgloss.Color("#7c3aed"),
		Number: lipgloss.Color("#b45309"),
		Quote:  lipgloss.Color("#525252"),
		Link:   lipgloss.Color("#2563eb"),
		Bold:   lipgloss.Color("#171717"),
	},
	"paper": {
		Text:   lipgloss.Color("#3d3d3d"),
		H1:     lipgloss.Color("#3d3029"),
		H2:     lipgloss.Color("#5c4033"),
		H3:     lipgloss.Color("#6b5344"),
		Code:   lipgloss.Color("#8b5a2b"),
		List:   lipgloss.Color("#5c4033"),
		Number: lipgloss.Color("#8b5a2b"),
		Quote:  lipgloss.Color("#6b6352"),
		Link:   lipgloss.Color("#2d5a7b"),
		Bold:   lipgloss.Color("#5c4033"),
	},
}

// Styles maps each role to a terminal style.
type Styles struct {
	roles map[Role]lipgloss.Style
}

// NewStyles builds styles for the named theme, falling back to "dark".
func NewStyles(theme string) Styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes["dark"]
	}
	base := lipgloss.NewStyle().Foreground(p.Text)
	return Styles{roles: map[Role]lipgloss.Style{
		Plain:             base,
		Heading1:          lipgloss.NewStyle().Foreground(p.H1).Bold(true),
		Heading2:          lipgloss.NewStyle().Foreground(p.H2).Bold(true),
		Heading3:          lipgloss.NewStyle().Foreground(p.H3).Bold(true),
		CodeFence:         lipgloss.NewStyle().Foreground(p.Code),
		ListMarker:        lipgloss.NewStyle().Foreground(p.List),
		OrderedListMarker: lipgloss.NewStyle().Foreground(p.Number),
		Blockquote:        lipgloss.NewStyle().Foreground(p.Quote).Italic(true),
		Link:              lipgloss.NewStyle().Foreground(p.Link),
		LinkURL:           lipgloss.NewStyle().Foreground(p.Code),
		Bold:              lipgloss.NewStyle().Foreground(p.Bold).Bold(true),
	}}
}

// Style returns the style for r.
func (s Styles) Style(r Role) lipgloss.Style {
	if st, ok := s.roles[r]; ok {
		return st
	}
	return s.roles[Plain]
}

// Render renders a line for the terminal.
func (s Styles) Render(l Line) string {
	var b strings.Builder
	for _, sp := range l {
		if sp.Text == "" {
			continue
		}
		b.WriteString(s.Style(sp.Role).Render(sp.Text))
	}
	return b.String()
}
