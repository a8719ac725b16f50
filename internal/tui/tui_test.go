package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/erkantaylan/marklite/internal/document"
)

func testDoc() *document.Document {
	var b strings.Builder
	b.WriteString("# Intro\n\n")
	for i := 0; i < 48; i++ {
		b.WriteString("filler line\n")
	}
	// line 50
	b.WriteString("## **Usage** notes\n")
	for i := 0; i < 60; i++ {
		b.WriteString("more text\n")
	}
	content := b.String()
	return &document.Document{Name: "t.md", Content: content, Original: content, Size: int64(len(content))}
}

func send(m tea.Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m.(Model)
}

func TestJumpToHeading(t *testing.T) {
	m := send(New(testDoc(), "dark"),
		tea.WindowSizeMsg{Width: 100, Height: 20},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
	if got, want := m.source.YOffset, 50-scrollMargin; got != want {
		t.Errorf("YOffset = %d, want %d", got, want)
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyEnter})
	if m.source.YOffset != 0 {
		t.Errorf("YOffset = %d after jumping to the first heading, want 0", m.source.YOffset)
	}
}

func TestCursorBounds(t *testing.T) {
	m := send(New(testDoc(), "dark"),
		tea.WindowSizeMsg{Width: 100, Height: 20},
		tea.KeyMsg{Type: tea.KeyUp},
	)
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
}

func TestFocusSwitch(t *testing.T) {
	m := send(New(testDoc(), "dark"),
		tea.WindowSizeMsg{Width: 100, Height: 20},
		tea.KeyMsg{Type: tea.KeyTab},
		tea.KeyMsg{Type: tea.KeyDown},
	)
	if m.focus != focusSource {
		t.Fatal("tab should move focus to the source view")
	}
	if m.cursor != 0 {
		t.Error("keys in the source view should not move the TOC cursor")
	}
	if m.source.YOffset != 1 {
		t.Errorf("YOffset = %d, want 1", m.source.YOffset)
	}
}

func TestView(t *testing.T) {
	m := New(testDoc(), "light")
	if m.View() != "Loading..." {
		t.Error("view before sizing should be a placeholder")
	}
	m = send(m, tea.WindowSizeMsg{Width: 100, Height: 20})
	out := m.View()
	for _, want := range []string{"Table of Contents", "Intro", "Usage", "t.md"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestNoHeadings(t *testing.T) {
	doc := &document.Document{Name: "empty.md", Content: "just text"}
	m := send(New(doc, "dark"), tea.WindowSizeMsg{Width: 80, Height: 10}, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.View(), "No headings found") {
		t.Error("expected empty TOC placeholder")
	}
}

func TestJumpToFencedHeading(t *testing.T) {
	var b strings.Builder
	b.WriteString("# Intro\n\n")
	for i := 0; i < 30; i++ {
		b.WriteString("filler line\n")
	}
	// line 32 opens a fence holding a pseudo-heading on line 33
	b.WriteString("```\n# Setup\n```\n")
	for i := 0; i < 30; i++ {
		b.WriteString("filler line\n")
	}
	// line 65
	b.WriteString("## Setup guide\n")
	for i := 0; i < 60; i++ {
		b.WriteString("more text\n")
	}
	content := b.String()
	doc := &document.Document{Name: "f.md", Content: content, Original: content}

	m := send(New(doc, "dark"),
		tea.WindowSizeMsg{Width: 100, Height: 20},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	if got, want := m.source.YOffset, 33-scrollMargin; got != want {
		t.Errorf("fenced heading: YOffset = %d, want %d", got, want)
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	if got, want := m.source.YOffset, 65-scrollMargin; got != want {
		t.Errorf("parsed heading: YOffset = %d, want %d", got, want)
	}
}
