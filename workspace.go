package main

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/erkantaylan/marklite/internal/document"
	"github.com/erkantaylan/marklite/internal/highlight"
	"github.com/erkantaylan/marklite/internal/toc"
)

// TOCEntry is a heading with its sidebar presentation
type TOCEntry struct {
	toc.Heading
	Indent int    `json:"indent"`
	Icon   string `json:"icon"`
}

// Scroll tells a client where to scroll its preview
type Scroll struct {
	Top   float64 `json:"top"`
	ID    string  `json:"id,omitempty"`
	Level int     `json:"level"`
	Index int     `json:"index"`
}

// Cursor is a 1-based caret position in the source
type Cursor struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Settings are the display preferences shared by all clients
type Settings struct {
	Theme    string `json:"theme"`
	Font     string `json:"font"`
	FontSize string `json:"fontSize"`
}

// Workspace owns the open document and everything derived from it
type Workspace struct {
	mu       sync.Mutex
	doc      *document.Document
	renderer *Renderer
	html     string
	margin   float64
}

func NewWorkspace(doc *document.Document, renderer *Renderer, margin float64) *Workspace {
	return &Workspace{doc: doc, renderer: renderer, margin: margin}
}

// State renders the current document into a content message.
func (w *Workspace) State() Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state()
}

func (w *Workspace) state() Message {
	html, err := w.renderer.Render([]byte(w.doc.Content))
	if err != nil {
		return Message{Type: TypeError, Error: fmt.Sprintf("render %s: %v", w.doc.Name, err)}
	}
	w.html = html

	headings := toc.Extract(w.doc.Content)
	entries := make([]TOCEntry, len(headings))
	for i, h := range headings {
		entries[i] = TOCEntry{Heading: h, Indent: toc.Indent(h.Level), Icon: toc.Icon(h.Level)}
	}
	info := w.doc.Info()

	return Message{
		Type:     TypeContent,
		Filename: w.doc.Name,
		HTML:     html,
		Content:  w.doc.Content,
		Lines:    highlight.HTMLDocument(w.doc.Content),
		TOC:      entries,
		Info:     &info,
	}
}

// Edit replaces the buffer and returns the re-rendered state.
func (w *Workspace) Edit(content string) Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.doc.SetContent(content)
	return w.state()
}

// Save writes the buffer to disk.
func (w *Workspace) Save() (Message, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.doc.Save(); err != nil {
		return Message{}, err
	}
	return w.state(), nil
}

// SaveAs writes the buffer to another markdown file and switches to it.
func (w *Workspace) SaveAs(path string) (Message, error) {
	if !document.IsMarkdown(path) {
		return Message{}, fmt.Errorf("not a markdown file: %s", path)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.doc.SaveAs(path); err != nil {
		return Message{}, err
	}
	return w.state(), nil
}

// Cursor converts a UTF-8 byte offset in the buffer to a line and column.
func (w *Workspace) Cursor(offset int) Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	line, col := document.Cursor(w.doc.Content, offset)
	return Message{Type: TypeCursor, Cursor: &Cursor{Line: line, Col: col}}
}

// ReloadIfClean re-reads the file unless the buffer has unsaved edits.
func (w *Workspace) ReloadIfClean() (Message, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.doc.Dirty() {
		return Message{}, false, nil
	}
	before := w.doc.Content
	if err := w.doc.Reload(); err != nil {
		return Message{}, false, err
	}
	if w.doc.Content == before {
		return Message{}, false, nil
	}
	return w.state(), true, nil
}

// Dirty reports whether the buffer has unsaved edits.
func (w *Workspace) Dirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doc.Dirty()
}

// Open switches to another markdown file.
func (w *Workspace) Open(path string) (Message, error) {
	if !document.IsMarkdown(path) {
		return Message{}, fmt.Errorf("not a markdown file: %s", path)
	}
	doc, err := document.Open(path)
	if err != nil {
		return Message{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.doc = doc
	return w.state(), nil
}

// Path returns the open document's path.
func (w *Workspace) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doc.Path
}

// Files lists the markdown files next to the open document.
func (w *Workspace) Files() (Message, error) {
	files, err := document.ListMarkdown(filepath.Dir(w.Path()))
	if err != nil {
		return Message{}, err
	}
	return Message{Type: TypeFiles, Files: files}, nil
}

// SetTheme swaps the code block style of the preview.
func (w *Workspace) SetTheme(theme string) Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.renderer = NewRenderer(theme)
	return w.state()
}

// Export returns the last rendered body and the document name.
func (w *Workspace) Export() (body, name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.html == "" {
		w.state()
	}
	return w.html, w.doc.Name
}

// Locate finds the preview heading for a TOC entry. tops holds the
// client-measured offsets of the preview's headings of that level,
// relative to the scroll container, and scrollTop its current offset.
func (w *Workspace) Locate(text string, level int, tops []float64, scrollTop float64) (Message, bool) {
	w.mu.Lock()
	html := w.html
	margin := w.margin
	w.mu.Unlock()

	elems, err := toc.RenderedHeadings(html)
	if err != nil {
		return Message{}, false
	}
	vp := &remoteViewport{tops: tops, scrollTop: scrollTop}
	if !toc.Locate(vp, elems, text, level, margin) {
		return Message{}, false
	}
	el, _ := toc.Match(elems, text, level)
	return Message{Type: TypeScroll, Scroll: &Scroll{
		Top:   vp.target,
		ID:    el.ID,
		Level: el.Level,
		Index: el.Index,
	}}, true
}

// remoteViewport replays a browser's preview geometry.
type remoteViewport struct {
	tops      []float64
	scrollTop float64
	target    float64
}

func (v *remoteViewport) ElementTop(el toc.Element) (float64, bool) {
	if el.Index < 0 || el.Index >= len(v.tops) {
		return 0, false
	}
	return v.tops[el.Index], true
}

func (v *remoteViewport) ScrollTop() float64 { return v.scrollTop }

func (v *remoteViewport) ScrollTo(top float64) { v.target = top }
