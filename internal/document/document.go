// Package document holds the in-memory markdown buffer and its file.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// ErrNotFound is returned when the document path does not exist.
var ErrNotFound = errors.New("file not found")

// Document is an open markdown file and its edit buffer.
type Document struct {
	Path    string
	Name    string
	Content string
	// Original is the content as last read or saved.
	Original string
	Size     int64
}

// Info is the file summary shown in the preview header.
type Info struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Size      string `json:"size"`
	LineCount int    `json:"lineCount"`
	Dirty     bool   `json:"dirty"`
}

// Entry is a markdown file next to the open document.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Open reads the file at path.
func Open(path string) (*Document, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return &Document{
		Path:     path,
		Name:     nameOf(path),
		Content:  string(data),
		Original: string(data),
		Size:     fi.Size(),
	}, nil
}

func nameOf(path string) string {
	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) {
		return "Untitled"
	}
	return name
}

// SetContent replaces the edit buffer.
func (d *Document) SetContent(content string) {
	d.Content = content
}

// Dirty reports whether the buffer differs from the file.
func (d *Document) Dirty() bool {
	return d.Content != d.Original
}

// Save writes the buffer back to its file.
func (d *Document) Save() error {
	return d.SaveAs(d.Path)
}

// SaveAs writes the buffer to path and makes it the document's file.
func (d *Document) SaveAs(path string) error {
	if err := os.WriteFile(path, []byte(d.Content), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	d.Path = path
	d.Name = nameOf(path)
	d.Original = d.Content
	d.Size = int64(len(d.Content))
	return nil
}

// Reload replaces both buffer and baseline with the file's content.
func (d *Document) Reload() error {
	fresh, err := Open(d.Path)
	if err != nil {
		return err
	}
	*d = *fresh
	return nil
}

// LineCount counts lines the way the editor gutter does.
func (d *Document) LineCount() int {
	return strings.Count(d.Content, "\n") + 1
}

// Info summarizes the document.
func (d *Document) Info() Info {
	return Info{
		Name:      d.Name,
		Path:      d.Path,
		Size:      humanize.IBytes(uint64(d.Size)),
		LineCount: d.LineCount(),
		Dirty:     d.Dirty(),
	}
}

// IsMarkdown reports whether path has a markdown extension.
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// ListMarkdown returns the markdown files in dir sorted by name.
func ListMarkdown(dir string) ([]Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var files []Entry
	for _, e := range entries {
		if e.IsDir() || !IsMarkdown(e.Name()) {
			continue
		}
		files = append(files, Entry{Name: e.Name(), Path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i].Name) < strings.ToLower(files[j].Name)
	})
	return files, nil
}

// Cursor converts a byte offset in content to a 1-based line and column.
func Cursor(content string, offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(content) {
		offset = len(content)
	}
	before := content[:offset]
	line = strings.Count(before, "\n") + 1
	col = len([]rune(before[strings.LastIndex(before, "\n")+1:])) + 1
	return line, col
}
