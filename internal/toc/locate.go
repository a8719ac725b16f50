package toc

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// DefaultMargin is the gap kept above a heading after scrolling to it.
const DefaultMargin = 20

// Element is a heading as it appears in a rendered view.
type Element struct {
	// Index counts elements of the same level, starting at 0.
	Index int
	Level int
	Text  string
	ID    string
	// Line is the 0-based source line, or -1 when unknown.
	Line int
}

// Viewport is a scrollable container showing rendered headings.
type Viewport interface {
	// ElementTop reports the element's top relative to the visible area.
	ElementTop(el Element) (float64, bool)
	ScrollTop() float64
	// ScrollTo starts scrolling towards top and returns immediately.
	ScrollTo(top float64)
}

var inlineMarkup = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\*\*(.+?)\*\*`), "$1"},
	{regexp.MustCompile(`\*(.+?)\*`), "$1"},
	{regexp.MustCompile(`_(.+?)_`), "$1"},
	{regexp.MustCompile("`(.+?)`"), "$1"},
	{regexp.MustCompile(`\[(.+?)\]\(.+?\)`), "$1"},
}

// CleanText strips bold, italic, inline code and link markup from heading
// text so it can be compared with rendered text.
func CleanText(s string) string {
	for _, m := range inlineMarkup {
		s = m.re.ReplaceAllString(s, m.repl)
	}
	return strings.TrimSpace(s)
}

// Match returns the first element of the given level whose text equals
// heading, equals its cleaned form, or contains the cleaned form.
func Match(elems []Element, heading string, level int) (Element, bool) {
	clean := CleanText(heading)
	for _, el := range elems {
		if el.Level != level {
			continue
		}
		t := strings.TrimSpace(el.Text)
		if t == heading || t == clean || (clean != "" && strings.Contains(t, clean)) {
			return el, true
		}
	}
	return Element{}, false
}

// Locate scrolls vp so the heading matching the given text and level sits margin
// units below the top of the container. It reports whether a scroll was
// requested; no match is not an error.
func Locate(vp Viewport, elems []Element, heading string, level int, margin float64) bool {
	el, ok := Match(elems, heading, level)
	if !ok {
		return false
	}
	return scrollTo(vp, el, margin)
}

// LocateLine scrolls vp to the element parsed from the given 0-based
// source line. Elements with an unknown line never match.
func LocateLine(vp Viewport, elems []Element, line int, margin float64) bool {
	if line < 0 {
		return false
	}
	for _, el := range elems {
		if el.Line == line {
			return scrollTo(vp, el, margin)
		}
	}
	return false
}

func scrollTo(vp Viewport, el Element, margin float64) bool {
	top, ok := vp.ElementTop(el)
	if !ok {
		return false
	}
	vp.ScrollTo(top + vp.ScrollTop() - margin)
	return true
}

// RenderedHeadings lists the h1-h6 elements of an HTML fragment in
// document order.
func RenderedHeadings(fragment string) ([]Element, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parse rendered html: %w", err)
	}

	var elems []Element
	counts := make(map[int]int)
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		level := int(name[1] - '0')
		id, _ := s.Attr("id")
		elems = append(elems, Element{
			Index: counts[level],
			Level: level,
			Text:  strings.TrimSpace(s.Text()),
			ID:    id,
			Line:  -1,
		})
		counts[level]++
	})
	return elems, nil
}

// SourceHeadings parses source and returns its headings with their
// rendered text and source line.
func SourceHeadings(source []byte) []Element {
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var elems []Element
	counts := make(map[int]int)
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		line := -1
		if h.Lines().Len() > 0 {
			line = bytes.Count(source[:h.Lines().At(0).Start], []byte("\n"))
		}
		var buf bytes.Buffer
		plainText(&buf, h, source)
		elems = append(elems, Element{
			Index: counts[h.Level],
			Level: h.Level,
			Text:  strings.TrimSpace(buf.String()),
			Line:  line,
		})
		counts[h.Level]++
		return ast.WalkSkipChildren, nil
	})
	return elems
}

func plainText(buf *bytes.Buffer, n ast.Node, source []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
		case *ast.String:
			buf.Write(t.Value)
		default:
			plainText(buf, c, source)
		}
	}
}
