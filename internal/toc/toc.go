// Package toc builds the table of contents of a markdown document and
// locates its headings in a rendered view.
package toc

import (
	"regexp"
	"strconv"
	"strings"
)

// Heading is one table-of-contents entry. Line is the 0-based source line.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
	Line  int    `json:"line"`
}

// space matches the Unicode whitespace that editors accept after a
// heading marker, such as NBSP and the ideographic space. Go's \s is
// ASCII only.
const space = `[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]`

var (
	headingRe = regexp.MustCompile(`^(#{1,6})` + space + `+(.+)$`)
	nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// Extract returns the ATX headings of document in order. Every line is
// tested on its own: fenced code is not skipped and duplicates are kept.
func Extract(document string) []Heading {
	if document == "" {
		return nil
	}
	document = strings.ReplaceAll(document, "\r\n", "\n")
	document = strings.ReplaceAll(document, "\r", "\n")

	var headings []Heading
	for i, line := range strings.Split(document, "\n") {
		m := headingRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[2])
		headings = append(headings, Heading{
			Level: len(m[1]),
			Text:  text,
			ID:    "heading-" + strconv.Itoa(i) + "-" + Slugify(text),
			Line:  i,
		})
	}
	return headings
}

// Slugify lowercases s, collapses every run outside [a-z0-9] to a single
// "-" and trims leading and trailing dashes.
func Slugify(s string) string {
	s = nonSlugRe.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// Indent is the sidebar indentation, in units, for a heading level.
func Indent(level int) int {
	if level < 1 || level > 6 {
		return 0
	}
	return level - 1
}

// Icon is the sidebar icon name for a heading level.
func Icon(level int) string {
	switch level {
	case 1:
		return "title"
	case 2:
		return "format_h2"
	default:
		return "format_h3"
	}
}
