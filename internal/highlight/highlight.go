// Package highlight classifies markdown source lines into styled spans for
// the code-editing view.
package highlight

import (
	"regexp"
	"sort"
	"strings"
)

// Role is the display role of a span.
type Role int

const (
	Plain Role = iota
	Heading1
	Heading2
	Heading3
	CodeFence
	ListMarker
	OrderedListMarker
	Blockquote
	Link
	LinkURL
	Bold
)

var roleNames = [...]string{
	Plain:             "plain",
	Heading1:          "heading1",
	Heading2:          "heading2",
	Heading3:          "heading3",
	CodeFence:         "codeFence",
	ListMarker:        "listMarker",
	OrderedListMarker: "orderedListMarker",
	Blockquote:        "blockquote",
	Link:              "link",
	LinkURL:           "linkUrl",
	Bold:              "bold",
}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return "plain"
	}
	return roleNames[r]
}

// Span is a run of characters within one line tagged with a role.
type Span struct {
	Role Role
	Text string
}

// Line is the ordered span list of one source line.
type Line []Span

// String reconstructs the source line.
func (l Line) String() string {
	var b strings.Builder
	for _, s := range l {
		b.WriteString(s.Text)
	}
	return b.String()
}

// space is Unicode whitespace (NBSP, ideographic space and the like); Go's
// \s alone is ASCII only.
const space = `[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]`

var (
	listRe        = regexp.MustCompile(`^` + space + `*[-*+]` + space)
	orderedRe     = regexp.MustCompile(`^` + space + `*\d+\.` + space)
	orderedMarkRe = regexp.MustCompile(`^` + space + `*\d+\.`)
	linkRe        = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	boldRe        = regexp.MustCompile(`\*\*([^*]+)\*\*`)
)

// Classify splits one line of markdown into spans. The concatenated span
// text always equals line. An empty line yields a single empty Plain span.
func Classify(line string) Line {
	switch {
	case strings.HasPrefix(line, "# "):
		return Line{{Heading1, line}}
	case strings.HasPrefix(line, "## "):
		return Line{{Heading2, line}}
	case strings.HasPrefix(line, "### "), strings.HasPrefix(line, "#### "):
		return Line{{Heading3, line}}
	case strings.HasPrefix(line, "```"):
		return Line{{CodeFence, line}}
	}

	if loc := listRe.FindStringIndex(line); loc != nil {
		return split(line, loc[1], ListMarker)
	}
	if orderedRe.MatchString(line) {
		loc := orderedMarkRe.FindStringIndex(line)
		return split(line, loc[1], OrderedListMarker)
	}
	if strings.HasPrefix(line, ">") {
		return Line{{Blockquote, line}}
	}
	return inline(line)
}

// ClassifyDocument classifies every line of doc. Line endings are
// normalized first, so CRLF and LF input produce the same result.
func ClassifyDocument(doc string) []Line {
	lines := SplitLines(doc)
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Classify(l)
	}
	return out
}

// SplitLines normalizes \r\n and bare \r to \n and splits on \n.
func SplitLines(doc string) []string {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	doc = strings.ReplaceAll(doc, "\r", "\n")
	return strings.Split(doc, "\n")
}

func split(line string, at int, marker Role) Line {
	out := Line{{marker, line[:at]}}
	if at < len(line) {
		out = append(out, Span{Plain, line[at:]})
	}
	return out
}

type match struct {
	start, end int
	// link only: end of the "[text]" part
	mid  int
	role Role
}

func inline(line string) Line {
	var matches []match
	for _, m := range linkRe.FindAllStringSubmatchIndex(line, -1) {
		// m[5] is the end of the text group; the closing bracket follows.
		matches = append(matches, match{start: m[0], end: m[1], mid: m[5] + 1, role: Link})
	}
	for _, m := range boldRe.FindAllStringIndex(line, -1) {
		matches = append(matches, match{start: m[0], end: m[1], role: Bold})
	}
	if len(matches) == 0 {
		return Line{{Plain, line}}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].start < matches[j].start
	})

	var out Line
	last := 0
	for _, m := range matches {
		if m.start < last {
			continue
		}
		if m.start > last {
			out = append(out, Span{Plain, line[last:m.start]})
		}
		if m.role == Link {
			out = append(out, Span{Link, line[m.start:m.mid]}, Span{LinkURL, line[m.mid:m.end]})
		} else {
			out = append(out, Span{Bold, line[m.start:m.end]})
		}
		last = m.end
	}
	if last < len(line) {
		out = append(out, Span{Plain, line[last:]})
	}
	return out
}
