package highlight

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want Line
	}{
		{"", Line{{Plain, ""}}},
		{"# Title", Line{{Heading1, "# Title"}}},
		{"## Title", Line{{Heading2, "## Title"}}},
		{"### Title", Line{{Heading3, "### Title"}}},
		{"#### Title", Line{{Heading3, "#### Title"}}},
		{"##### Title", Line{{Plain, "##### Title"}}},
		{"#Title", Line{{Plain, "#Title"}}},
		{"```go", Line{{CodeFence, "```go"}}},
		{"- item", Line{{ListMarker, "- "}, {Plain, "item"}}},
		{"  * nested", Line{{ListMarker, "  * "}, {Plain, "nested"}}},
		{"+ plus", Line{{ListMarker, "+ "}, {Plain, "plus"}}},
		{"- ", Line{{ListMarker, "- "}}},
		{"- **bold** item", Line{{ListMarker, "- "}, {Plain, "**bold** item"}}},
		{"1. item", Line{{OrderedListMarker, "1."}, {Plain, " item"}}},
		{"  12. twelve", Line{{OrderedListMarker, "  12."}, {Plain, " twelve"}}},
		{"1.5 is a number", Line{{Plain, "1.5 is a number"}}},
		{"> quoted", Line{{Blockquote, "> quoted"}}},
		{">no space", Line{{Blockquote, ">no space"}}},
		{"Hello **world**", Line{{Plain, "Hello "}, {Bold, "**world**"}}},
		{"**a** and **b**!", Line{{Bold, "**a**"}, {Plain, " and "}, {Bold, "**b**"}, {Plain, "!"}}},
		{"see [docs](https://x.io) now", Line{
			{Plain, "see "}, {Link, "[docs]"}, {LinkURL, "(https://x.io)"}, {Plain, " now"},
		}},
		{"[a](b)**c**", Line{{Link, "[a]"}, {LinkURL, "(b)"}, {Bold, "**c**"}}},
		{"**c** then [a](b)", Line{{Bold, "**c**"}, {Plain, " then "}, {Link, "[a]"}, {LinkURL, "(b)"}}},
		{"[**x**](y)", Line{{Link, "[**x**]"}, {LinkURL, "(y)"}}},
		{"**[x](y)**", Line{{Bold, "**[x](y)**"}}},
		{"unclosed **bold", Line{{Plain, "unclosed **bold"}}},
		{"[text](", Line{{Plain, "[text]("}}},
		{"plain text", Line{{Plain, "plain text"}}},
		{"-\u00a0item", Line{{ListMarker, "-\u00a0"}, {Plain, "item"}}},
		{"\u3000*\u3000項目", Line{{ListMarker, "\u3000*\u3000"}, {Plain, "項目"}}},
		{"1.\u00a0x", Line{{OrderedListMarker, "1."}, {Plain, "\u00a0x"}}},
		{"\u00a02.\u3000y", Line{{OrderedListMarker, "\u00a02."}, {Plain, "\u3000y"}}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := Classify(tt.line)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Classify(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestClassifyLossless(t *testing.T) {
	lines := []string{
		"",
		"# h",
		"    - deep list",
		"3. third",
		"a [b](c) **d** [e](f) g",
		"**unterminated [link](",
		"日本語 **太字** [リンク](https://例え.jp)",
		"\ttab > not a quote",
		"```",
		"* * *",
	}
	for _, l := range lines {
		if got := Classify(l).String(); got != l {
			t.Errorf("Classify(%q) reconstructs %q", l, got)
		}
	}
}

func TestClassifyDocument(t *testing.T) {
	lf := ClassifyDocument("# A\n- b\n")
	crlf := ClassifyDocument("# A\r\n- b\r\n")
	if diff := cmp.Diff(lf, crlf); diff != "" {
		t.Errorf("CRLF and LF differ (-lf +crlf):\n%s", diff)
	}
	if len(lf) != 3 {
		t.Fatalf("got %d lines, want 3", len(lf))
	}
	if lf[0][0].Role != Heading1 {
		t.Errorf("line 0 role = %v, want heading1", lf[0][0].Role)
	}
}

func TestRoleString(t *testing.T) {
	if got := LinkURL.String(); got != "linkUrl" {
		t.Errorf("LinkURL.String() = %q", got)
	}
	if got := Role(99).String(); got != "plain" {
		t.Errorf("Role(99).String() = %q", got)
	}
}

func TestHTML(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"", "&nbsp;"},
		{"# <T>", `<span class="md-heading1"># &lt;T&gt;</span>`},
		{"- a", `<span class="md-listMarker">- </span>a`},
		{"x [a](b)", `x <span class="md-link">[a]</span><span class="md-linkUrl">(b)</span>`},
	}
	for _, tt := range tests {
		if got := HTML(Classify(tt.line)); got != tt.want {
			t.Errorf("HTML(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestHTMLDocument(t *testing.T) {
	got := HTMLDocument("a\n\nb")
	want := []string{"a", "&nbsp;", "b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HTMLDocument mismatch (-want +got):\n%s", diff)
	}
}

func TestStylesRender(t *testing.T) {
	s := NewStyles("unknown-theme")
	out := s.Render(Classify("Hello **world**"))
	if !strings.Contains(out, "Hello") || !strings.Contains(out, "**world**") {
		t.Errorf("Render dropped text: %q", out)
	}
	if s.Render(Classify("")) != "" {
		t.Error("empty line should render empty")
	}
}
