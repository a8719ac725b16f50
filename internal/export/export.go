// Package export wraps rendered markdown into a standalone HTML document.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	texttemplate "text/template"
	"time"
)

type colors struct {
	BgPrimary, BgSecondary     string
	TextPrimary, TextSecondary string
	Border                     string
	CodeBg, CodeText           string
	BlockquoteBg               string
	Accent                     string
	H1, H2, H3                 string
	Link, Bold                 string
}

var themes = map[string]colors{
	"dark": {
		BgPrimary: "#0a0a0a", BgSecondary: "#141414",
		TextPrimary: "#ffffff", TextSecondary: "#737373",
		Border: "#262626", CodeBg: "#141414", CodeText: "#a3a3a3",
		BlockquoteBg: "rgba(20, 20, 20, 0.8)", Accent: "#ffffff",
		H1: "#ffffff", H2: "#e5e5e5", H3: "#d4d4d4",
		Link: "#a3a3a3", Bold: "#ffffff",
	},
	"light": {
		BgPrimary: "#ffffff", BgSecondary: "#fafafa",
		TextPrimary: "#171717", TextSecondary: "#525252",
		Border: "#e5e5e5", CodeBg: "#f5f5f5", CodeText: "#dc2626",
		BlockquoteBg: "rgba(250, 250, 250, 0.8)", Accent: "#171717",
		H1: "#171717", H2: "#262626", H3: "#404040",
		Link: "#2563eb", Bold: "#171717",
	},
	"paper": {
		BgPrimary: "#f5f0e6", BgSecondary: "#ebe5d8",
		TextPrimary: "#3d3d3d", TextSecondary: "#6b6352",
		Border: "#d4cfc2", CodeBg: "#ebe5d8", CodeText: "#8b5a2b",
		BlockquoteBg: "rgba(235, 229, 216, 0.6)", Accent: "#5c4033",
		H1: "#3d3029", H2: "#5c4033", H3: "#6b5344",
		Link: "#2d5a7b", Bold: "#5c4033",
	},
}

var fonts = map[string]string{
	"inter":        "'Inter', -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif",
	"merriweather": "'Merriweather', Georgia, 'Times New Roman', serif",
	"lora":         "'Lora', Georgia, 'Times New Roman', serif",
	"source-serif": "'Source Serif 4', Georgia, 'Times New Roman', serif",
	"fira-sans":    "'Fira Sans', -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif",
}

type sizes struct {
	Base, H1, H2, H3, LineHeight string
}

var fontSizes = map[string]sizes{
	"small":  {"14px", "1.875em", "1.5em", "1.125em", "1.6"},
	"medium": {"16px", "2.25em", "1.75em", "1.25em", "1.7"},
	"large":  {"18px", "2.5em", "2em", "1.375em", "1.8"},
}

// Options controls the look of an exported document.
type Options struct {
	Theme    string
	Font     string
	FontSize string
	Footer   bool
	// Now stamps the document; zero means time.Now.
	Now time.Time
}

var cssTmpl = texttemplate.Must(texttemplate.New("css").Parse(`
body {
    font-family: {{.Font}};
    font-size: {{.Size.Base}};
    line-height: {{.Size.LineHeight}};
    background-color: {{.C.BgPrimary}};
    color: {{.C.TextPrimary}};
    padding: 3rem;
    max-width: 800px;
    margin: 0 auto;
}
@media print { body { padding: 0; background: white; color: #171717; } }
h1 { font-size: {{.Size.H1}}; font-weight: 800; padding-bottom: 0.3em; border-bottom: 1px solid {{.C.Border}}; color: {{.C.H1}}; margin: 0 0 1rem; }
h2 { font-size: {{.Size.H2}}; font-weight: 700; padding-bottom: 0.3em; border-bottom: 1px solid {{.C.Border}}; color: {{.C.H2}}; margin: 2rem 0 1rem; }
h3 { font-size: {{.Size.H3}}; font-weight: 600; color: {{.C.H3}}; margin: 1.5rem 0 0.5rem; }
h4, h5, h6 { font-weight: 600; color: {{.C.H3}}; margin: 1.25rem 0 0.5rem; }
p { margin-bottom: 1rem; }
a { color: {{.C.Link}}; text-decoration: none; }
strong { font-weight: 600; color: {{.C.Bold}}; }
code { font-family: 'JetBrains Mono', ui-monospace, Menlo, Consolas, monospace; background: {{.C.CodeBg}}; border: 1px solid {{.C.Border}}; border-radius: 0.25rem; padding: 0.1em 0.3em; font-size: 0.875em; color: {{.C.CodeText}}; }
pre { border: 1px solid {{.C.Border}}; border-radius: 0.375rem; padding: 1rem; overflow-x: auto; margin: 1rem 0; }
pre code { background: none; border: none; padding: 0; font-size: 0.9em; }
ul, ol { padding-left: 1.5rem; margin-bottom: 1rem; }
blockquote { border-left: 4px solid {{.C.Accent}}; background: {{.C.BlockquoteBg}}; padding: 0.5rem 1rem; margin: 1rem 0; font-style: italic; color: {{.C.TextSecondary}}; }
hr { border: none; border-top: 1px solid {{.C.Border}}; margin: 2rem 0; }
table { width: 100%; border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid {{.C.Border}}; padding: 0.5rem 0.75rem; text-align: left; }
th { background: {{.C.BgSecondary}}; font-weight: 600; }
img { max-width: 100%; height: auto; }
.export-footer { margin-top: 3rem; padding-top: 1rem; border-top: 1px solid {{.C.Border}}; text-align: center; font-size: 0.75rem; color: {{.C.TextSecondary}}; }
`))

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta name="generator" content="MarkLite">
    <meta name="date" content="{{.ISODate}}">
    <title>{{.Title}}</title>
    <style>{{.CSS}}</style>
</head>
<body>
    <article>
{{.Body}}
    </article>
{{- if .Footer}}
    <footer class="export-footer">Exported from MarkLite on {{.Date}}</footer>
{{- end}}
</body>
</html>
`))

// CSS returns the stylesheet for a theme, font and size. Unknown names
// fall back to dark, inter and medium.
func CSS(theme, font, size string) (string, error) {
	c, ok := themes[theme]
	if !ok {
		c = themes["dark"]
	}
	f, ok := fonts[font]
	if !ok {
		f = fonts["inter"]
	}
	s, ok := fontSizes[size]
	if !ok {
		s = fontSizes["medium"]
	}

	var buf bytes.Buffer
	err := cssTmpl.Execute(&buf, struct {
		C    colors
		Font string
		Size sizes
	}{c, f, s})
	if err != nil {
		return "", fmt.Errorf("render css: %w", err)
	}
	return buf.String(), nil
}

var extRe = regexp.MustCompile(`(?i)\.(md|markdown)$`)

// Title derives a document title from its file name.
func Title(fileName string) string {
	return extRe.ReplaceAllString(fileName, "")
}

// HTML wraps a rendered body into a complete HTML page.
func HTML(body, title string, opts Options) (string, error) {
	css, err := CSS(opts.Theme, opts.Font, opts.FontSize)
	if err != nil {
		return "", err
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	var buf bytes.Buffer
	err = pageTmpl.Execute(&buf, map[string]any{
		"Title":   title,
		"CSS":     template.CSS(css),
		"Body":    template.HTML(body),
		"Footer":  opts.Footer,
		"Date":    now.Format("January 2, 2006"),
		"ISODate": now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return buf.String(), nil
}
