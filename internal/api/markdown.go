package api

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	gmext "github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// answerMarkdown renders model replies. Raw HTML in the source is omitted
// (goldmark's default without html.WithUnsafe).
var answerMarkdown = goldmark.New(
	goldmark.WithExtensions(gmext.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// renderAnswer converts a Markdown answer to HTML for the page.
func renderAnswer(answer string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := answerMarkdown.Convert([]byte(answer), &buf); err != nil {
		return "", fmt.Errorf("render answer markdown: %w", err)
	}
	//nolint:gosec // goldmark drops raw HTML unless WithUnsafe is set.
	return template.HTML(buf.String()), nil
}
