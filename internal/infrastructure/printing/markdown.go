package printing

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// markdownParser renders CommonMark with tables, strikethrough and autolinks.
// Raw HTML in the source is dropped.
var markdownParser = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// RenderMarkdown converts markdown to HTML
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdownParser.Convert([]byte(src), &buf); err != nil {
		return "", NewRenderError(CodeFailed, "failed to render markdown", err)
	}
	return buf.String(), nil
}

// markdown is the template form of RenderMarkdown. Broken input renders as escaped text.
func markdown(src string) template.HTML {
	out, err := RenderMarkdown(src)
	if err != nil {
		return nl2br(src)
	}
	return template.HTML(out)
}
