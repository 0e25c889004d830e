// Package render converts post text to an HTML preview.
package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
	// Posts rely on single line breaks for layout.
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// HTML renders post text as HTML. Raw HTML in the text is not passed through.
func HTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
