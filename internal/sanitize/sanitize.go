// Package sanitize turns model-written text into plain text before it is
// stored or sent to chats.
package sanitize

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	strict   = bluemonday.StrictPolicy()
	markdown = goldmark.New()

	blockBreaks = regexp.MustCompile(`<br\s*/?>|</?p>|</?div>|</?pre>|</?h[1-6]>|</?li>`)
	blankLines  = regexp.MustCompile(`\n\s*\n+`)
)

// StripHTML removes every HTML tag and decodes entities. Markdown is left
// alone, so it is safe for short fields such as titles where "1. Intro" or
// "*NSYNC" must survive.
func StripHTML(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(text)))
}

// PlainText renders markdown, strips the resulting HTML and collapses runs
// of blank lines. Used for descriptions.
func PlainText(text string) string {
	if text == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return StripHTML(text)
	}

	htmlText := blockBreaks.ReplaceAllString(buf.String(), "\n")
	sanitized := strict.Sanitize(htmlText)
	sanitized = blankLines.ReplaceAllString(sanitized, "\n\n")
	return strings.TrimSpace(html.UnescapeString(sanitized))
}
