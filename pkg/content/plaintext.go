package content

import (
	"bytes"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	// Raw HTML passes through goldmark so bluemonday strips the tags but keeps
	// their text.
	markdown = goldmark.New(goldmark.WithRendererOptions(gmhtml.WithUnsafe()))
	stripper = bluemonday.StrictPolicy()
)

// PlainText renders a markdown body and strips every tag, leaving readable
// text with whitespace collapsed.
func PlainText(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	var buf bytes.Buffer
	source := raw
	if err := markdown.Convert([]byte(raw), &buf); err == nil {
		source = buf.String()
	}

	text := html.UnescapeString(stripper.Sanitize(source))
	return strings.Join(strings.Fields(text), " ")
}

// Truncate cuts s to at most n characters without splitting a rune.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// ExcerptOf returns the document's own excerpt, or the first n characters of
// its markup-free body.
func ExcerptOf(d Document, n int) string {
	if e := strings.TrimSpace(d.Excerpt); e != "" {
		return e
	}
	return Truncate(PlainText(d.RawBody), n)
}
