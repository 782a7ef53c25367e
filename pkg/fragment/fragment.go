// Package fragment builds and reads text-fragment directives, the
// "#:~:text=" URL suffix that asks a browser to scroll to and highlight a
// phrase on the target page.
package fragment

import (
	"net/url"
	"strings"
)

// Directive is the marker that introduces a text directive in a fragment.
const Directive = ":~:text="

// WithText returns u with a text directive for term appended. The url is
// returned unchanged when either argument is empty after trimming the term,
// or when u already carries a text directive.
//
//	WithText("/docs/page", "hello world")  // "/docs/page#:~:text=hello%20world"
//	WithText("/docs/page#section", "x")    // "/docs/page#section:~:text=x"
func WithText(u, term string) string {
	term = strings.TrimSpace(term)
	if u == "" || term == "" || strings.Contains(u, Directive) {
		return u
	}

	encoded := EncodeComponent(term)
	if strings.Contains(u, "#") {
		return u + Directive + encoded
	}
	return u + "#" + Directive + encoded
}

// TextDirective extracts the phrase of the first text directive in a URL
// fragment (or a full URL). Only the text up to the next '&' is used. ok is
// false when there is no directive, it is empty, or it is not valid
// percent-encoding.
func TextDirective(fragment string) (string, bool) {
	_, rest, found := strings.Cut(fragment, Directive)
	if !found {
		return "", false
	}
	encoded, _, _ := strings.Cut(rest, "&")
	text, err := url.PathUnescape(encoded)
	if err != nil {
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

const upperhex = "0123456789ABCDEF"

// EncodeComponent percent-encodes s the way browsers' encodeURIComponent
// does: ASCII letters, digits and -_.!~*'() are kept, every other byte of
// the UTF-8 encoding is escaped.
func EncodeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
