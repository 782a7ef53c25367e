package content

import (
	"net/url"
	"strings"
)

// URLResolver maps a document's type and slug to its public URL. ok is false
// for documents that have no route.
type URLResolver interface {
	URLFor(docType, slug string) (u string, ok bool)
}

// PatternResolver resolves URLs from per-type patterns such as
// "/docs/{slug}". Types without a pattern are unroutable.
type PatternResolver struct {
	patterns map[string]string
}

func NewPatternResolver(patterns map[string]string) *PatternResolver {
	p := make(map[string]string, len(patterns))
	for k, v := range patterns {
		p[strings.ToLower(k)] = v
	}
	return &PatternResolver{patterns: p}
}

func (r *PatternResolver) URLFor(docType, slug string) (string, bool) {
	if slug == "" {
		return "", false
	}
	pattern, ok := r.patterns[strings.ToLower(docType)]
	if !ok || pattern == "" {
		return "", false
	}

	segments := strings.Split(slug, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	u := strings.ReplaceAll(pattern, "{slug}", strings.Join(segments, "/"))
	return u, true
}
