package search

import (
	"strings"
	"unicode"

	"github.com/rubiojr/docsearch/pkg/content"
)

// Field weights. Each field's contribution is weight*quality with quality in
// (0.5, 1], so a title hit always outranks any combination of excerpt and body
// hits, and an excerpt hit always outranks a body hit.
const (
	TitleWeight   = 100.0
	ExcerptWeight = 10.0
	BodyWeight    = 1.0
)

// matcher is a prepared, lower-cased term.
type matcher struct {
	phrase string
	tokens []string
}

func newMatcher(term string) matcher {
	phrase := strings.ToLower(strings.TrimSpace(term))
	return matcher{phrase: phrase, tokens: Tokenize(phrase)}
}

func (m matcher) empty() bool {
	return m.phrase == ""
}

// Tokenize lower-cases s and splits it on anything that is not a letter or a
// digit. Duplicate tokens are dropped; order of first appearance is kept.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	tokens := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// field scores a single lower-cased field. It returns the quality of the hit
// (0 when nothing matched) and marks the tokens found in it.
func (m matcher) field(text string, found []bool) float64 {
	if text == "" {
		return 0
	}
	if strings.Contains(text, m.phrase) {
		for i := range found {
			found[i] = true
		}
		return 1
	}
	if len(m.tokens) == 0 {
		return 0
	}
	hits := 0
	for i, tok := range m.tokens {
		if strings.Contains(text, tok) {
			found[i] = true
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	return 0.5 + 0.4*float64(hits)/float64(len(m.tokens))
}

func (m matcher) score(doc content.Document) (float64, bool) {
	if m.empty() {
		return 0, true
	}

	found := make([]bool, len(m.tokens))
	title := m.field(strings.ToLower(doc.Title), found)
	excerpt := m.field(strings.ToLower(doc.Excerpt), found)
	body := m.field(strings.ToLower(doc.RawBody), found)

	phraseHit := title == 1 || excerpt == 1 || body == 1
	if !phraseHit {
		if len(found) == 0 {
			return 0, false
		}
		for _, ok := range found {
			if !ok {
				return 0, false
			}
		}
	}

	return TitleWeight*title + ExcerptWeight*excerpt + BodyWeight*body, true
}

// Score reports whether doc matches term and how relevant it is. Matching is
// case-insensitive: a document matches when the whole term occurs in its
// title, excerpt or body, or when every keyword of the term occurs in at least
// one of them. An empty term matches everything with a neutral score of 0.
// Matches always score above 0.
func Score(doc content.Document, term string) (float64, bool) {
	return newMatcher(term).score(doc)
}
