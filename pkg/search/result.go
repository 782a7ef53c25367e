package search

import (
	"unicode/utf8"

	"github.com/rubiojr/docsearch/pkg/content"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ResultItem is the transport projection of a matched document.
type ResultItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Type    string `json:"type"`
	Excerpt string `json:"excerpt"`
}

// Projector turns documents into ResultItems, resolving their public URL and
// filling in an excerpt when the document has none.
type Projector struct {
	resolver   content.URLResolver
	excerptLen int
}

// NewProjector creates a projector. excerptLen is the number of characters of
// plain body text used when a document carries no excerpt of its own.
func NewProjector(resolver content.URLResolver, excerptLen int) *Projector {
	return &Projector{resolver: resolver, excerptLen: excerptLen}
}

// Item projects a single document. ok is false when the document has no
// public URL.
func (p *Projector) Item(doc content.Document) (ResultItem, bool) {
	u, ok := p.resolver.URLFor(doc.Type, doc.Slug)
	if !ok {
		return ResultItem{}, false
	}
	return ResultItem{
		Title:   doc.Title,
		URL:     u,
		Type:    TypeLabel(doc.Type),
		Excerpt: content.ExcerptOf(doc, p.excerptLen),
	}, true
}

// Items projects every routable document of rs, keeping rank order.
// Unroutable documents are dropped. The returned slice is never nil.
func (p *Projector) Items(rs *ResultSet) []ResultItem {
	items := make([]ResultItem, 0, rs.Len())
	for _, h := range rs.Hits {
		if item, ok := p.Item(h.Document); ok {
			items = append(items, item)
		}
	}
	return items
}

// TypeLabel capitalises the first letter of a document type: "post" becomes
// "Post". The rest of the type is left alone.
func TypeLabel(docType string) string {
	_, size := utf8.DecodeRuneInString(docType)
	if size == 0 {
		return ""
	}
	// Casers are stateful, so one per call.
	return cases.Upper(language.English).String(docType[:size]) + docType[size:]
}
