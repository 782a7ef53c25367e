package search

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rubiojr/docsearch/pkg/content"
	"github.com/rubiojr/docsearch/pkg/log"
)

// Repository supplies the documents a query runs over. Implementations must
// return a snapshot the engine may read without further synchronisation.
type Repository interface {
	Documents(ctx context.Context) ([]content.Document, error)
}

// RepositoryFunc adapts a function to the Repository interface.
type RepositoryFunc func(ctx context.Context) ([]content.Document, error)

func (f RepositoryFunc) Documents(ctx context.Context) ([]content.Document, error) {
	return f(ctx)
}

// StaticRepository serves a fixed set of documents.
type StaticRepository []content.Document

func (r StaticRepository) Documents(context.Context) ([]content.Document, error) {
	return r, nil
}

// Hit is a matched document with its relevance score.
type Hit struct {
	Document content.Document
	Score    float64
}

// ResultSet is one page of a ranked query.
type ResultSet struct {
	// Hits holds the documents of the requested page, best first.
	Hits []Hit

	// Total is the number of documents that passed the filters and the
	// matcher, across all pages.
	Total int

	Page       int
	PerPage    int
	TotalPages int
	HasMore    bool

	// Term is the search term the set was produced for, empty when browsing.
	Term string
}

// Documents returns the page's documents in rank order.
func (rs *ResultSet) Documents() []content.Document {
	docs := make([]content.Document, len(rs.Hits))
	for i, h := range rs.Hits {
		docs[i] = h.Document
	}
	return docs
}

// Len returns the number of documents on the page.
func (rs *ResultSet) Len() int {
	return len(rs.Hits)
}

// Engine executes queries against a repository. It keeps no state between
// calls and is safe for concurrent use.
type Engine struct {
	repo   Repository
	logger *log.Logger
}

// NewEngine creates an engine reading from repo.
func NewEngine(repo Repository) *Engine {
	return &Engine{
		repo:   repo,
		logger: log.ForService("search"),
	}
}

// Get runs q: it applies the filters, scores every candidate when a term is
// set and drops non-matches, sorts, and slices out the requested page.
//
// Searching sorts by score, then by the query's ordering, then newest first.
// Browsing sorts by the query's ordering only. Document IDs break any
// remaining tie, so identical inputs always give identical output.
//
// An empty repository or a page past the end yields an empty ResultSet.
func (e *Engine) Get(ctx context.Context, q Query) (*ResultSet, error) {
	docs, err := e.repo.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}

	hits := Rank(docs, q)
	perPage := q.PageSize()
	page := q.PageNumber()

	rs := &ResultSet{
		Hits:       []Hit{},
		Total:      len(hits),
		Page:       page,
		PerPage:    perPage,
		TotalPages: pageCount(len(hits), perPage),
		Term:       q.Term(),
	}

	// Range check before multiplying so huge page numbers cannot overflow
	// into a valid offset.
	if page-1 >= rs.TotalPages {
		e.logger.Debugf("query %q page %d: %d matches, page out of range", q.Term(), page, len(hits))
		return rs, nil
	}
	start := (page - 1) * perPage
	end := start + min(perPage, len(hits)-start)
	rs.Hits = hits[start:end]
	rs.HasMore = end < len(hits)

	e.logger.Debugf("query %q page %d: %d matches, returning %d", q.Term(), page, len(hits), len(rs.Hits))
	return rs, nil
}

// pageCount is ceil(n/perPage) without the overflow of n+perPage-1.
func pageCount(n, perPage int) int {
	if n == 0 {
		return 0
	}
	return (n-1)/perPage + 1
}

// Rank filters, scores and sorts docs for q without paginating.
func Rank(docs []content.Document, q Query) []Hit {
	m := newMatcher(q.Term())
	types := q.Types()

	hits := make([]Hit, 0, len(docs))
	for _, d := range docs {
		if q.PublishedOnly() && !d.IsPublished() {
			continue
		}
		if len(types) > 0 && !slices.Contains(types, strings.ToLower(d.Type)) {
			continue
		}
		score, ok := m.score(d)
		if !ok {
			continue
		}
		hits = append(hits, Hit{Document: d, Score: score})
	}

	searching := !m.empty()
	slices.SortStableFunc(hits, func(a, b Hit) int {
		if searching {
			if c := cmp.Compare(b.Score, a.Score); c != 0 {
				return c
			}
		}
		if c := compareOrder(a.Document, b.Document, q.SortKey(), q.SortDirection()); c != 0 {
			return c
		}
		if searching {
			if c := b.Document.PublishedTime().Compare(a.Document.PublishedTime()); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.Document.ID, b.Document.ID)
	})
	return hits
}

func compareOrder(a, b content.Document, key SortKey, dir Direction) int {
	var c int
	switch key {
	case SortTitle:
		c = cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	default:
		c = a.PublishedTime().Compare(b.PublishedTime())
	}
	if dir == Desc {
		return -c
	}
	return c
}
