package search

import (
	"slices"
	"strings"
)

// SortKey names the field results are ordered by.
type SortKey string

const (
	SortDate  SortKey = "date"
	SortTitle SortKey = "title"
)

// Direction is the sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Query is an immutable search description. Every configuration method
// returns a modified copy, so a base query can be shared and refined:
//
//	base := search.NewQuery().Published().OrderBy(search.SortDate, search.Desc)
//	page2 := base.PerPage(10).Page(2).Search("install")
type Query struct {
	publishedOnly bool
	types         []string
	term          string
	sortKey       SortKey
	direction     Direction
	perPage       int
	page          int
}

// NewQuery returns a query over every document, newest first, 10 per page.
func NewQuery() Query {
	return Query{
		sortKey:   SortDate,
		direction: Desc,
		perPage:   10,
		page:      1,
	}
}

// Published restricts the query to published documents.
func (q Query) Published() Query {
	q.publishedOnly = true
	return q
}

// OfType restricts the query to the given document types. Calling it with no
// types removes the restriction.
func (q Query) OfType(types ...string) Query {
	q.types = nil
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && !slices.Contains(q.types, t) {
			q.types = append(q.types, t)
		}
	}
	return q
}

// Search sets the term documents must match. An empty term disables
// relevance filtering.
func (q Query) Search(term string) Query {
	q.term = strings.TrimSpace(term)
	return q
}

// OrderBy sets the ordering used when not searching and as the tiebreak
// after relevance when searching. Unknown keys fall back to date and unknown
// directions to descending.
func (q Query) OrderBy(key SortKey, dir Direction) Query {
	switch key {
	case SortDate, SortTitle:
		q.sortKey = key
	default:
		q.sortKey = SortDate
	}
	switch dir {
	case Asc, Desc:
		q.direction = dir
	default:
		q.direction = Desc
	}
	return q
}

// PerPage sets the page size. Values below 1 are treated as 1.
func (q Query) PerPage(n int) Query {
	q.perPage = max(n, 1)
	return q
}

// Page sets the 1-based page number. Values below 1 are treated as 1.
func (q Query) Page(n int) Query {
	q.page = max(n, 1)
	return q
}

func (q Query) Term() string             { return q.term }
func (q Query) IsSearch() bool           { return q.term != "" }
func (q Query) PublishedOnly() bool      { return q.publishedOnly }
func (q Query) Types() []string          { return slices.Clone(q.types) }
func (q Query) SortKey() SortKey         { return q.sortKey }
func (q Query) SortDirection() Direction { return q.direction }

// PageSize returns the effective page size (at least 1, also for the zero Query).
func (q Query) PageSize() int { return max(q.perPage, 1) }

// PageNumber returns the effective page number (at least 1).
func (q Query) PageNumber() int { return max(q.page, 1) }

// ParseSortKey parses a user supplied sort key; ok is false for unknown keys.
func ParseSortKey(s string) (SortKey, bool) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortDate:
		return SortDate, true
	case SortTitle:
		return SortTitle, true
	}
	return "", false
}

// ParseDirection parses "asc" or "desc"; ok is false otherwise.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc, true
	case Desc:
		return Desc, true
	}
	return "", false
}
