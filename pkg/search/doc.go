// Package search ranks documents against free-text queries.
//
// # Overview
//
// A Query is an immutable description of what to fetch: an optional
// published-only filter, an optional type filter, a search term, an ordering
// and a page. The Engine reads a snapshot of documents from a Repository,
// applies the query and returns one page of results as a ResultSet.
//
// # Ranking
//
// The matcher is case-insensitive. A document matches a term when the whole
// term appears in one of its fields, or when every keyword of the term
// appears somewhere in the document. Fields are weighted title, then
// excerpt, then body, so a title hit always outranks a hit that is only in
// the excerpt or the body. Equal scores fall back to the query's ordering and
// then to the newest publication date.
//
// Without a term every document that passes the filters is returned, ordered
// by the query's ordering alone.
//
// # Usage
//
//	engine := search.NewEngine(store)
//	q := search.NewQuery().
//		Published().
//		OrderBy(search.SortDate, search.Desc).
//		PerPage(10).
//		Page(2).
//		Search("install")
//	rs, err := engine.Get(ctx, q)
//	if err != nil {
//		return err
//	}
//	items := search.NewProjector(resolver, 150).Items(rs)
//
// # Parameters
//
// ParseParams converts the q and page query parameters of an HTTP request.
// Bad input never fails: a missing q is an empty search and a bad page is
// page 1.
package search
