package search

import (
	"reflect"
	"testing"
)

func TestQueryIsImmutable(t *testing.T) {
	base := NewQuery()
	refined := base.Published().OfType("post").Search(" go ").OrderBy(SortTitle, Asc).PerPage(5).Page(3)

	if base.PublishedOnly() || base.IsSearch() || len(base.Types()) != 0 {
		t.Errorf("base query was modified: %+v", base)
	}
	if base.SortKey() != SortDate || base.SortDirection() != Desc || base.PageSize() != 10 || base.PageNumber() != 1 {
		t.Errorf("unexpected base defaults: %+v", base)
	}

	if !refined.PublishedOnly() || refined.Term() != "go" || refined.SortKey() != SortTitle ||
		refined.SortDirection() != Asc || refined.PageSize() != 5 || refined.PageNumber() != 3 {
		t.Errorf("unexpected refined query: %+v", refined)
	}
	if !reflect.DeepEqual(refined.Types(), []string{"post"}) {
		t.Errorf("expected types [post], got %v", refined.Types())
	}
}

func TestQueryTypesNotShared(t *testing.T) {
	q := NewQuery().OfType("post", "Post", " page ")
	if got, want := q.Types(), []string{"post", "page"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	types := q.Types()
	types[0] = "mutated"
	if q.Types()[0] != "post" {
		t.Error("Types leaked internal slice")
	}

	if len(q.OfType().Types()) != 0 {
		t.Error("OfType() should clear the filter")
	}
}

func TestQueryOrderByFallbacks(t *testing.T) {
	q := NewQuery().OrderBy("bogus", "sideways")
	if q.SortKey() != SortDate || q.SortDirection() != Desc {
		t.Errorf("expected date desc fallback, got %s %s", q.SortKey(), q.SortDirection())
	}
}

func TestParseSortKeyAndDirection(t *testing.T) {
	if k, ok := ParseSortKey(" Title "); !ok || k != SortTitle {
		t.Errorf("ParseSortKey(Title) = %v, %v", k, ok)
	}
	if _, ok := ParseSortKey("score"); ok {
		t.Error("expected score to be rejected")
	}
	if d, ok := ParseDirection("ASC"); !ok || d != Asc {
		t.Errorf("ParseDirection(ASC) = %v, %v", d, ok)
	}
	if _, ok := ParseDirection("up"); ok {
		t.Error("expected up to be rejected")
	}
}
