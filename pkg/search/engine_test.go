package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/rubiojr/docsearch/pkg/content"
)

func day(n int) *time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return &t
}

func corpus() StaticRepository {
	return StaticRepository{
		{ID: "01", Type: "post", Slug: "introduction", Title: "Introduction", RawBody: "Welcome to the docs.", PublishedAt: day(1), Visibility: content.Published},
		{ID: "02", Type: "post", Slug: "install", Title: "Install", Excerpt: "An intro to installing", RawBody: "Run the installer.", PublishedAt: day(5), Visibility: content.Published},
		{ID: "03", Type: "page", Slug: "faq", Title: "FAQ", RawBody: "See the intro first.", PublishedAt: day(3), Visibility: content.Published},
		{ID: "04", Type: "post", Slug: "draft", Title: "Intro draft", RawBody: "wip", PublishedAt: day(9), Visibility: content.Draft},
		{ID: "05", Type: "page", Slug: "hidden", Title: "Intro hidden", RawBody: "secret", PublishedAt: day(8), Visibility: content.Unlisted},
		{ID: "06", Type: "post", Slug: "changelog", Title: "Changelog", RawBody: "Release notes.", PublishedAt: day(7), Visibility: content.Published},
		{ID: "07", Type: "post", Slug: "undated", Title: "Undated", RawBody: "No date here.", Visibility: content.Published},
	}
}

func ids(rs *ResultSet) []string {
	out := []string{}
	for _, h := range rs.Hits {
		out = append(out, h.Document.ID)
	}
	return out
}

func TestGetBrowseOrdersByDate(t *testing.T) {
	engine := NewEngine(corpus())
	rs, err := engine.Get(context.Background(), NewQuery().Published().OrderBy(SortDate, Desc))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	want := []string{"06", "02", "03", "01", "07"}
	if got := ids(rs); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if rs.Total != 5 {
		t.Errorf("expected total 5, got %d", rs.Total)
	}

	rs, err = engine.Get(context.Background(), NewQuery().Published().OrderBy(SortTitle, Asc))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want = []string{"06", "03", "02", "01", "07"}
	if got := ids(rs); !reflect.DeepEqual(got, want) {
		t.Errorf("expected title order %v, got %v", want, got)
	}
}

func TestGetSearchRanksByFieldThenRecency(t *testing.T) {
	engine := NewEngine(corpus())
	rs, err := engine.Get(context.Background(), NewQuery().Published().OrderBy(SortDate, Desc).Search("intro"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Title hit, then excerpt hit, then body hit. Drafts and unlisted
	// documents never show up.
	want := []string{"01", "02", "03"}
	if got := ids(rs); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if rs.Term != "intro" {
		t.Errorf("expected term intro, got %q", rs.Term)
	}
}

func TestGetRecencyBreaksScoreTies(t *testing.T) {
	repo := StaticRepository{
		{ID: "a", Title: "Release", PublishedAt: day(1), Visibility: content.Published},
		{ID: "b", Title: "Release", PublishedAt: day(3), Visibility: content.Published},
		{ID: "c", Title: "Release", PublishedAt: day(2), Visibility: content.Published},
	}

	// Equal scores and equal titles leave only the publication date.
	q := NewQuery().OrderBy(SortTitle, Asc).Search("release")
	rs, err := NewEngine(repo).Get(context.Background(), q)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got, want := ids(rs), []string{"b", "c", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestGetIDBreaksFullTies(t *testing.T) {
	repo := StaticRepository{
		{ID: "z", Title: "Same", Visibility: content.Published},
		{ID: "m", Title: "Same", Visibility: content.Published},
		{ID: "a", Title: "Same", Visibility: content.Published},
	}
	for _, q := range []Query{NewQuery(), NewQuery().Search("same")} {
		rs, err := NewEngine(repo).Get(context.Background(), q)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got, want := ids(rs), []string{"a", "m", "z"}; !reflect.DeepEqual(got, want) {
			t.Errorf("term %q: expected %v, got %v", q.Term(), want, got)
		}
	}
}

func TestGetNoNonMatches(t *testing.T) {
	engine := NewEngine(corpus())
	for _, term := range []string{"intro", "release notes", "docs", "installer", "nothing matches this"} {
		rs, err := engine.Get(context.Background(), NewQuery().Search(term).PerPage(100))
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		for _, h := range rs.Hits {
			score, ok := Score(h.Document, term)
			if !ok || score <= 0 {
				t.Errorf("term %q returned non-matching document %s", term, h.Document.ID)
			}
			if score != h.Score {
				t.Errorf("term %q: hit score %v differs from Score %v", term, h.Score, score)
			}
		}
	}
}

func TestGetPaginationSlicesRankedSequence(t *testing.T) {
	var repo StaticRepository
	for i := range 23 {
		repo = append(repo, content.Document{
			ID:          fmt.Sprintf("doc-%02d", i),
			Title:       fmt.Sprintf("Guide %d", i),
			RawBody:     "guide body",
			PublishedAt: day(i % 7),
			Visibility:  content.Published,
		})
	}
	engine := NewEngine(repo)
	ctx := context.Background()

	for _, term := range []string{"", "guide"} {
		base := NewQuery().Published().OrderBy(SortDate, Desc).Search(term)
		all, err := engine.Get(ctx, base.PerPage(1000))
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		full := ids(all)

		for _, p := range []int{1, 3, 5, 10, 23, 40} {
			for n := 1; n <= 25; n++ {
				rs, err := engine.Get(ctx, base.PerPage(p).Page(n))
				if err != nil {
					t.Fatalf("Get: %v", err)
				}
				start := min((n-1)*p, len(full))
				end := min(n*p, len(full))
				want := full[start:end]
				if got := ids(rs); !reflect.DeepEqual(got, want) && !(len(got) == 0 && len(want) == 0) {
					t.Errorf("term %q perPage %d page %d: expected %v, got %v", term, p, n, want, got)
				}
				if rs.Len() > p {
					t.Errorf("page has %d items, more than perPage %d", rs.Len(), p)
				}
				if rs.Total != len(full) {
					t.Errorf("expected total %d, got %d", len(full), rs.Total)
				}
				if rs.HasMore != (end < len(full)) {
					t.Errorf("perPage %d page %d: HasMore = %v", p, n, rs.HasMore)
				}
			}
		}
	}
}

func TestGetClampsPageAndPerPage(t *testing.T) {
	engine := NewEngine(corpus())
	for _, n := range []int{0, -1, -100} {
		rs, err := engine.Get(context.Background(), NewQuery().Published().PerPage(n).Page(n))
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if rs.Page != 1 || rs.PerPage != 1 || rs.Len() != 1 {
			t.Errorf("n=%d: expected page 1 with one item, got page %d perPage %d len %d", n, rs.Page, rs.PerPage, rs.Len())
		}
	}

	// The zero Query must not crash either.
	if _, err := engine.Get(context.Background(), Query{}); err != nil {
		t.Errorf("zero query: %v", err)
	}
}

func TestGetEmptyAndOutOfRange(t *testing.T) {
	ctx := context.Background()

	rs, err := NewEngine(StaticRepository{}).Get(ctx, NewQuery().Search("anything"))
	if err != nil {
		t.Fatalf("Get on empty repository: %v", err)
	}
	if rs.Len() != 0 || rs.Total != 0 || rs.Hits == nil {
		t.Errorf("expected empty non-nil result, got %+v", rs)
	}

	rs, err = NewEngine(corpus()).Get(ctx, NewQuery().Page(99))
	if err != nil {
		t.Fatalf("Get past the end: %v", err)
	}
	if rs.Len() != 0 || rs.HasMore {
		t.Errorf("expected empty last page, got %d hits", rs.Len())
	}
	if rs.Total != len(corpus()) {
		t.Errorf("expected total %d, got %d", len(corpus()), rs.Total)
	}

	// Page numbers whose offset would overflow int stay out of range.
	for _, page := range []int{1<<61 + 1, math.MaxInt} {
		rs, err = NewEngine(corpus()).Get(ctx, NewQuery().PerPage(8).Page(page))
		if err != nil {
			t.Fatalf("Get page %d: %v", page, err)
		}
		if rs.Len() != 0 || rs.HasMore {
			t.Errorf("page %d: expected no hits, got %d", page, rs.Len())
		}
	}

	rs, err = NewEngine(corpus()).Get(ctx, NewQuery().PerPage(math.MaxInt))
	if err != nil {
		t.Fatalf("Get with huge page size: %v", err)
	}
	if rs.Len() != len(corpus()) || rs.TotalPages != 1 || rs.HasMore {
		t.Errorf("expected one page with every document, got %d hits over %d pages", rs.Len(), rs.TotalPages)
	}
}

func TestGetSearchIdempotent(t *testing.T) {
	engine := NewEngine(corpus())
	ctx := context.Background()
	base := NewQuery().Published().OrderBy(SortDate, Desc)

	once, err := engine.Get(ctx, base.Search("intro"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	twice, err := engine.Get(ctx, base.Search("intro").Search("intro"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("re-applying the term changed the result: %v vs %v", ids(once), ids(twice))
	}
}

func TestGetOfType(t *testing.T) {
	rs, err := NewEngine(corpus()).Get(context.Background(), NewQuery().Published().OfType("PAGE"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got, want := ids(rs), []string{"03"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestGetRepositoryError(t *testing.T) {
	boom := errors.New("disk on fire")
	repo := RepositoryFunc(func(context.Context) ([]content.Document, error) {
		return nil, boom
	})

	_, err := NewEngine(repo).Get(context.Background(), NewQuery())
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped repository error, got %v", err)
	}
}
