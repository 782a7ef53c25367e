package components

import (
	"net/url"
	"strconv"
	"time"
)

// FormatDate formats a publication date for result listings.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Year() == time.Now().Year() {
		return t.Format("Jan 2")
	}
	return t.Format("Jan 2, 2006")
}

// PageURL links to a page of the search results for q.
func PageURL(q string, page int) string {
	v := url.Values{}
	if q != "" {
		v.Set("q", q)
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if len(v) == 0 {
		return "/search"
	}
	return "/search?" + v.Encode()
}

// summary is the line above the result list.
func summary(query string, total int) string {
	if query == "" {
		return "Latest pages"
	}
	noun := "results"
	if total == 1 {
		noun = "result"
	}
	return strconv.Itoa(total) + " " + noun + " for “" + query + "”"
}
