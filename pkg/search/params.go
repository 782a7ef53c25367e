package search

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Params are the request parameters shared by the search endpoints.
type Params struct {
	// Query is the trimmed q parameter, empty when absent.
	Query string

	// Page is the 1-based page number. Missing, non-numeric and
	// non-positive values all become 1.
	Page int
}

// ParseParams reads q and page from an HTTP query string. Invalid input is
// normalised rather than rejected.
func ParseParams(values url.Values) Params {
	params := Params{
		Query: strings.TrimSpace(values.Get("q")),
		Page:  1,
	}

	if pageStr := strings.TrimSpace(values.Get("page")); pageStr != "" {
		if parsed, err := strconv.Atoi(pageStr); err == nil && parsed > 0 {
			params.Page = parsed
		}
	}

	return params
}

// LongEnough reports whether the query has at least minLen characters.
func (p Params) LongEnough(minLen int) bool {
	return utf8.RuneCountInString(p.Query) >= minLen
}
