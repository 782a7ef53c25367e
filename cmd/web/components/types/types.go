package types

import "time"

// PageData represents data passed to templates
type PageData struct {
	Title       string
	Query       string
	Results     []WebResult
	TotalCount  int
	Error       string
	CurrentPage int
	PageSize    int
	TotalPages  int
	HasNextPage bool
	HasPrevPage bool
	Version     string // Application version (for footer display)
}

// WebResult represents a search hit for web display
type WebResult struct {
	Title       string
	URL         string
	Link        string // URL with a text directive for the query
	Type        string
	Excerpt     string
	PublishedAt *time.Time
}
