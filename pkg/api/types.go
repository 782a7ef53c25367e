package api

import (
	"time"

	"github.com/rubiojr/docsearch/pkg/search"
)

// SearchResponse is the body of GET /search.json. Count always equals
// len(Items) and Items is never null.
type SearchResponse struct {
	Query string              `json:"query"`
	Items []search.ResultItem `json:"items"`
	Count int                 `json:"count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}
