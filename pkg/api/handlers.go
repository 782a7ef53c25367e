package api

import (
	"net/http"
	"time"

	"github.com/rubiojr/docsearch/pkg/search"
	"github.com/rubiojr/docsearch/pkg/version"
)

// HandleSearch answers GET /search.json. Queries shorter than the configured
// minimum return an empty result without touching the repository.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	params := search.ParseParams(r.URL.Query())

	response := SearchResponse{
		Query: params.Query,
		Items: []search.ResultItem{},
	}

	if !params.LongEnough(s.cfg.MinQueryLength) {
		s.writeJSON(w, http.StatusOK, response)
		return
	}

	q := search.NewQuery().
		Published().
		Search(params.Query).
		PerPage(s.cfg.JSONPageSize)

	results, err := s.engine.Get(r.Context(), q)
	if err != nil {
		s.logger.Errorf("search for %q failed: %v", params.Query, err)
		s.writeError(w, http.StatusInternalServerError, "Search failed", "Search is temporarily unavailable")
		return
	}

	response.Items = s.projector.Items(results)
	response.Count = len(response.Items)

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	}

	s.writeJSON(w, http.StatusOK, health)
}
