package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /search.json", s.HandleSearch)
	mux.HandleFunc("GET /health", s.HandleHealth)
}
