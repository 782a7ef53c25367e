package api

import (
	"encoding/json"
	"net/http"

	"github.com/rubiojr/docsearch/pkg/config"
	"github.com/rubiojr/docsearch/pkg/content"
	"github.com/rubiojr/docsearch/pkg/log"
	"github.com/rubiojr/docsearch/pkg/search"
)

// Server serves the JSON search endpoint.
type Server struct {
	engine    *search.Engine
	projector *search.Projector
	cfg       config.SearchConfig
	logger    *log.Logger
}

// NewServer creates an API server answering queries from repo. Documents are
// linked through resolver; those it cannot route are left out of responses.
func NewServer(repo search.Repository, resolver content.URLResolver, cfg config.SearchConfig) *Server {
	return &Server{
		engine:    search.NewEngine(repo),
		projector: search.NewProjector(resolver, cfg.ExcerptLength),
		cfg:       cfg,
		logger:    log.ForService("api"),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("Error encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}
