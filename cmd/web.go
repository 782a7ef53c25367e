package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rubiojr/docsearch/cmd/web/components"
	"github.com/rubiojr/docsearch/cmd/web/components/types"
	"github.com/rubiojr/docsearch/pkg/api"
	"github.com/rubiojr/docsearch/pkg/config"
	"github.com/rubiojr/docsearch/pkg/fragment"
	"github.com/rubiojr/docsearch/pkg/log"
	"github.com/rubiojr/docsearch/pkg/search"
	"github.com/rubiojr/docsearch/pkg/version"
	"github.com/urfave/cli/v3"
)

// WebCommand creates the web command with both the JSON endpoint and the
// HTML search page
func WebCommand() *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Start web server with the search page and JSON endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "port",
				Usage: "Port to listen on (overrides the config)",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to (overrides the config)",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Re-import the content directory when it changes",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return startWebServer(ctx, c.String("config"), c.String("host"), c.String("port"), c.Bool("watch"))
		},
	}
}

// WebServer holds the server configuration and dependencies
type WebServer struct {
	config    *config.Config
	engine    *search.Engine
	projector *search.Projector
	apiServer *api.Server
	logger    *log.Logger
}

// NewWebServer wires the search page and the API around repo.
func NewWebServer(cfg *config.Config, repo search.Repository) *WebServer {
	resolver := newResolver(cfg)
	return &WebServer{
		config:    cfg,
		engine:    search.NewEngine(repo),
		projector: search.NewProjector(resolver, cfg.Search.ExcerptLength),
		apiServer: api.NewServer(repo, resolver, cfg.Search),
		logger:    log.ForService("web"),
	}
}

// Handler returns the complete HTTP handler, middleware included.
func (s *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// API routes
	s.apiServer.RegisterRoutes(mux)

	// Web UI routes
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /search", s.handleSearch)

	return api.Wrap(mux)
}

// startWebServer starts the web server with both API and UI
func startWebServer(ctx context.Context, configPath, host, port string, watch bool) error {
	cfg, store, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer closeStore(store)

	if host != "" {
		cfg.Server.Host = host
	}
	if port != "" {
		cfg.Server.Port = port
	}

	webServer := NewWebServer(cfg, store)
	logger := webServer.logger

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watch {
		if _, err := importDir(ctx, store, cfg.ContentDir); err != nil {
			logger.Warnf("initial import failed: %v", err)
		}
		go func() {
			if err := watchContent(ctx, store, cfg.ContentDir); err != nil {
				logger.Errorf("content watcher stopped: %v", err)
			}
		}()
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           webServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting web server on http://%s", cfg.Addr())
		logger.Infof("Available endpoints:")
		logger.Infof("  GET /search - Search page")
		logger.Infof("  GET /search.json - JSON search")
		logger.Infof("  GET /health - Health check")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Infof("Shutting down web server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// Web UI Handlers

// handleHome sends visitors to the search page, keeping any query
func (s *WebServer) handleHome(w http.ResponseWriter, r *http.Request) {
	target := "/search"
	if raw := r.URL.RawQuery; raw != "" {
		target += "?" + raw
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// handleSearch renders the search page. Without a query it lists the most
// recent documents.
func (s *WebServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := search.ParseParams(r.URL.Query())

	data := types.PageData{
		Title:       "Search",
		Query:       params.Query,
		CurrentPage: params.Page,
		PageSize:    s.config.Search.PageSize,
		Results:     []types.WebResult{},
		Version:     version.APIVersion(),
	}
	if params.Query != "" {
		data.Title = params.Query + " - Search"
	}

	q := search.NewQuery().
		Published().
		OrderBy(search.SortDate, search.Desc).
		PerPage(s.config.Search.PageSize).
		Page(params.Page)
	if params.Query != "" {
		q = q.Search(params.Query)
	}

	status := http.StatusOK
	results, err := s.engine.Get(r.Context(), q)
	if err != nil {
		s.logger.Errorf("search page for %q failed: %v", params.Query, err)
		data.Error = "Search is unavailable right now. Please try again later."
		status = http.StatusInternalServerError
	} else {
		data.Results = s.convertResults(results, params.Query)
		data.TotalCount = results.Total
		data.TotalPages = results.TotalPages
		data.HasNextPage = results.HasMore
		data.HasPrevPage = results.Page > 1 && results.Total > 0
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := components.Search(data).Render(r.Context(), w); err != nil {
		s.logger.Errorf("template error: %v", err)
	}
}

func (s *WebServer) convertResults(rs *search.ResultSet, query string) []types.WebResult {
	out := make([]types.WebResult, 0, rs.Len())
	for _, hit := range rs.Hits {
		item, ok := s.projector.Item(hit.Document)
		if !ok {
			continue
		}
		out = append(out, types.WebResult{
			Title:       item.Title,
			URL:         item.URL,
			Link:        fragment.WithText(item.URL, query),
			Type:        item.Type,
			Excerpt:     item.Excerpt,
			PublishedAt: hit.Document.PublishedAt,
		})
	}
	return out
}
