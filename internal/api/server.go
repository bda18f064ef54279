package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/lawref/internal/catalog"
	"github.com/dgallion1/lawref/internal/config"
	"github.com/dgallion1/lawref/internal/library"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for lawref.
type Server struct {
	router  chi.Router
	catalog catalog.Store
	library *library.Library
	indexer *library.Indexer
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(store catalog.Store, lib *library.Library, ix *library.Indexer, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		catalog: store,
		library: lib,
		indexer: ix,
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints when a key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/categories", s.handleCategories)
		r.Get("/api/categories/{categoryID}/subcategories", s.handleSubCategories)
		r.Get("/api/categories/{categoryID}/laws", s.handleLaws)

		r.Get("/api/article", s.handleArticle)
		r.Get("/api/preview", s.handlePreview)

		r.Post("/api/index", s.handleIndex)
		r.Get("/api/index/{jobID}/status", s.handleIndexStatus)

		r.Get("/api/stats/parse", s.handleParseStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
