// Package server provides the HTTP API for chizu.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/chizu/internal/config"
	"github.com/hyperjump/chizu/internal/metrics"
	"github.com/hyperjump/chizu/internal/models"
	"github.com/hyperjump/chizu/internal/storage"
)

// Searcher answers map and per-year searches.
type Searcher interface {
	BuildFeatureCollection(ctx context.Context, term string) (*models.FeatureCollection, error)
	SearchForYear(ctx context.Context, query *models.SearchQuery) (*models.YearResults, error)
}

// StatusReader reports store contents for /api/status.
type StatusReader interface {
	CountRecords(ctx context.Context) (*storage.RecordCounts, error)
}

// Server is the HTTP server for the chizu API.
type Server struct {
	engine  Searcher
	storage StatusReader
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies. A nil logger discards output.
func NewServer(engine Searcher, store StatusReader, cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:  engine,
		storage: store,
		config:  cfg,
		logger:  logger,
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api", func(r chi.Router) {
		r.Use(instrument)
		r.Get("/search", s.handleSearch)
		r.Get("/search/{year}", s.handleSearchYear)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
