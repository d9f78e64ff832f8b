// Package server provides the HTTP API for users, files, ingestion and queries.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/tanya/internal/account"
	"github.com/hyperjump/tanya/internal/config"
	"github.com/hyperjump/tanya/internal/filestore"
	"github.com/hyperjump/tanya/internal/ingest"
	"github.com/hyperjump/tanya/internal/rag"
	"github.com/hyperjump/tanya/internal/storage"
	"github.com/hyperjump/tanya/internal/vector"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Deps are the components the API is built on.
type Deps struct {
	Storage  storage.Storage
	Accounts *account.Service
	Uploads  *filestore.Store
	Ingestor *ingest.Ingestor
	RAG      *rag.Service
	Index    vector.VectorIndex
}

// Server is the HTTP server for the API.
type Server struct {
	deps    Deps
	config  *config.Config
	limiter *rate.Limiter
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
// A nil logger is replaced by a no-op logger.
func NewServer(deps Deps, cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{deps: deps, config: cfg, logger: logger}
	if cfg.Server.QueryRateLimit > 0 {
		burst := cfg.Server.QueryBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Server.QueryRateLimit), burst)
	}
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.config.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.Server.RequestTimeout))
	}
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Post("/users", s.handleCreateUser)
		r.Get("/users", s.handleListUsers)
		r.Get("/users/{id}", s.handleGetUser)
		r.Put("/users/{id}/role", s.handleUpdateUserRole)
		r.Get("/users/{id}/chat-history", s.handleChatHistory)
		r.Get("/users/{id}/files", s.handleListUserFiles)

		r.Get("/roles", s.handleListRoles)
		r.Post("/roles", s.handleCreateRole)

		r.Post("/files", s.handleUploadFile)
		r.Get("/files/{id}", s.handleGetFile)
		r.Post("/files/{id}/ingest", s.handleIngestFile)

		r.With(s.rateLimit).Post("/query", s.handleQuery)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
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
