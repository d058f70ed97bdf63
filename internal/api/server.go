// Package api exposes the reconciliation backend over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reconview/ynab-reconciler/internal/api/handlers"
	"github.com/reconview/ynab-reconciler/internal/api/middleware"
	"github.com/reconview/ynab-reconciler/internal/application/service"
	"github.com/reconview/ynab-reconciler/internal/domain/matcher"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port            int
	AllowedOrigins  []string
	MatcherDefaults matcher.Config
	FlagColor       string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:            8080,
		AllowedOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
		MatcherDefaults: matcher.DefaultConfig(),
		FlagColor:       "orange",
	}
}

// Server is the HTTP API server.
type Server struct {
	config           Config
	router           chi.Router
	httpServer       *http.Server
	logger           *slog.Logger
	repo             storage.Repository
	reconcileService *service.ReconcileService
}

// NewServer creates a new API server.
// If reconcileService is nil, reconciliation endpoints will not be available.
func NewServer(cfg Config, repo storage.Repository, reconcileService *service.ReconcileService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:           cfg,
		router:           chi.NewRouter(),
		logger:           logger,
		repo:             repo,
		reconcileService: reconcileService,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	corsConfig := middleware.CORSConfig{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}
	s.router.Use(middleware.CORS(corsConfig))

	// Request logging
	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler()
	s.router.Get("/health", healthHandler.ServeHTTP)

	// Prometheus metrics
	s.router.Handle("/metrics", promhttp.Handler())

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// Statement transactions
		transactionsHandler := handlers.NewTransactionsHandler(s.repo, s.reconcileService)
		r.Post("/transactions/import", transactionsHandler.Import)
		r.Get("/transactions", transactionsHandler.List)

		// Run history
		runsHandler := handlers.NewRunsHandler(s.repo)
		r.Get("/runs", runsHandler.List)
		r.Get("/runs/{id}", runsHandler.Get)

		// Reconciliation operations
		if s.reconcileService != nil {
			reconcileHandler := handlers.NewReconcileHandler(s.reconcileService, s.config.MatcherDefaults, s.config.FlagColor)
			r.Post("/reconcile", reconcileHandler.Run)
			r.Post("/reconcile/flag", reconcileHandler.Flag)
			r.Post("/reconcile/create", reconcileHandler.Create)
			r.Delete("/transactions/{id}/match", transactionsHandler.Unmatch)
		}
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
