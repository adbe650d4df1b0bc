package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eshaffer321/orderrecon/internal/api/dto"
	"github.com/eshaffer321/orderrecon/internal/api/handlers"
	"github.com/eshaffer321/orderrecon/internal/api/middleware"
	"github.com/eshaffer321/orderrecon/internal/application/report"
	"github.com/eshaffer321/orderrecon/internal/infrastructure/storage"
	"github.com/eshaffer321/orderrecon/internal/observability/metrics"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
	// StaticDir, when set, is served at / for the dashboard frontend.
	StaticDir string
	// JWTSecret, when set, requires a bearer token on /api routes.
	JWTSecret string
	// ExposeErrors adds raw error messages to 500 responses.
	ExposeErrors bool
	DefaultHours int
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           5001,
		AllowedOrigins: middleware.DefaultCORSConfig().AllowedOrigins,
		DefaultHours:   report.DefaultHours,
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	store      storage.OrderStore
	reports    *report.Service
}

// NewServer creates a new API server over store.
func NewServer(cfg Config, store storage.OrderStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return NewServerWithService(cfg, report.NewService(store, logger), store, logger)
}

// NewServerWithService creates a server around an existing report service.
func NewServerWithService(cfg Config, reports *report.Service, store storage.OrderStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	metrics.Init()

	s := &Server{
		config:  cfg,
		router:  chi.NewRouter(),
		logger:  logger,
		store:   store,
		reports: reports,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = s.config.AllowedOrigins
	s.router.Use(middleware.CORS(corsConfig))

	s.router.Use(middleware.Logging(s.logger))
	s.router.Use(middleware.Metrics)
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	base := handlers.NewBase(s.logger, s.config.ExposeErrors)

	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler(base, s.store)
	s.router.Get("/health", healthHandler.ServeHTTP)
	s.router.Handle("/metrics", promhttp.Handler())

	reportsHandler := handlers.NewReportsHandler(base, s.reports, s.config.DefaultHours)

	s.router.Route("/api", func(r chi.Router) {
		if s.config.JWTSecret != "" {
			r.Use(middleware.Auth([]byte(s.config.JWTSecret)))
		}

		r.Get("/mismatch-report", reportsHandler.MismatchReport)
		r.Get("/auth-mismatch", reportsHandler.MismatchReport)
		r.Get("/mismatch-report/export", reportsHandler.ExportMismatchReport)

		r.Get("/payment-summary", reportsHandler.PaymentSummary)
		r.Get("/payment-summary/export", reportsHandler.ExportPaymentSummary)

		r.NotFound(func(w http.ResponseWriter, req *http.Request) {
			base.WriteError(w, http.StatusNotFound, dto.NotFoundError("route "+req.URL.Path))
		})
	})

	if s.config.StaticDir != "" {
		s.router.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
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
