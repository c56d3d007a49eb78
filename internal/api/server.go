package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	handler "github.com/newthinker/tradelab/internal/api/handler/api"
	"github.com/newthinker/tradelab/internal/api/job"
	"github.com/newthinker/tradelab/internal/api/middleware"
	"github.com/newthinker/tradelab/internal/backtest"
	"github.com/newthinker/tradelab/internal/ingest"
	"github.com/newthinker/tradelab/internal/metrics"
	"github.com/newthinker/tradelab/internal/snapshot"
	"github.com/newthinker/tradelab/internal/strategy"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server for the strategy API
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	APIKey       string
	Version      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
	MetricsPath  string // empty disables /metrics
}

// Dependencies holds the services the handlers call into.
type Dependencies struct {
	Ingest     *ingest.Service
	Backtester *backtest.Backtester
	Strategies *strategy.Engine
	Strategy   string         // Registry name evaluated by /strategy/performance
	Params     map[string]any // Default strategy params
	Jobs       *job.Store
	Exporter   *snapshot.Exporter // nil when no archive is configured
	Metrics    *metrics.Registry  // nil disables request metrics
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Ingest == nil || deps.Backtester == nil || deps.Strategies == nil {
		return nil, fmt.Errorf("ingest service, backtester and strategies are required")
	}
	if deps.Jobs == nil {
		deps.Jobs = job.NewStore(100, time.Hour)
	}

	mux := http.NewServeMux()
	s := &Server{
		logger: logger,
		mux:    mux,
	}

	s.setupRoutes(cfg, deps)

	// Outermost first: logging sees the final status of every request
	var h http.Handler = mux
	if deps.Metrics != nil {
		h = metrics.HTTPMiddleware(deps.Metrics)(h)
	}
	h = middleware.CORS(cfg.CORSOrigins)(h)
	h = metrics.LoggingMiddleware(logger)(h)
	s.handler = h

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      h,
		ReadTimeout:  orDefault(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout: orDefault(cfg.WriteTimeout, 60*time.Second),
		IdleTimeout:  orDefault(cfg.IdleTimeout, 60*time.Second),
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	auth := middleware.APIKeyAuth(cfg.APIKey)
	protect := func(h http.HandlerFunc) http.Handler { return auth(h) }

	system := handler.NewSystemHandler(cfg.Version)
	data := handler.NewDataHandler(deps.Ingest)
	strat := handler.NewStrategyHandler(deps.Backtester, deps.Strategies, deps.Strategy, deps.Params)
	snapshots := handler.NewSnapshotHandler(deps.Jobs, deps.Exporter)
	jobs := handler.NewJobHandler(deps.Jobs)

	s.mux.HandleFunc("GET /{$}", system.Root)
	s.mux.HandleFunc("GET /health", system.Health)

	s.mux.HandleFunc("GET /data", data.List)
	s.mux.HandleFunc("GET /data/count", data.Count)
	s.mux.Handle("POST /data", protect(data.Create))
	s.mux.Handle("POST /data/bulk", protect(data.CreateBulk))
	s.mux.Handle("DELETE /data/all", protect(data.DeleteAll))

	s.mux.HandleFunc("GET /strategy/performance", strat.Performance)

	s.mux.HandleFunc("GET /snapshots", snapshots.List)
	s.mux.Handle("POST /snapshots", protect(snapshots.Create))
	s.mux.HandleFunc("GET /jobs/{id}", jobs.Get)

	if cfg.MetricsPath != "" && deps.Metrics != nil {
		s.mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
