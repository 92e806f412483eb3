package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/recall-postcards/internal/address"
	"github.com/recall-postcards/internal/metrics"
	"github.com/recall-postcards/internal/web/handlers"
	"github.com/recall-postcards/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config     *Config
	resolver   *address.Resolver
	stats      handlers.StatsFunc
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	httpServer *http.Server
	router     *mux.Router
}

// NewServer builds the preview server around a loaded resolver. Metrics are
// registered on reg and exposed at /metrics.
func NewServer(config *Config, resolver *address.Resolver, stats handlers.StatsFunc, reg *prometheus.Registry) *Server {
	server := &Server{
		config:   config,
		resolver: resolver,
		stats:    stats,
		registry: reg,
		metrics:  metrics.New(reg),
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      server.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	apiHandler := &handlers.APIHandler{Config: &s.config.Handlers, Stats: s.stats}
	searchHandler := &handlers.SearchHandler{Resolver: s.resolver, Metrics: s.metrics}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/window", apiHandler.GetWindow).Methods(http.MethodGet)
	api.HandleFunc("/resolve", searchHandler.Resolve).Methods(http.MethodGet)
	api.HandleFunc("/postal-code", searchHandler.PostalCode).Methods(http.MethodGet)

	s.router.HandleFunc("/healthz", apiHandler.Health).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.RequestLogging(s.metrics))
}

// Start serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on http://%s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Printf("Server stopped")
	return nil
}
