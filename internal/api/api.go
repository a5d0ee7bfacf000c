// Package api provides the HTTP server for IntakeFlow.
//
// It exposes the flow catalog, stateless engine calls and a session-backed intake
// dialog under /api/v1.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/BTreeMap/IntakeFlow/internal/flow"
	"github.com/BTreeMap/IntakeFlow/internal/session"
	"github.com/gorilla/mux"
)

// Server configuration constants
const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":8080"
	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
	// DefaultReadHeaderTimeout bounds how long a client may take to send headers.
	DefaultReadHeaderTimeout = 10 * time.Second
	// MaxRequestBodyBytes caps request bodies.
	MaxRequestBodyBytes = 1 << 20
)

// Opts holds server configuration.
type Opts struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithShutdownTimeout sets the graceful shutdown timeout.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *Opts) { o.ShutdownTimeout = d }
}

// Server serves the IntakeFlow API.
type Server struct {
	router   *mux.Router
	engine   *flow.Engine
	sessions *session.Service
	addr     string
	shutdown time.Duration
}

// NewServer creates a server over the given dialog driver.
func NewServer(sessions *session.Service, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr, ShutdownTimeout: DefaultShutdownTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	s := &Server{
		router:   mux.NewRouter(),
		engine:   sessions.Engine(),
		sessions: sessions,
		addr:     cfg.Addr,
		shutdown: cfg.ShutdownTimeout,
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes.
func (s *Server) registerRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)

	// Catalog and flow descriptors
	api.HandleFunc("/services", s.listServicesHandler).Methods(http.MethodGet)
	api.HandleFunc("/services/{service}/flow", s.getFlowHandler).Methods(http.MethodGet)
	api.HandleFunc("/services/{service}/steps/{step}", s.getStepHandler).Methods(http.MethodGet)

	// Stateless engine calls
	api.HandleFunc("/engine/next", s.nextStepHandler).Methods(http.MethodPost)
	api.HandleFunc("/engine/validate", s.validateStepHandler).Methods(http.MethodPost)
	api.HandleFunc("/engine/progress", s.progressHandler).Methods(http.MethodPost)
	api.HandleFunc("/engine/defaults", s.defaultsHandler).Methods(http.MethodPost)
	api.HandleFunc("/engine/advance", s.advanceHandler).Methods(http.MethodPost)
	api.HandleFunc("/inference", s.inferenceHandler).Methods(http.MethodPost)

	// Intake sessions
	api.HandleFunc("/sessions", s.createSessionHandler).Methods(http.MethodPost)
	api.HandleFunc("/sessions", s.listSessionsHandler).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.getSessionHandler).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.deleteSessionHandler).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/service", s.selectServiceHandler).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/answers", s.answerHandler).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/reset", s.resetSessionHandler).Methods(http.MethodPost)

	// Subrouters resolve their own misses, so both routers need the JSON handlers.
	for _, r := range []*mux.Router{s.router, api} {
		r.NotFoundHandler = http.HandlerFunc(s.notFoundHandler)
		r.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowedHandler)
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.addr }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server.Run: IntakeFlow API listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("Server.Run: shutting down", "timeout", s.shutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server.Run: graceful shutdown failed", "error", err)
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		slog.Error("Server.Run: server failed", "error", err)
		return err
	}
}
