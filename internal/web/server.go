// Package web serves the pipeline over HTTP: uploads are validated and the
// result, audit report and run history are returned as JSON or HTML.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/florasheet/internal/config"
	"github.com/JonMunkholm/florasheet/internal/core"
	"github.com/JonMunkholm/florasheet/internal/store"
	mw "github.com/JonMunkholm/florasheet/internal/web/middleware"
)

// RunStore records and lists run history. *store.Store satisfies it.
type RunStore interface {
	Record(ctx context.Context, run *core.Run, source string) (store.Run, error)
	Recent(ctx context.Context, limit int) ([]store.Run, error)
}

// Server is the HTTP transport for the pipeline.
type Server struct {
	cfg     *config.Config
	base    core.Options
	history RunStore
	limiter *RunLimiter
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server. base.Schema is used when an upload carries no
// schema document. history may be nil, in which case runs are not recorded.
func NewServer(cfg *config.Config, base core.Options, history RunStore) (*Server, error) {
	if base.Schema == nil {
		return nil, errors.New("web: default schema is required")
	}

	s := &Server{
		cfg:     cfg,
		base:    base,
		history: history,
		limiter: NewRunLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(requestTimeout(s.cfg)))
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	// HTML audit view
	s.router.Post("/validate", s.handleValidatePage)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Get("/runs", s.handleListRuns)
	})
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for runs in flight.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.limiter.WaitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("json encode error", "error", err, "request_id", middleware.GetReqID(r.Context()))
	}
}

// requestTimeout returns the per-request budget, falling back when unset.
func requestTimeout(cfg *config.Config) time.Duration {
	if cfg.Server.RequestTimeout > 0 {
		return cfg.Server.RequestTimeout
	}
	return 60 * time.Second
}
