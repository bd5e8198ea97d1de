// Package server exposes the sunwheel pipeline as an HTTP API.
//
// The server shares the exact pipeline used by the CLI, backed by either a
// Redis cache (for multi-instance deployments) or no cache at all. Every
// request gets a UUID for log correlation, returned in the X-Request-ID
// header.
//
// # Endpoints
//
//   - GET  /healthz   - liveness probe
//   - POST /v1/render - run the aggregate → layout → render pipeline
//   - POST /v1/focus  - compute a zoom transition for a dataset
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mkarlsen/sunwheel/pkg/cache"
	"github.com/mkarlsen/sunwheel/pkg/pipeline"
)

// maxBodyBytes caps request bodies; datasets are small JSON documents.
const maxBodyBytes = 4 << 20

// Config configures the HTTP server.
type Config struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string

	// RedisAddr enables the shared Redis cache when non-empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// CacheScope prefixes all cache keys, isolating deployments that share
	// one Redis instance.
	CacheScope string
}

// Server wraps the HTTP listener and the pipeline runner behind it.
type Server struct {
	cfg    Config
	logger *log.Logger
	runner *pipeline.Runner
	http   *http.Server
}

// New builds a server with its cache backend and routes. The context is
// only used to verify the Redis connection.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var keyer cache.Keyer
	if cfg.CacheScope != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.CacheScope+":")
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		runner: pipeline.NewRunner(backend, keyer, logger),
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func newBackend(ctx context.Context, cfg Config) (cache.Cache, error) {
	if cfg.RedisAddr == "" {
		return cache.NewNullCache(), nil
	}
	return cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// routes assembles the chi router with shared middleware.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Post("/focus", s.handleFocus)
	})
	return r
}

// ListenAndServe blocks until the context is cancelled or the listener
// fails. Shutdown drains in-flight requests for up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-errCh
	}
}

// Close releases the runner's cache backend.
func (s *Server) Close() error {
	return s.runner.Close()
}

// Handler returns the router, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

const requestIDKey ctxKey = 0

// requestID assigns a UUID to every request and echoes it in the response.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logRequests logs method, path, status, and duration for every request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"id", requestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON serializes v with the standard headers.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
