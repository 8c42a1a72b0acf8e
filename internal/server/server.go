// ABOUTME: Server orchestrator that wires the store, shelf, scanner and HTTP routes
// ABOUTME: Manages the HTTP listener lifecycle and graceful shutdown

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/2389/shelf/internal/catalog"
	"github.com/2389/shelf/internal/config"
	"github.com/2389/shelf/internal/library"
	"github.com/2389/shelf/internal/profile"
	"github.com/2389/shelf/internal/scan"
	"github.com/2389/shelf/internal/store"
	"github.com/2389/shelf/internal/webui"
)

// shutdownTimeout bounds graceful shutdown once the run context ends.
const shutdownTimeout = 5 * time.Second

// Server serves the JSON API and browser UI for one shelf.
type Server struct {
	config     *config.Config
	store      store.KV
	shelf      *library.Shelf
	scanner    *scan.Scanner
	profiles   *profile.Service
	httpServer *http.Server
	logger     *slog.Logger
}

// initStore opens the SQLite database named in the config.
func initStore(cfg *config.Config) (store.KV, error) {
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return s, nil
}

// New creates a Server backed by the configured SQLite database and the
// remote catalog.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	kv, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	looker := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)
	s, err := NewWithStore(ctx, cfg, kv, looker, logger)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	return s, nil
}

// NewWithStore creates a Server over an already open store and catalog.
// The server takes ownership of kv and closes it on shutdown.
func NewWithStore(ctx context.Context, cfg *config.Config, kv store.KV, looker catalog.Looker, logger *slog.Logger) (*Server, error) {
	shelf, err := library.Open(ctx, kv)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:   cfg,
		store:    kv,
		shelf:    shelf,
		scanner:  scan.New(shelf, looker, cfg.Scan.RepeatWindow),
		profiles: profile.NewService(kv),
		logger:   logger.With("component", "server"),
	}

	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("GET /health", s.handleHealth)

	s.registerAPIRoutes(mux)

	webui.New(shelf, s.scanner, s.profiles).RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           s.logRequests(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run listens on the configured address and serves until ctx is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		_ = s.store.Close()
		return fmt.Errorf("listening on HTTP address: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled or the server fails, then shuts
// down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			s.logger.Info("context canceled, initiating shutdown")
		}
		return s.gracefulShutdown()
	})

	return g.Wait()
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// The run context is already done when this is called.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops the HTTP server and closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))
	errs = appendCloseError(errs, "store close", s.store.Close())

	return errors.Join(errs...)
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests logs each request at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
