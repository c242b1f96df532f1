// Package web provides the HTTP API for the processor catalog.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/procspec/internal/config"
	"github.com/JonMunkholm/procspec/internal/core"
	mw "github.com/JonMunkholm/procspec/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP server for the processor API.
type Server struct {
	store    core.Store
	ingester *core.Ingester
	uploads  *core.UploadLimiter
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
}

// NewServer wires the router for store using cfg.
func NewServer(store core.Store, cfg *config.Config) *Server {
	s := &Server{
		store:    store,
		ingester: core.NewIngester(store, cfg.Upload.MaxFileSize),
		uploads:  core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.QueueWait),
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
	s.router.Use(middleware.StripSlashes)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := mw.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
		s.router.Use(limiter.Handler)
	}
}

// setupRoutes configures all HTTP routes. Trailing slashes are stripped
// before routing, so "/processors/" and "/processors" are the same route.
func (s *Server) setupRoutes() {
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

		r.Get("/", s.handleProcessorPage)

		r.Get("/processors", s.handleListProcessors)
		r.Get("/processors/{id}", s.handleGetProcessor)
		r.Get("/api/processors", s.handleListProcessors)
		r.Get("/api/processors/{id}", s.handleGetProcessor)
		r.Get("/processor/tdp/{name}", s.handleTDPText)

		r.Route("/api/processor/tdp", func(r chi.Router) {
			r.Get("/value/{name}", s.handleTDPValue)
			r.Get("/{name}", s.handleTDPJSON)
		})

		r.Get("/healthz", s.handleHealth)
		r.Handle("/metrics", promhttp.Handler())
	})

	// Uploads carry their own, longer deadline.
	s.router.With(mw.APIKeyAuth(s.cfg.Security)).Post("/upload-csv", s.handleUploadCSV)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		mw.WriteError(w, r, http.StatusNotFound, errRouteNotFound)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		mw.WriteError(w, r, http.StatusMethodNotAllowed, errMethodNotAllowed)
	})
}

var (
	errRouteNotFound    = errors.New("route not found")
	errMethodNotAllowed = errors.New("method not allowed")
)

// Start begins listening for HTTP requests. It returns
// http.ErrServerClosed once Shutdown has been called.
func (s *Server) Start() error {
	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Run serves until ctx is cancelled, then shuts down and returns only
// after in-flight uploads and requests have finished or
// SERVER_SHUTDOWN_TIMEOUT has passed.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	shutdownErr := s.Shutdown(shutdownCtx)
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return shutdownErr
}

// Shutdown waits for active uploads, then gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var drainErr error
	if n := s.uploads.Active(); n > 0 {
		slog.Info("waiting for uploads to complete", "active", n)
		if drainErr = s.uploads.Drain(ctx); drainErr != nil {
			slog.Warn("uploads did not complete in time", "error", drainErr)
		} else {
			slog.Info("all uploads completed")
		}
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return drainErr
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds headers suitable for a JSON and text API.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
