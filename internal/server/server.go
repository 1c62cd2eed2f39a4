// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes search, PubMed lookup and synthesis over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/pdiddy/literature-engine/internal/search"
	"github.com/pdiddy/literature-engine/internal/synth"
	"github.com/pdiddy/literature-engine/pkg/types"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8080"

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Searcher runs an aggregation.
type Searcher interface {
	Run(ctx context.Context, req search.Request) (search.Outcome, error)
}

// PaperLookup resolves a single PubMed paper.
type PaperLookup interface {
	Lookup(ctx context.Context, req search.PaperRequest) (types.PubMedPaper, error)
}

// Synthesizer produces a synthesis from a literature context.
type Synthesizer interface {
	Synthesize(ctx context.Context, req synth.Request) (synth.Result, error)
}

// Server holds the handlers' dependencies. Papers and Synth may be nil;
// their routes then answer 503.
type Server struct {
	search Searcher
	papers PaperLookup
	synth  Synthesizer
	router *chi.Mux
	logger *zap.Logger

	defaultLimit int
}

// Options configures the HTTP layer.
type Options struct {
	AllowedOrigins []string
	Logger         *zap.Logger
	// DefaultLimit is the per-source limit for search requests that do not
	// set one. Zero leaves the aggregator default.
	DefaultLimit int
}

// New creates a Server with all routes configured.
func New(searcher Searcher, papers PaperLookup, synthesizer Synthesizer, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search: searcher,
		papers: papers,
		synth:  synthesizer,
		router: chi.NewRouter(),
		logger: logger,

		defaultLimit: opts.DefaultLimit,
	}

	s.setupMiddleware(opts.AllowedOrigins)
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/literature", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/pubmed", s.handlePubMed)
		r.Post("/synthesize", s.handleSynthesize)
	})
}

// requestLogger logs one line per request with zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		}()
		next.ServeHTTP(ww, r)
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
