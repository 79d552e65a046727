// Package server exposes manifest checking over HTTP.
//
// The API is small and JSON-only:
//
//	GET  /healthz    liveness probe
//	GET  /version    build metadata
//	POST /v1/parse   parse a manifest body into declarations
//	POST /v1/check   lint a manifest body
//	POST /v1/verify  verify exact pins against the package index
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/reqsmith/reqsmith/pkg/lint"
	"github.com/reqsmith/reqsmith/pkg/registry"
)

const shutdownTimeout = 10 * time.Second

// maxBodySize caps manifest uploads at 4 MiB. Real-world requirements
// files are a few KiB.
const maxBodySize = 4 << 20

// Options configures a Server.
type Options struct {
	Addr   string         // listen address, e.g. ":8080"
	Logger *log.Logger    // request logging; nil disables
	Index  registry.Index // pin verification backend; nil disables /v1/verify
	Lint   lint.Options   // severity overrides for /v1/check
}

// Server serves the manifest API.
type Server struct {
	opts   Options
	router chi.Router
}

// New builds a Server with its routes and middleware wired up.
func New(opts Options) *Server {
	s := &Server{opts: opts}

	r := chi.NewRouter()
	r.Use(requestID)
	if opts.Logger != nil {
		r.Use(requestLogger(opts.Logger))
	}
	r.Use(recoverer(opts.Logger))

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Post("/check", s.handleCheck)
		r.Post("/verify", s.handleVerify)
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		if s.opts.Logger != nil {
			s.opts.Logger.Info("listening", "addr", s.opts.Addr)
		}
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	if s.opts.Logger != nil {
		s.opts.Logger.Info("shutting down")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
