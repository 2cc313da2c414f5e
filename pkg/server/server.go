// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	POST /v1/layout                           graph JSON in, positioned graph JSON out
//	POST /v1/render/{format}                  graph JSON in, artifact out
//	GET  /v1/layout/stream                    websocket; one graph per message
//	GET  /v1/lineage/datasets                 dataset names from the lineage service
//	GET  /v1/lineage/datasets/{dataset}/layout
//	GET  /v1/lineage/runs/{runID}/layout
//	GET  /healthz
//	GET  /metrics
//
// Layout endpoints accept the engine options as query parameters
// (horizontal_spacing, vertical_spacing, node_height, anchor,
// reverse_cycles) on top of the server defaults. Errors are JSON objects
// with the error code and a message; the status follows the code.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/creditdesk/lineageflow/pkg/pipeline"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// MaxBodySize bounds request bodies and websocket messages.
const MaxBodySize = 16 << 20

// Config holds the dependencies of a Server.
type Config struct {
	// Runner executes the pipeline. Its Client may be nil, in which case
	// the /v1/lineage routes answer 503.
	Runner *pipeline.Runner

	// Defaults are the layout options every request starts from.
	Defaults pipeline.Options

	Logger *log.Logger

	// Metrics is served on /metrics. Nil disables the route.
	Metrics prometheus.Gatherer
}

// Server is the HTTP API. Create it with [New].
type Server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	logger   *log.Logger
	metrics  prometheus.Gatherer
	upgrader websocket.Upgrader
	router   chi.Router
}

// New builds the server and its routes.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	s := &Server{
		runner:   cfg.Runner,
		defaults: cfg.Defaults,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		requestID,
		s.instrument,
		middleware.Recoverer,
	)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Get("/layout/stream", s.handleStream)
		r.Post("/render/{format}", s.handleRender)

		r.Route("/lineage", func(r chi.Router) {
			r.Get("/datasets", s.handleDatasets)
			r.Get("/datasets/{dataset}/layout", s.handleDatasetLayout)
			r.Get("/runs/{runID}/layout", s.handleRunLayout)
		})
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Serve listens on addr and blocks until ctx is cancelled, then shuts down
// gracefully. Open websocket streams are closed on shutdown.
func (s *Server) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
		BaseContext: func(net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		s.logger.Info("serving lineage layout API", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
