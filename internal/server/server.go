// Package server exposes the diagnosis and the name analysis as a JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/xingming/internal/logger"
	"github.com/ppiankov/xingming/internal/model"
	"github.com/ppiankov/xingming/internal/pipeline"
	"github.com/ppiankov/xingming/internal/worker"
)

const (
	sweepInterval = time.Minute
	clientIdle    = 10 * time.Minute
	shutdownGrace = 10 * time.Second
)

// Server serves the HTTP API
type Server struct {
	pipeline *pipeline.Pipeline
	cfg      model.ServerConfig
	limiter  *worker.Limiter // per client address
	handler  http.Handler
}

// New creates a server over p
func New(p *pipeline.Pipeline, cfg model.ServerConfig) *Server {
	s := &Server{
		pipeline: p,
		cfg:      cfg,
		limiter:  worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/diagnose", s.handleDiagnose)
	mux.HandleFunc("POST /v1/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /v1/lucky-strokes", s.handleLuckyStrokes)
	mux.HandleFunc("GET /v1/remedy", s.handleRemedy)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.handler = requestID(recoverer(logRequests(s.rateLimit(mux))))
	return s
}

// Handler returns the root handler with all middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log.WithField("addr", s.cfg.Addr).Info("xingming API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		logger.Log.Info("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				if n := s.limiter.Sweep(clientIdle); n > 0 {
					logger.Log.WithField("clients", n).Debug("swept idle rate limiters")
				}
			}
		}
	})

	return g.Wait()
}
