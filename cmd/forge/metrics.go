package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/forge/pkg/lifecycle"
)

// metricsServer exposes the process registry on /metrics for the life of
// the command.
type metricsServer struct {
	http            *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

func newMetricsServer(addr string, reg *prometheus.Registry, logger *slog.Logger, shutdownTimeout time.Duration) *metricsServer {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &metricsServer{
		http: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger:          logger.With("system", "metrics"),
		shutdownTimeout: shutdownTimeout,
	}
}

func (s *metricsServer) Start(lc *lifecycle.Coordinator) {
	go func() {
		s.logger.Info("metrics listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server error", "error", err)
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error("metrics shutdown error", "error", err)
		}
	})
}
