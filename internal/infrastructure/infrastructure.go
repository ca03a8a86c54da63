// Package infrastructure assembles the shared systems a forge process needs:
// lifecycle coordination, logging, metrics, and, when persistence is
// enabled, the database pool and artifact storage.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JaimeStill/forge/internal/config"
	"github.com/JaimeStill/forge/pkg/database"
	"github.com/JaimeStill/forge/pkg/lifecycle"
	"github.com/JaimeStill/forge/pkg/metrics"
	"github.com/JaimeStill/forge/pkg/storage"
)

// Infrastructure holds the systems shared by workflow runs and persistence.
// Database and Storage are nil when the configuration does not enable them.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Registry  *prometheus.Registry
	Metrics   *metrics.Collector
	Database  database.System
	Storage   storage.System
}

// NewLogger returns a text or JSON slog logger writing to w.
func NewLogger(w io.Writer, json bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// New creates the infrastructure described by cfg. Systems are created but
// not started; call Start.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m, err := metrics.New(reg)
	if err != nil {
		return nil, fmt.Errorf("metrics init failed: %w", err)
	}

	infra := &Infrastructure{
		Lifecycle: lifecycle.New(ctx),
		Logger:    logger.With("version", cfg.Version),
		Registry:  reg,
		Metrics:   m,
	}

	if !cfg.Persist {
		return infra, nil
	}

	infra.Database, err = database.New(&cfg.Database, infra.Logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	if cfg.StorageEnabled() {
		infra.Storage, err = storage.New(&cfg.Storage, infra.Logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
	}

	return infra, nil
}

// Start registers the enabled systems with the lifecycle coordinator and
// waits for their startup hooks.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	if err := i.Lifecycle.WaitForStartup(); err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}
	return nil
}
