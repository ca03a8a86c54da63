// Package database manages the PostgreSQL connection pool used to persist
// run records.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/forge/pkg/lifecycle"
)

// ErrNotReady indicates the database connection has not been established.
var ErrNotReady = errors.New("database not ready")

// System owns the connection pool and ties it to the lifecycle.
type System interface {
	// Connection returns the pool, or ErrNotReady before a successful ping.
	Connection() (*sql.DB, error)
	// Start registers the startup ping and shutdown close hooks.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
	ready       chan struct{}
}

// New opens a pgx-backed pool from cfg. sql.Open validates the DSN without
// connecting; the first connection is made by the startup ping.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		logger:      logger.With("system", "database"),
		connTimeout: cfg.ConnTimeoutDuration(),
		ready:       make(chan struct{}),
	}, nil
}

func (d *database) Connection() (*sql.DB, error) {
	select {
	case <-d.ready:
		return d.conn, nil
	default:
		return nil, ErrNotReady
	}
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() error {
		ctx, cancel := context.WithTimeout(lc.Context(), d.connTimeout)
		defer cancel()

		if err := d.conn.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}

		close(d.ready)
		d.logger.Info("database connection established")
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}

		d.logger.Info("database connection closed")
	})

	return nil
}
