package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/forge/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "FORGE_DB_DSN"

func main() {
	var (
		dsn     = flag.String("dsn", "", "Database URL (default: "+envDSN+", then the forge database config)")
		up      = flag.Bool("up", false, "Run all up migrations")
		down    = flag.Bool("down", false, "Run all down migrations")
		steps   = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version = flag.Bool("version", false, "Print current migration version")
		force   = flag.Int("force", -1, "Force set version (use with caution)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	forceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	url, err := resolveDSN(*dsn)
	if err != nil {
		fatal(logger, "resolve database url", err)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		fatal(logger, "create migration source", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		fatal(logger, "create migrator", err)
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			fatal(logger, "get version", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", v, dirty)
	case forceSet:
		if err := m.Force(*force); err != nil {
			fatal(logger, "force version", err)
		}
		logger.Info("forced migration version", "version", *force)
	case *up:
		run(logger, "up", m.Up())
	case *down:
		run(logger, "down", m.Down())
	case *steps != 0:
		run(logger, fmt.Sprintf("steps %d", *steps), m.Steps(*steps))
	default:
		fmt.Println("usage: migrate [-dsn <url>] [-up|-down|-steps N|-version|-force N]")
		flag.PrintDefaults()
	}
}

func resolveDSN(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.DatabaseURL()
}

func run(logger *slog.Logger, direction string, err error) {
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		fatal(logger, "run migrations "+direction, err)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to apply", "direction", direction)
		return
	}
	logger.Info("migrations applied", "direction", direction)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg+" failed", "error", err)
	os.Exit(1)
}
