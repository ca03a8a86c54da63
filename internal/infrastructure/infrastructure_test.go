package infrastructure_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/JaimeStill/forge/internal/config"
	"github.com/JaimeStill/forge/internal/infrastructure"
	"github.com/JaimeStill/forge/pkg/database"
	"github.com/JaimeStill/forge/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNewWithoutPersistence(t *testing.T) {
	infra, err := infrastructure.New(context.Background(), &config.Config{Version: "test"}, discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if infra.Lifecycle == nil || infra.Logger == nil || infra.Metrics == nil || infra.Registry == nil {
		t.Errorf("core systems missing: %+v", infra)
	}
	if infra.Database != nil || infra.Storage != nil {
		t.Error("persistence systems created without persist")
	}
	if err := infra.Start(); err != nil {
		t.Errorf("Start: %v", err)
	}
	if !infra.Lifecycle.Ready() {
		t.Error("lifecycle not ready after Start")
	}
}

func TestNewWithPersistence(t *testing.T) {
	cfg := &config.Config{
		Persist: true,
		Database: database.Config{
			Host: "localhost", Port: 5432, Name: "forge", User: "forge",
			SSLMode: "disable", ConnMaxLifetime: "15m", ConnTimeout: "5s",
		},
		Storage: storage.Config{
			ContainerName:    "artifacts",
			ConnectionString: azuriteConnString,
		},
	}

	infra, err := infrastructure.New(context.Background(), cfg, discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if infra.Database == nil {
		t.Error("Database is nil")
	}
	if infra.Storage == nil {
		t.Error("Storage is nil")
	}
}

func TestNewPersistenceWithoutStorage(t *testing.T) {
	cfg := &config.Config{
		Persist:  true,
		Database: database.Config{Host: "localhost", Port: 5432, Name: "forge", User: "forge"},
	}

	infra, err := infrastructure.New(context.Background(), cfg, discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if infra.Database == nil || infra.Storage != nil {
		t.Errorf("Database = %v, Storage = %v", infra.Database, infra.Storage)
	}
}

func TestMetricsRegistered(t *testing.T) {
	infra, err := infrastructure.New(context.Background(), &config.Config{}, discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	infra.Metrics.ObserveRun("valid", 4)

	families, err := infra.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	var found bool
	for _, f := range families {
		if f.GetName() == "forge_runs_total" {
			found = true
		}
	}
	if !found {
		t.Error("forge_runs_total not registered")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	infrastructure.NewLogger(&buf, true, slog.LevelInfo).Info("hello", "k", "v")
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("json output = %q", buf.String())
	}

	buf.Reset()
	infrastructure.NewLogger(&buf, false, slog.LevelWarn).Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
}
