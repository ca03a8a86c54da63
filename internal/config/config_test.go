package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/forge/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[workflow]
budget = 12
generation_timeout = "2m"
max_task_size = "32KB"
concurrency = 3

[database]
host = "localhost"
port = 5432
name = "forge"
user = "forge"

[storage]
container_name = "artifacts"
`

const overlayConfig = `
persist = true

[workflow]
budget = 6

[database]
host = "prodhost"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Workflow.Budget != 12 {
		t.Errorf("budget = %d, want 12", cfg.Workflow.Budget)
	}
	if cfg.Workflow.GenerationTimeoutDuration() != 2*time.Minute {
		t.Errorf("generation_timeout = %v, want 2m", cfg.Workflow.GenerationTimeoutDuration())
	}
	if cfg.Workflow.MaxTaskSizeBytes() != 32*1024 {
		t.Errorf("max_task_size = %d, want 32KB", cfg.Workflow.MaxTaskSizeBytes())
	}
	if cfg.Workflow.Concurrency != 3 {
		t.Errorf("concurrency = %d, want 3", cfg.Workflow.Concurrency)
	}
	if cfg.Persist {
		t.Error("persist enabled without being configured")
	}
	if cfg.Agent.Provider == nil || cfg.Agent.Provider.Name == "" {
		t.Error("agent provider not defaulted")
	}
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load without config.toml: %v", err)
	}

	if cfg.Workflow.Budget != 10 {
		t.Errorf("budget = %d, want 10", cfg.Workflow.Budget)
	}
	if cfg.Workflow.GenerationTimeoutDuration() != 90*time.Second {
		t.Errorf("generation_timeout = %v, want 90s", cfg.Workflow.GenerationTimeoutDuration())
	}
	if cfg.Workflow.MaxTaskSizeBytes() != 16*1024 {
		t.Errorf("max_task_size = %d, want 16KB", cfg.Workflow.MaxTaskSizeBytes())
	}
	if cfg.Workflow.Concurrency != runtime.NumCPU() {
		t.Errorf("concurrency = %d, want NumCPU", cfg.Workflow.Concurrency)
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown_timeout = %v, want 30s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Env() != "local" {
		t.Errorf("env = %s, want local", cfg.Env())
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("FORGE_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.Persist {
		t.Error("persist not enabled by overlay")
	}
	if cfg.Workflow.Budget != 6 {
		t.Errorf("budget = %d, want 6 (overlay)", cfg.Workflow.Budget)
	}
	if cfg.Workflow.Concurrency != 3 {
		t.Errorf("concurrency = %d, want 3 (base)", cfg.Workflow.Concurrency)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host = %s, want prodhost (overlay)", cfg.Database.Host)
	}
	if cfg.StorageEnabled() {
		t.Error("storage enabled without a connection string")
	}
	if cfg.Env() != "staging" {
		t.Errorf("env = %s, want staging", cfg.Env())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("FORGE_VERSION", "2.0.0")
	t.Setenv("FORGE_WORKFLOW_BUDGET", "20")
	t.Setenv("FORGE_WORKFLOW_MAX_TASK_SIZE", "1MB")
	t.Setenv("FORGE_PERSIST", "true")
	t.Setenv("FORGE_DB_NAME", "envdb")
	t.Setenv("FORGE_STORAGE_CONNECTION_STRING", "conn")
	t.Setenv("FORGE_AGENT_MODEL_NAME", "env-model")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version = %s, want 2.0.0", cfg.Version)
	}
	if cfg.Workflow.Budget != 20 {
		t.Errorf("budget = %d, want 20", cfg.Workflow.Budget)
	}
	if cfg.Workflow.MaxTaskSizeBytes() != 1024*1024 {
		t.Errorf("max_task_size = %d, want 1MB", cfg.Workflow.MaxTaskSizeBytes())
	}
	if !cfg.Persist || cfg.Database.Name != "envdb" {
		t.Errorf("persist = %v, db name = %s", cfg.Persist, cfg.Database.Name)
	}
	if !cfg.StorageEnabled() {
		t.Error("storage not enabled by connection string")
	}
	if cfg.Agent.Model == nil || cfg.Agent.Model.Name != "env-model" {
		t.Errorf("agent model = %+v, want env-model", cfg.Agent.Model)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "forge.toml", baseConfig)
	chdir(t, t.TempDir())

	t.Setenv("FORGE_CONFIG", filepath.Join(dir, "forge.toml"))

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workflow.Budget != 12 {
		t.Errorf("budget = %d, want 12 from FORGE_CONFIG file", cfg.Workflow.Budget)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "malformed toml",
			config:  "budget = ",
			wantErr: "parse config",
		},
		{
			name:    "budget below minimal path",
			config:  "[workflow]\nbudget = 3\n",
			wantErr: "budget must be at least 4",
		},
		{
			name:    "bad generation timeout",
			config:  "[workflow]\ngeneration_timeout = \"soon\"\n",
			wantErr: "invalid generation_timeout",
		},
		{
			name:    "bad task size",
			config:  "[workflow]\nmax_task_size = \"lots\"\n",
			wantErr: "invalid max_task_size",
		},
		{
			name:    "bad shutdown timeout",
			config:  "shutdown_timeout = \"later\"\n",
			wantErr: "invalid shutdown_timeout",
		},
		{
			name:    "bad database timeout with persist",
			config:  "persist = true\n[database]\nconn_timeout = \"x\"\n",
			wantErr: "database: invalid conn_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", tt.config)
			chdir(t, dir)

			_, err := config.Load()
			if err == nil {
				t.Fatal("Load = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestDatabaseSkippedWithoutPersist(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", "[database]\nconn_timeout = \"x\"\n")
	chdir(t, dir)

	if _, err := config.Load(); err != nil {
		t.Errorf("Load = %v, want database config ignored when persist is off", err)
	}
}
