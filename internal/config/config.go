// Package config loads forge configuration from an optional config.toml, an
// optional config.<FORGE_ENV>.toml overlay, and FORGE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/forge/pkg/database"
	"github.com/JaimeStill/forge/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvForgeEnv             = "FORGE_ENV"
	EnvForgeConfig          = "FORGE_CONFIG"
	EnvForgePersist         = "FORGE_PERSIST"
	EnvForgeShutdownTimeout = "FORGE_SHUTDOWN_TIMEOUT"
	EnvForgeVersion         = "FORGE_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "FORGE_DB_HOST",
	Port:            "FORGE_DB_PORT",
	Name:            "FORGE_DB_NAME",
	User:            "FORGE_DB_USER",
	Password:        "FORGE_DB_PASSWORD",
	SSLMode:         "FORGE_DB_SSL_MODE",
	MaxOpenConns:    "FORGE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "FORGE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "FORGE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "FORGE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "FORGE_STORAGE_CONTAINER_NAME",
	ConnectionString: "FORGE_STORAGE_CONNECTION_STRING",
	Prefix:           "FORGE_STORAGE_PREFIX",
}

// Config is the root configuration for forge.
//
// Database and Storage are finalized only when Persist is enabled. Storage is
// optional even then: with no connection string, artifacts are kept inline in
// the run record.
type Config struct {
	Agent           gaconfig.AgentConfig `toml:"agent"`
	Workflow        WorkflowConfig       `toml:"workflow"`
	Persist         bool                 `toml:"persist"`
	Database        database.Config      `toml:"database"`
	Storage         storage.Config       `toml:"storage"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the FORGE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvForgeEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// StorageEnabled reports whether run artifacts are written to blob storage.
func (c *Config) StorageEnabled() bool {
	return c.Persist && c.Storage.ConnectionString != ""
}

// DatabaseURL finalizes the database section regardless of Persist and
// returns it as a postgres:// URL. Used by tooling such as migrations that
// needs the database without enabling run persistence.
func (c *Config) DatabaseURL() (string, error) {
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return "", fmt.Errorf("database: %w", err)
	}
	return c.Database.URL(), nil
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. The base file is config.toml in the working
// directory unless FORGE_CONFIG names another path. If no base file exists,
// defaults and environment variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	base := BaseConfigFile
	if v := os.Getenv(EnvForgeConfig); v != "" {
		base = v
	}

	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
// Persist can only be switched on by an overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.Persist {
		c.Persist = true
	}
	c.Agent.Merge(&overlay.Agent)
	c.Workflow.Merge(&overlay.Workflow)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := FinalizeAgent(&c.Agent); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Workflow.Finalize(); err != nil {
		return fmt.Errorf("workflow: %w", err)
	}
	if !c.Persist {
		return nil
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvForgePersist); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Persist = b
		}
	}
	if v := os.Getenv(EnvForgeShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvForgeVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvForgeEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
