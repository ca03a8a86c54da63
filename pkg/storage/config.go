package storage

import (
	"fmt"
	"os"
	"strings"
)

// Config holds Azure Blob Storage connection parameters.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	Prefix           string `toml:"prefix"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ContainerName    string
	ConnectionString string
	Prefix           string
}

// Finalize applies defaults, environment variable overrides, and validation.
// An empty connection string is valid and leaves storage disabled.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "artifacts"
	}
}

func (c *Config) loadEnv(env *Env) {
	for _, o := range []struct {
		name string
		dst  *string
	}{
		{env.ContainerName, &c.ContainerName},
		{env.ConnectionString, &c.ConnectionString},
		{env.Prefix, &c.Prefix},
	} {
		if o.name == "" {
			continue
		}
		if v := os.Getenv(o.name); v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if strings.Contains(c.Prefix, "..") {
		return fmt.Errorf("prefix must not contain %q", "..")
	}
	return nil
}
