package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/JaimeStill/forge/pkg/formatting"
)

const (
	EnvWorkflowBudget            = "FORGE_WORKFLOW_BUDGET"
	EnvWorkflowGenerationTimeout = "FORGE_WORKFLOW_GENERATION_TIMEOUT"
	EnvWorkflowMaxTaskSize       = "FORGE_WORKFLOW_MAX_TASK_SIZE"
	EnvWorkflowConcurrency       = "FORGE_WORKFLOW_CONCURRENCY"
)

// minimalPath is the stage count of a run that validates on its first pass;
// a smaller budget could never reach validation.
const minimalPath = 4

// WorkflowConfig holds the limits applied to every workflow run.
type WorkflowConfig struct {
	Budget            int    `toml:"budget"`
	GenerationTimeout string `toml:"generation_timeout"`
	MaxTaskSize       string `toml:"max_task_size"`
	Concurrency       int    `toml:"concurrency"`
}

// GenerationTimeoutDuration returns GenerationTimeout as a time.Duration.
func (c *WorkflowConfig) GenerationTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.GenerationTimeout)
	return d
}

// MaxTaskSizeBytes returns MaxTaskSize in bytes.
func (c *WorkflowConfig) MaxTaskSizeBytes() int64 {
	n, _ := formatting.ParseBytes(c.MaxTaskSize)
	return n
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *WorkflowConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *WorkflowConfig) Merge(overlay *WorkflowConfig) {
	if overlay.Budget != 0 {
		c.Budget = overlay.Budget
	}
	if overlay.GenerationTimeout != "" {
		c.GenerationTimeout = overlay.GenerationTimeout
	}
	if overlay.MaxTaskSize != "" {
		c.MaxTaskSize = overlay.MaxTaskSize
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
}

func (c *WorkflowConfig) loadDefaults() {
	if c.Budget == 0 {
		c.Budget = 10
	}
	if c.GenerationTimeout == "" {
		c.GenerationTimeout = "90s"
	}
	if c.MaxTaskSize == "" {
		c.MaxTaskSize = "16KB"
	}
	if c.Concurrency == 0 {
		c.Concurrency = runtime.NumCPU()
	}
}

func (c *WorkflowConfig) loadEnv() {
	if v := os.Getenv(EnvWorkflowBudget); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Budget = n
		}
	}
	if v := os.Getenv(EnvWorkflowGenerationTimeout); v != "" {
		c.GenerationTimeout = v
	}
	if v := os.Getenv(EnvWorkflowMaxTaskSize); v != "" {
		c.MaxTaskSize = v
	}
	if v := os.Getenv(EnvWorkflowConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
}

func (c *WorkflowConfig) validate() error {
	if c.Budget < minimalPath {
		return fmt.Errorf("budget must be at least %d, got %d", minimalPath, c.Budget)
	}
	d, err := time.ParseDuration(c.GenerationTimeout)
	if err != nil {
		return fmt.Errorf("invalid generation_timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("generation_timeout must be positive")
	}
	n, err := formatting.ParseBytes(c.MaxTaskSize)
	if err != nil {
		return fmt.Errorf("invalid max_task_size: %w", err)
	}
	if n <= 0 {
		return fmt.Errorf("max_task_size must be positive")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}
