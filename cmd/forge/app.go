package main

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/forge/internal/config"
	"github.com/JaimeStill/forge/internal/infrastructure"
	"github.com/JaimeStill/forge/internal/runs"
	"github.com/JaimeStill/forge/internal/workflow"
	"github.com/JaimeStill/forge/pkg/formatting"
)

// App wires configuration and infrastructure into the workflow orchestrator
// and, when persistence is enabled, the run store.
type App struct {
	infra        *infrastructure.Infrastructure
	orchestrator *workflow.Orchestrator
	runs         runs.System
	metrics      *metricsServer
}

// NewApp builds the orchestrator from cfg. gen overrides the go-agents
// generator when non-nil.
func NewApp(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure, gen workflow.Generator, metricsAddr string) (*App, error) {
	if gen == nil {
		gen = workflow.NewAgentGenerator(cfg.Agent)
	}

	o, err := workflow.New(&workflow.Runtime{
		Generator:         gen,
		Logger:            infra.Logger.With("system", "workflow"),
		Metrics:           infra.Metrics,
		Budget:            cfg.Workflow.Budget,
		GenerationTimeout: cfg.Workflow.GenerationTimeoutDuration(),
		MaxTaskSize:       cfg.Workflow.MaxTaskSizeBytes(),
		Concurrency:       cfg.Workflow.Concurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}

	app := &App{
		infra:        infra,
		orchestrator: o,
	}

	if metricsAddr != "" {
		app.metrics = newMetricsServer(metricsAddr, infra.Registry, infra.Logger, cfg.ShutdownTimeoutDuration())
	}

	infra.Logger.InfoContext(
		ctx, "forge initialized",
		"env", cfg.Env(),
		"budget", o.Budget(),
		"max_task_size", formatting.FormatBytes(cfg.Workflow.MaxTaskSizeBytes(), 0),
		"persist", cfg.Persist,
		"storage", cfg.StorageEnabled(),
	)

	return app, nil
}

// Start starts the infrastructure and, once the database is reachable,
// attaches the run store.
func (a *App) Start() error {
	if a.metrics != nil {
		a.metrics.Start(a.infra.Lifecycle)
	}

	if err := a.infra.Start(); err != nil {
		return err
	}

	if a.infra.Database != nil {
		db, err := a.infra.Database.Connection()
		if err != nil {
			return err
		}
		a.runs = runs.New(db, a.infra.Storage, a.infra.Logger)
	}

	return nil
}

// Execute runs every input and persists each completed record. Results are
// returned in input order.
func (a *App) Execute(ctx context.Context, inputs []workflow.Input) []workflow.BatchResult {
	var results []workflow.BatchResult
	if len(inputs) == 1 {
		rec, err := a.orchestrator.Run(ctx, inputs[0])
		results = []workflow.BatchResult{{Index: 0, Record: rec, Err: err}}
	} else {
		results = a.orchestrator.RunBatch(ctx, inputs)
	}

	if a.runs == nil {
		return results
	}

	// persistence outlives a cancelled run so the partial record is kept
	saveCtx := context.WithoutCancel(ctx)
	for _, r := range results {
		if r.Record == nil {
			continue
		}
		if _, err := a.runs.Save(saveCtx, r.Record); err != nil {
			a.infra.Logger.ErrorContext(ctx, "save run failed", "run_id", r.Record.ID, "error", err)
		}
	}

	return results
}

// Shutdown releases infrastructure within timeout.
func (a *App) Shutdown(timeout time.Duration) error {
	return a.infra.Lifecycle.Shutdown(timeout)
}
