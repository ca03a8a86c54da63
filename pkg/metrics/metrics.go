// Package metrics exposes Prometheus collectors for workflow stage executions
// and run outcomes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stage outcome label values.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Collector records stage and run measurements. A nil *Collector is valid and
// records nothing, so callers without a registry can pass nil.
type Collector struct {
	stageExecutions *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	runsTotal       *prometheus.CounterVec
	runSteps        prometheus.Histogram
}

// New creates a Collector and registers its metrics with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		stageExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forge_stage_executions_total",
				Help: "Total number of workflow stage executions.",
			},
			[]string{"stage", "outcome"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forge_stage_duration_seconds",
				Help:    "Workflow stage execution duration in seconds.",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"stage"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forge_runs_total",
				Help: "Total number of workflow runs by outcome.",
			},
			[]string{"outcome"},
		),
		runSteps: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "forge_run_steps",
				Help:    "Stage executions per completed workflow run.",
				Buckets: prometheus.LinearBuckets(4, 2, 8),
			},
		),
	}

	for _, col := range []prometheus.Collector{
		c.stageExecutions,
		c.stageDuration,
		c.runsTotal,
		c.runSteps,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// ObserveStage records one stage execution.
func (c *Collector) ObserveStage(stage string, d time.Duration, failed bool) {
	if c == nil {
		return
	}
	outcome := OutcomeOK
	if failed {
		outcome = OutcomeFailed
	}
	c.stageExecutions.WithLabelValues(stage, outcome).Inc()
	c.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveRun records a finished run and the number of stages it executed.
func (c *Collector) ObserveRun(outcome string, steps int) {
	if c == nil {
		return
	}
	c.runsTotal.WithLabelValues(outcome).Inc()
	c.runSteps.Observe(float64(steps))
}
