package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/forge/pkg/metrics"
)

// Runtime defaults applied when a field is left zero.
const (
	DefaultBudget            = 10
	DefaultGenerationTimeout = 90 * time.Second
)

// Runtime bundles the dependencies and limits that workflow nodes require.
// It is constructed by higher-level composition code from configuration and
// infrastructure, and is shared read-only by concurrent runs.
type Runtime struct {
	Generator         Generator
	Logger            *slog.Logger
	Metrics           *metrics.Collector
	Budget            int
	GenerationTimeout time.Duration
	MaxTaskSize       int64
	Concurrency       int
}

func (rt *Runtime) finalize() error {
	if rt.Generator == nil {
		return fmt.Errorf("%w: generator required", ErrInvalidRuntime)
	}
	if rt.Logger == nil {
		rt.Logger = slog.New(slog.DiscardHandler)
	}
	if rt.Budget == 0 {
		rt.Budget = DefaultBudget
	}
	if rt.Budget < MinimalPathSteps {
		return fmt.Errorf(
			"%w: budget %d is below the %d-step minimal path",
			ErrInvalidRuntime, rt.Budget, MinimalPathSteps,
		)
	}
	if rt.GenerationTimeout <= 0 {
		rt.GenerationTimeout = DefaultGenerationTimeout
	}
	if rt.Concurrency <= 0 {
		rt.Concurrency = 1
	}
	return nil
}

type generation struct {
	text string
	err  error
}

// generate performs one generation-service call. The call is detached from
// caller cancellation so a stage is never interrupted mid-flight, and is
// bounded by GenerationTimeout even if the Generator ignores its context.
// Calls are never retried here.
func (rt *Runtime) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rt.GenerationTimeout)
	defer cancel()

	done := make(chan generation, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- generation{err: fmt.Errorf("%w: panic: %v", ErrGenerate, r)}
			}
		}()

		text, err := rt.Generator.Generate(ctx, prompt)
		done <- generation{text: text, err: err}
	}()

	select {
	case g := <-done:
		switch {
		case g.err == nil:
			return g.text, nil
		case errors.Is(g.err, ErrGenerate):
			return "", g.err
		case errors.Is(g.err, context.DeadlineExceeded):
			return "", fmt.Errorf("%w after %s: %w", ErrTimeout, rt.GenerationTimeout, g.err)
		default:
			return "", fmt.Errorf("%w: %w", ErrGenerate, g.err)
		}
	case <-ctx.Done():
		return "", fmt.Errorf("%w after %s", ErrTimeout, rt.GenerationTimeout)
	}
}
