package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// KeyRecord is the state key holding the run's *Record.
const KeyRecord = "record"

// stage pairs a stage body with the safe default it falls back to. When run
// returns an error or panics, fallback is applied and the failure is recorded
// in Record.Errors; the failure never leaves the stage.
type stage struct {
	name     Stage
	run      func(ctx context.Context, rt *Runtime, rec *Record) error
	fallback func(rec *Record)
}

func stageNode(rt *Runtime, st stage) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		rec, err := extractRecord(s)
		if err != nil {
			return s, fmt.Errorf("%s: %w", st.name, err)
		}

		if err := ctx.Err(); err != nil {
			return s, fmt.Errorf("%w before %s: %w", ErrCancelled, st.name, err)
		}

		execute(ctx, rt, st, rec)

		return s.Set(KeyRecord, rec), nil
	})
}

// execute runs one stage inside its error boundary. On return CurrentStage
// names the stage and StepCount has grown by exactly one.
func execute(ctx context.Context, rt *Runtime, st stage, rec *Record) {
	start := time.Now()
	errorsBefore := rec.Errors.Len()

	defer func() {
		if r := recover(); r != nil {
			fail(ctx, rt, st, rec, fmt.Errorf("panic: %v", r))
		}

		rec.CurrentStage = st.name
		rec.StepCount++

		failed := rec.Errors.Len() > errorsBefore
		rt.Metrics.ObserveStage(string(st.name), time.Since(start), failed)

		rt.Logger.InfoContext(
			ctx, "stage complete",
			"run_id", rec.ID,
			"stage", st.name,
			"step", rec.StepCount,
			"failed", failed,
			"errors", rec.Errors.Len(),
			"warnings", rec.Warnings.Len(),
			"suggestions", rec.Suggestions.Len(),
			"duration", time.Since(start),
		)
	}()

	if err := st.run(ctx, rt, rec); err != nil {
		fail(ctx, rt, st, rec, err)
	}
}

func fail(ctx context.Context, rt *Runtime, st stage, rec *Record, err error) {
	if st.fallback != nil {
		st.fallback(rec)
	}
	rec.Errors.Append(fmt.Sprintf("%s: %v", st.name, err))

	rt.Logger.WarnContext(
		ctx, "stage failed",
		"run_id", rec.ID,
		"stage", st.name,
		"error", err,
	)
}

func extractRecord(s state.State) (*Record, error) {
	val, ok := s.Get(KeyRecord)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", KeyRecord)
	}

	rec, ok := val.(*Record)
	if !ok || rec == nil {
		return nil, fmt.Errorf("%s is not *Record", KeyRecord)
	}

	return rec, nil
}
