package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// Orchestrator drives runs through the fixed stage graph. It holds only the
// runtime (stage dependencies, budget, and the branch predicate); all run
// state lives in each run's Record, so one Orchestrator serves concurrent
// runs.
type Orchestrator struct {
	rt *Runtime
}

// New validates rt, applies runtime defaults, and returns an Orchestrator.
func New(rt *Runtime) (*Orchestrator, error) {
	if rt == nil {
		return nil, fmt.Errorf("%w: runtime required", ErrInvalidRuntime)
	}
	if err := rt.finalize(); err != nil {
		return nil, err
	}
	return &Orchestrator{rt: rt}, nil
}

// Budget returns the maximum number of stage executions after which a run is
// forced to the terminal state.
func (o *Orchestrator) Budget() int {
	return o.rt.Budget
}

// Run executes the workflow for one input and returns the final Record.
//
// Input validation failures wrap ErrInvalidInput and are returned before any
// stage runs, with a nil Record. Otherwise a Record is always returned.
// Stage failures never surface as errors; they are reported through
// Record.Errors and Record.IsValid. If ctx is cancelled, the run stops at the
// next stage boundary and Run returns the last fully completed Record
// together with an error wrapping ErrCancelled.
func (o *Orchestrator) Run(ctx context.Context, in Input) (*Record, error) {
	in = in.Normalize()
	if err := in.Validate(o.rt.MaxTaskSize); err != nil {
		return nil, err
	}

	graph, err := buildGraph(o.rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	rec := NewRecord(in)

	o.rt.Logger.InfoContext(
		ctx, "workflow started",
		"run_id", rec.ID,
		"format", in.Format,
		"complexity", in.Complexity,
		"budget", o.rt.Budget,
	)

	initialState := state.New(nil)
	initialState = initialState.Set(KeyRecord, rec)

	if _, err := graph.Execute(ctx, initialState); err != nil {
		if errors.Is(err, ErrCancelled) || ctx.Err() != nil {
			rec.Outcome = OutcomeCancelled
			o.rt.Metrics.ObserveRun(string(rec.Outcome), rec.StepCount)
			o.rt.Logger.WarnContext(
				ctx, "workflow cancelled",
				"run_id", rec.ID,
				"stage", rec.CurrentStage,
				"step", rec.StepCount,
			)
			return rec, fmt.Errorf(
				"%w after %s at step %d: %w",
				ErrCancelled, stageOrStart(rec.CurrentStage), rec.StepCount, context.Cause(ctx),
			)
		}
		return rec, fmt.Errorf("execute graph: %w", err)
	}

	return rec, nil
}

// Next is the workflow's single branch predicate, evaluated after validate:
// refine when a retry is needed and the budget allows another pass,
// terminal otherwise. A valid record never needs a retry, so it always
// proceeds to terminal.
func Next(rec *Record, budget int) Stage {
	if rec.NeedsRetry && rec.StepCount < budget {
		return StageRefine
	}
	return StageTerminal
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("forge-workflow")
	cfg.Observer = "noop"
	// at most Budget+1 stage executions plus the terminal node
	cfg.MaxIterations = rt.Budget + 2

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	nodes := []struct {
		stage Stage
		node  state.StateNode
	}{
		{StageInterpret, InterpretNode(rt)},
		{StagePlan, PlanNode(rt)},
		{StageProduce, ProduceNode(rt)},
		{StageValidate, ValidateNode(rt)},
		{StageRefine, RefineNode(rt)},
		{StageTerminal, TerminalNode(rt)},
	}

	for _, n := range nodes {
		if err := graph.AddNode(string(n.stage), n.node); err != nil {
			return nil, err
		}
	}

	refine := func(s state.State) bool {
		rec, err := extractRecord(s)
		if err != nil {
			return false
		}
		return Next(rec, rt.Budget) == StageRefine
	}

	edges := []struct {
		from, to Stage
		when     func(state.State) bool
	}{
		{StageInterpret, StagePlan, nil},
		{StagePlan, StageProduce, nil},
		{StageProduce, StageValidate, nil},
		// validate → refine (retry needed, budget remaining)
		{StageValidate, StageRefine, refine},
		// validate → terminal (valid, or budget exhausted)
		{StageValidate, StageTerminal, state.Not(refine)},
		{StageRefine, StageValidate, nil},
	}

	for _, e := range edges {
		if err := graph.AddEdge(string(e.from), string(e.to), e.when); err != nil {
			return nil, err
		}
	}

	if err := graph.SetEntryPoint(string(StageInterpret)); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint(string(StageTerminal)); err != nil {
		return nil, err
	}

	return graph, nil
}

// TerminalNode returns the state node that closes a run. It is not a stage:
// it does not count toward StepCount. It records the outcome, valid when
// validation passed and exhausted otherwise.
func TerminalNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		rec, err := extractRecord(s)
		if err != nil {
			return s, fmt.Errorf("%s: %w", StageTerminal, err)
		}

		rec.CurrentStage = StageTerminal
		rec.CompletedAt = time.Now()
		rec.Outcome = OutcomeExhausted
		if rec.IsValid {
			rec.Outcome = OutcomeValid
		}

		rt.Metrics.ObserveRun(string(rec.Outcome), rec.StepCount)
		rt.Logger.InfoContext(
			ctx, "workflow complete",
			"run_id", rec.ID,
			"outcome", rec.Outcome,
			"steps", rec.StepCount,
			"extra_steps", rec.ExtraSteps(),
			"refinements", rec.RefineCount,
			"errors", rec.Errors.Len(),
		)

		return s.Set(KeyRecord, rec), nil
	})
}

func stageOrStart(s Stage) string {
	if s == StageNone {
		return "start"
	}
	return string(s)
}
