package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/forge/internal/prompts"
)

// GenericPlan is the plan substituted when no approach can be derived.
const GenericPlan = "Implement the requested functionality directly in the target format, covering the stated intent and its key entities."

var planStage = stage{
	name: StagePlan,
	run:  plan,
	fallback: func(rec *Record) {
		rec.Plan = GenericPlan
		rec.Steps = nil
	},
}

// PlanNode returns a state node that derives a structured approach and
// ordered implementation steps from the interpreted intent.
func PlanNode(rt *Runtime) state.StateNode {
	return stageNode(rt, planStage)
}

func plan(ctx context.Context, rt *Runtime, rec *Record) error {
	parsed, err := request(ctx, rt, prompts.StagePlan, rec)
	if err != nil {
		return err
	}

	approach, ok := parsed.Lookup(prompts.SectionApproach)
	if !ok || approach == "" {
		rec.Warnings.Append(fmt.Sprintf(
			"%s: no %s section in response, using generic plan",
			StagePlan, prompts.SectionApproach,
		))
		approach = GenericPlan
	}

	rec.Plan = approach
	rec.Steps = listItems(parsed.Or(prompts.SectionSteps, ""))
	return nil
}
