package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/forge/internal/prompts"
)

var interpretStage = stage{
	name: StageInterpret,
	run:  interpret,
	fallback: func(rec *Record) {
		rec.Intent = rec.Input.Task
		rec.Entities = nil
	},
}

// InterpretNode returns a state node that derives the intent summary and key
// entities from the task description. A response without an INTENT section
// keeps the raw task description as the intent and records a warning.
func InterpretNode(rt *Runtime) state.StateNode {
	return stageNode(rt, interpretStage)
}

func interpret(ctx context.Context, rt *Runtime, rec *Record) error {
	parsed, err := request(ctx, rt, prompts.StageInterpret, rec)
	if err != nil {
		return err
	}

	intent, ok := parsed.Lookup(prompts.SectionIntent)
	if !ok || intent == "" {
		rec.Warnings.Append(fmt.Sprintf(
			"%s: no %s section in response, using task description",
			StageInterpret, prompts.SectionIntent,
		))
		intent = rec.Input.Task
	}

	rec.Intent = intent
	rec.Entities = listItems(parsed.Or(prompts.SectionEntities, ""))
	return nil
}
