package workflow

import (
	"context"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/forge/internal/prompts"
)

var refineStage = stage{
	name: StageRefine,
	run:  refine,
	fallback: func(rec *Record) {
		rec.NeedsRetry = true
	},
}

// RefineNode returns a state node that requests a corrected artifact for the
// accumulated validation errors and replaces the primary artifact with it.
// It is reachable only through the validate back-edge. On failure the
// artifact is kept and NeedsRetry stays set so the loop continues until the
// budget is spent.
func RefineNode(rt *Runtime) state.StateNode {
	return stageNode(rt, refineStage)
}

func refine(ctx context.Context, rt *Runtime, rec *Record) error {
	parsed, err := request(ctx, rt, prompts.StageRefine, rec)
	if err != nil {
		return err
	}

	artifact, err := artifactSection(parsed)
	if err != nil {
		return err
	}

	rec.Artifact = artifact
	rec.RefinedArtifact = artifact
	rec.RefineCount++

	rec.Changes = listItems(parsed.Or(prompts.SectionChanges, ""))
	return nil
}
