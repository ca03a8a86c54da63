package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/forge/internal/prompts"
	"github.com/JaimeStill/forge/pkg/formatting"
	"github.com/JaimeStill/forge/pkg/sections"
)

var produceStage = stage{
	name: StageProduce,
	run:  produce,
	fallback: func(rec *Record) {
		rec.Artifact = ""
		rec.Notes = ""
	},
}

// ProduceNode returns a state node that generates the primary artifact from
// the plan. On failure the artifact is left empty, which the validate stage
// can never accept, so the run is forced onto the refine path.
func ProduceNode(rt *Runtime) state.StateNode {
	return stageNode(rt, produceStage)
}

func produce(ctx context.Context, rt *Runtime, rec *Record) error {
	parsed, raw, err := requestRaw(ctx, rt, prompts.StageProduce, rec)
	if err != nil {
		return err
	}
	rec.RawOutput = raw

	artifact, err := artifactSection(parsed)
	if err != nil {
		return err
	}

	rec.Artifact = artifact
	rec.Notes = noneAsEmpty(parsed.Or(prompts.SectionNotes, ""))
	return nil
}

func artifactSection(parsed sections.Sections) (string, error) {
	value, ok := parsed.Lookup(prompts.SectionArtifact)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingSection, prompts.SectionArtifact)
	}

	artifact := formatting.StripFence(value)
	if artifact == "" {
		return "", fmt.Errorf("%w: %s section is empty", ErrInvalidResponse, prompts.SectionArtifact)
	}

	return artifact, nil
}
