package workflow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/forge/internal/prompts"
)

// promptContext is the slice of the Record a stage shares with the
// generation service. Fields a stage does not need are left empty.
type promptContext struct {
	Task             string   `json:"task"`
	Format           string   `json:"format"`
	Complexity       string   `json:"complexity,omitempty"`
	Options          *Options `json:"options,omitempty"`
	Intent           string   `json:"intent,omitempty"`
	Entities         []string `json:"entities,omitempty"`
	Plan             string   `json:"plan,omitempty"`
	Steps            []string `json:"steps,omitempty"`
	Artifact         *string  `json:"artifact,omitempty"`
	ValidationErrors []string `json:"validation_errors,omitempty"`
}

func newPromptContext(stage prompts.Stage, rec *Record) promptContext {
	pc := promptContext{
		Task:   rec.Input.Task,
		Format: rec.Input.Format,
	}

	switch stage {
	case prompts.StageInterpret:
		pc.Complexity = rec.Input.Complexity
		pc.Options = &rec.Input.Options
	case prompts.StagePlan:
		pc.Complexity = rec.Input.Complexity
		pc.Options = &rec.Input.Options
		pc.Intent = rec.Intent
		pc.Entities = rec.Entities
	case prompts.StageProduce:
		pc.Complexity = rec.Input.Complexity
		pc.Options = &rec.Input.Options
		pc.Intent = rec.Intent
		pc.Plan = rec.Plan
		pc.Steps = rec.Steps
	case prompts.StageValidate:
		pc.Options = &rec.Input.Options
		pc.Intent = rec.Intent
		pc.Plan = rec.Plan
		pc.Artifact = &rec.Artifact
	case prompts.StageRefine:
		pc.Options = &rec.Input.Options
		pc.Intent = rec.Intent
		pc.Plan = rec.Plan
		pc.Artifact = &rec.Artifact
		pc.ValidationErrors = rec.ValidationErrors
	}

	return pc
}

// ComposePrompt builds the structured prompt for a workflow stage by
// combining the stage instructions, the response specification naming the
// sections the stage parses, and the stage-relevant task context from rec.
func ComposePrompt(stage prompts.Stage, rec *Record) (string, error) {
	instructions, err := prompts.Instructions(stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := prompts.Spec(stage)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	contextJSON, err := json.MarshalIndent(newPromptContext(stage, rec), "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize task context: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)
	sb.WriteString("\n\nTask context:\n\n")
	sb.Write(contextJSON)

	return sb.String(), nil
}
