package prompts

import (
	"encoding/json"
	"slices"
)

// Stage represents a generation-backed workflow stage that a prompt targets.
type Stage string

// Valid workflow stages.
const (
	StageInterpret Stage = "interpret"
	StagePlan      Stage = "plan"
	StageProduce   Stage = "produce"
	StageValidate  Stage = "validate"
	StageRefine    Stage = "refine"
)

var stages = []Stage{
	StageInterpret,
	StagePlan,
	StageProduce,
	StageValidate,
	StageRefine,
}

// Stages returns the list of valid workflow stages in execution order.
func Stages() []Stage {
	return stages
}

// UnmarshalJSON validates that the decoded string is a known stage value.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known workflow stage.
// Returns ErrInvalidStage if the value is not recognized.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
