package prompts

import "errors"

// ErrInvalidStage is returned when a stage name is not one of Stages().
var ErrInvalidStage = errors.New("stage must be interpret, plan, produce, validate, or refine")
