// Package workflow implements the forge code-generation workflow: a fixed
// sequence of generation-backed stages (interpret → plan → produce →
// validate) threading one Record, with a single guarded back-edge
// (validate → refine → validate) bounded by a step budget.
package workflow

import "errors"

// Sentinel errors for workflow operations.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidRuntime  = errors.New("invalid workflow runtime")
	ErrCancelled       = errors.New("workflow cancelled")
	ErrGenerate        = errors.New("generation failed")
	ErrTimeout         = errors.New("generation timed out")
	ErrMissingSection  = errors.New("response missing section")
	ErrInvalidResponse = errors.New("unusable response")
)
