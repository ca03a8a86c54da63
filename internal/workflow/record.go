package workflow

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Stage names a step of the workflow as recorded in Record.CurrentStage.
type Stage string

// Workflow stages. StageNone marks a record no stage has completed on yet;
// StageTerminal marks a record whose run has finished.
const (
	StageNone      Stage = ""
	StageInterpret Stage = "interpret"
	StagePlan      Stage = "plan"
	StageProduce   Stage = "produce"
	StageValidate  Stage = "validate"
	StageRefine    Stage = "refine"
	StageTerminal  Stage = "terminal"
)

// MinimalPathSteps is the number of stage executions on a run that validates
// without entering the refine loop.
const MinimalPathSteps = 4

// Outcome describes how a run ended.
type Outcome string

// Run outcomes.
const (
	OutcomeValid     Outcome = "valid"
	OutcomeExhausted Outcome = "exhausted"
	OutcomeCancelled Outcome = "cancelled"
)

// Accumulator is an append-only, order-preserving list of entries.
// Duplicates are kept. The zero value is an empty accumulator.
type Accumulator struct {
	entries []string
}

// Append adds entries to the end of the accumulator.
func (a *Accumulator) Append(entries ...string) {
	a.entries = append(a.entries, entries...)
}

// Entries returns a copy of the accumulated entries in append order.
func (a *Accumulator) Entries() []string {
	return slices.Clone(a.entries)
}

// Len returns the number of accumulated entries.
func (a *Accumulator) Len() int {
	return len(a.entries)
}

// MarshalJSON encodes the accumulator as a JSON array, never null.
func (a Accumulator) MarshalJSON() ([]byte, error) {
	if a.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.entries)
}

// UnmarshalJSON decodes a JSON array into the accumulator.
func (a *Accumulator) UnmarshalJSON(data []byte) error {
	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	a.entries = entries
	return nil
}

// Record is the single mutable state threaded through every stage of one run.
//
// Input is set once by NewRecord and never written by a stage. Each output
// field is written by the stage named in its comment. Errors, Warnings, and
// Suggestions only grow. StepCount increases by exactly one per executed
// stage.
type Record struct {
	ID    uuid.UUID `json:"id"`
	Input Input     `json:"input"`

	// interpret
	Intent   string   `json:"intent"`
	Entities []string `json:"entities"`

	// plan
	Plan  string   `json:"plan"`
	Steps []string `json:"steps"`

	// produce; refine replaces Artifact
	Artifact  string `json:"artifact"`
	Notes     string `json:"notes"`
	RawOutput string `json:"raw_output"`

	// validate
	ValidationErrors []string `json:"validation_errors"`

	// refine
	RefinedArtifact string   `json:"refined_artifact,omitempty"`
	Changes         []string `json:"changes,omitempty"`
	RefineCount     int      `json:"refine_count"`

	Errors      Accumulator `json:"errors"`
	Warnings    Accumulator `json:"warnings"`
	Suggestions Accumulator `json:"suggestions"`

	StepCount    int     `json:"step_count"`
	CurrentStage Stage   `json:"current_stage"`
	IsValid      bool    `json:"is_valid"`
	NeedsRetry   bool    `json:"needs_retry"`
	Outcome      Outcome `json:"outcome,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
}

// NewRecord creates the initial record for a run: no stage executed,
// empty accumulators.
func NewRecord(in Input) *Record {
	return &Record{
		ID:        uuid.New(),
		Input:     in,
		StartedAt: time.Now(),
	}
}

// ExtraSteps reports stage executions beyond the minimal
// interpret → plan → produce → validate path.
func (r *Record) ExtraSteps() int {
	return max(r.StepCount-MinimalPathSteps, 0)
}

// Terminal reports whether the run reached the terminal state.
func (r *Record) Terminal() bool {
	return r.CurrentStage == StageTerminal
}

// Succeeded reports whether the run produced a validated, non-empty artifact.
func (r *Record) Succeeded() bool {
	return r.IsValid && r.Artifact != ""
}
