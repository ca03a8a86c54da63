// Package runs persists finished workflow records in PostgreSQL, with the
// primary artifact optionally offloaded to blob storage.
package runs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/forge/internal/workflow"
)

// Run is the stored summary of one workflow run. Record holds the complete
// final record; when ArtifactKey is set the artifact itself lives in blob
// storage and Record.Artifact is restored from there on Find.
type Run struct {
	ID          uuid.UUID        `json:"id"`
	Task        string           `json:"task"`
	Format      string           `json:"format"`
	Complexity  string           `json:"complexity"`
	Outcome     workflow.Outcome `json:"outcome"`
	IsValid     bool             `json:"is_valid"`
	StepCount   int              `json:"step_count"`
	RefineCount int              `json:"refine_count"`
	ErrorCount  int              `json:"error_count"`
	ArtifactKey string           `json:"artifact_key,omitempty"`
	Record      *workflow.Record `json:"record"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// System defines the run persistence operations.
type System interface {
	Save(ctx context.Context, rec *workflow.Record) (*Run, error)
	Find(ctx context.Context, id uuid.UUID) (*Run, error)
	List(ctx context.Context, filters Filters) ([]Run, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FromRecord builds the Run stored for rec. Records that never started a
// stage cannot be stored.
func FromRecord(rec *workflow.Record) (Run, error) {
	if rec == nil || rec.ID == uuid.Nil {
		return Run{}, fmt.Errorf("%w: record has no id", ErrInvalidRecord)
	}
	if rec.StepCount == 0 {
		return Run{}, fmt.Errorf("%w: no stage executed", ErrInvalidRecord)
	}

	r := Run{
		ID:          rec.ID,
		Task:        rec.Input.Task,
		Format:      rec.Input.Format,
		Complexity:  rec.Input.Complexity,
		Outcome:     rec.Outcome,
		IsValid:     rec.IsValid,
		StepCount:   rec.StepCount,
		RefineCount: rec.RefineCount,
		ErrorCount:  rec.Errors.Len(),
		Record:      rec,
		StartedAt:   rec.StartedAt,
	}
	if !rec.CompletedAt.IsZero() {
		completed := rec.CompletedAt
		r.CompletedAt = &completed
	}
	return r, nil
}

// StorageKey returns the blob key for a run's artifact. The extension
// follows the artifact format.
func StorageKey(id uuid.UUID, format string) string {
	return fmt.Sprintf("runs/%s/artifact%s", id, extension(format))
}

var extensions = map[string]string{
	"python":     ".py",
	"javascript": ".js",
	"typescript": ".ts",
	"go":         ".go",
	"java":       ".java",
	"sql":        ".sql",
	"html":       ".html",
	"json":       ".json",
}

func extension(format string) string {
	if ext, ok := extensions[format]; ok {
		return ext
	}
	return ".txt"
}

func contentType(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "html":
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// encodeRecord serializes rec for the record column. When the artifact is
// stored as a blob it is left out of the column.
func encodeRecord(rec *workflow.Record, offloaded bool) (string, error) {
	stored := *rec
	if offloaded {
		stored.Artifact = ""
		stored.RefinedArtifact = ""
	}

	data, err := json.Marshal(&stored)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return string(data), nil
}
