package runs_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/forge/internal/runs"
	"github.com/JaimeStill/forge/internal/workflow"
)

func finishedRecord() *workflow.Record {
	rec := workflow.NewRecord(workflow.Input{Task: "sum", Format: "go", Complexity: "simple"})
	rec.StepCount = 6
	rec.RefineCount = 1
	rec.IsValid = true
	rec.Outcome = workflow.OutcomeValid
	rec.Artifact = "package main"
	rec.Errors.Append("produce: boom")
	rec.CompletedAt = time.Now()
	return rec
}

func TestFromRecord(t *testing.T) {
	rec := finishedRecord()

	r, err := runs.FromRecord(rec)
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}

	if r.ID != rec.ID || r.Task != "sum" || r.Format != "go" || r.Complexity != "simple" {
		t.Errorf("identity fields = %+v", r)
	}
	if r.Outcome != workflow.OutcomeValid || !r.IsValid {
		t.Errorf("Outcome = %q, IsValid = %v", r.Outcome, r.IsValid)
	}
	if r.StepCount != 6 || r.RefineCount != 1 || r.ErrorCount != 1 {
		t.Errorf("counts = %d, %d, %d", r.StepCount, r.RefineCount, r.ErrorCount)
	}
	if r.CompletedAt == nil || !r.CompletedAt.Equal(rec.CompletedAt) {
		t.Errorf("CompletedAt = %v", r.CompletedAt)
	}
}

func TestFromRecordInvalid(t *testing.T) {
	tests := []struct {
		name string
		rec  *workflow.Record
	}{
		{"nil", nil},
		{"no id", &workflow.Record{StepCount: 4}},
		{"no steps", workflow.NewRecord(workflow.Input{Task: "x"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runs.FromRecord(tt.rec); !errors.Is(err, runs.ErrInvalidRecord) {
				t.Errorf("err = %v, want ErrInvalidRecord", err)
			}
		})
	}
}

func TestFromRecordCancelled(t *testing.T) {
	rec := finishedRecord()
	rec.CompletedAt = time.Time{}
	rec.Outcome = workflow.OutcomeCancelled

	r, err := runs.FromRecord(rec)
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	if r.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil", r.CompletedAt)
	}
}

func TestStorageKey(t *testing.T) {
	id := uuid.MustParse("0b0e4a4e-5a3c-4c39-9a55-54f1e0e6c3b1")

	tests := []struct {
		format string
		want   string
	}{
		{"python", "runs/0b0e4a4e-5a3c-4c39-9a55-54f1e0e6c3b1/artifact.py"},
		{"go", "runs/0b0e4a4e-5a3c-4c39-9a55-54f1e0e6c3b1/artifact.go"},
		{"text", "runs/0b0e4a4e-5a3c-4c39-9a55-54f1e0e6c3b1/artifact.txt"},
		{"unknown", "runs/0b0e4a4e-5a3c-4c39-9a55-54f1e0e6c3b1/artifact.txt"},
	}

	for _, tt := range tests {
		if got := runs.StorageKey(id, tt.format); got != tt.want {
			t.Errorf("StorageKey(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFiltersQuery(t *testing.T) {
	outcome := "valid"
	format := "go"
	valid := false

	tests := []struct {
		name      string
		filters   runs.Filters
		where     string
		wantArgs  []any
		wantLimit string
	}{
		{
			name:      "none",
			filters:   runs.Filters{},
			wantArgs:  []any{runs.DefaultListLimit},
			wantLimit: "LIMIT $1",
		},
		{
			name:      "outcome and format",
			filters:   runs.Filters{Outcome: &outcome, Format: &format, Limit: 5},
			where:     "WHERE outcome = $1 AND format = $2",
			wantArgs:  []any{"valid", "go", 5},
			wantLimit: "LIMIT $3",
		},
		{
			name:      "validity",
			filters:   runs.Filters{Valid: &valid},
			where:     "WHERE is_valid = $1",
			wantArgs:  []any{false, runs.DefaultListLimit},
			wantLimit: "LIMIT $2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, args := tt.filters.Query()

			if tt.where == "" && strings.Contains(q, "WHERE") {
				t.Errorf("query has WHERE clause: %s", q)
			}
			if tt.where != "" && !strings.Contains(q, tt.where) {
				t.Errorf("query %q missing %q", q, tt.where)
			}
			if !strings.HasSuffix(q, "ORDER BY created_at DESC "+tt.wantLimit) {
				t.Errorf("query %q does not end with ordering and %s", q, tt.wantLimit)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("args[%d] = %v, want %v", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}
