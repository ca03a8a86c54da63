package runs

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/forge/internal/workflow"
	"github.com/JaimeStill/forge/pkg/repository"
)

const columns = `id, task, format, complexity, outcome, is_valid, step_count,
	refine_count, error_count, artifact_key, record, started_at, completed_at, created_at`

// DefaultListLimit bounds List when Filters.Limit is unset.
const DefaultListLimit = 50

// Filters narrows List results. Nil fields are ignored.
type Filters struct {
	Outcome *string
	Format  *string
	Valid   *bool
	Limit   int
}

// Query returns the list statement and its arguments, newest runs first.
func (f Filters) Query() (string, []any) {
	var (
		where []string
		args  []any
	)

	add := func(column string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if f.Outcome != nil {
		add("outcome", *f.Outcome)
	}
	if f.Format != nil {
		add("format", *f.Format)
	}
	if f.Valid != nil {
		add("is_valid", *f.Valid)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	args = append(args, limit)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(columns)
	sb.WriteString(" FROM runs")
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	fmt.Fprintf(&sb, " ORDER BY created_at DESC LIMIT $%d", len(args))

	return sb.String(), args
}

func scanRun(s repository.Scanner) (Run, error) {
	var (
		r         Run
		outcome   string
		record    []byte
		completed sql.NullTime
	)

	err := s.Scan(
		&r.ID, &r.Task, &r.Format, &r.Complexity, &outcome, &r.IsValid, &r.StepCount,
		&r.RefineCount, &r.ErrorCount, &r.ArtifactKey, &record, &r.StartedAt, &completed, &r.CreatedAt,
	)
	if err != nil {
		return Run{}, err
	}

	r.Outcome = workflow.Outcome(outcome)
	if completed.Valid {
		r.CompletedAt = &completed.Time
	}

	r.Record = &workflow.Record{}
	if err := json.Unmarshal(record, r.Record); err != nil {
		return Run{}, fmt.Errorf("decode record %s: %w", r.ID, err)
	}

	return r, nil
}
