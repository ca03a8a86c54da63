package runs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/forge/internal/workflow"
	"github.com/JaimeStill/forge/pkg/repository"
	"github.com/JaimeStill/forge/pkg/storage"
)

type repo struct {
	db      *sql.DB
	storage storage.System
	logger  *slog.Logger
}

// New creates a run repository. store may be nil, in which case artifacts
// are kept inline in the record column.
func New(db *sql.DB, store storage.System, logger *slog.Logger) System {
	return &repo{
		db:      db,
		storage: store,
		logger:  logger.With("system", "runs"),
	}
}

func (r *repo) Save(ctx context.Context, rec *workflow.Record) (*Run, error) {
	run, err := FromRecord(rec)
	if err != nil {
		return nil, err
	}

	offload := r.storage != nil && rec.Artifact != ""
	if offload {
		run.ArtifactKey = StorageKey(run.ID, run.Format)
		body := strings.NewReader(rec.Artifact)
		if err := r.storage.Put(ctx, run.ArtifactKey, body, contentType(run.Format)); err != nil {
			return nil, fmt.Errorf("upload artifact: %w", err)
		}
	}

	record, err := encodeRecord(rec, offload)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO runs(id, task, format, complexity, outcome, is_valid, step_count,
			refine_count, error_count, artifact_key, record, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + columns

	args := []any{
		run.ID,
		run.Task,
		run.Format,
		run.Complexity,
		string(run.Outcome),
		run.IsValid,
		run.StepCount,
		run.RefineCount,
		run.ErrorCount,
		run.ArtifactKey,
		record,
		run.StartedAt,
		run.CompletedAt,
	}

	saved, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Run, error) {
		return repository.QueryOne(ctx, tx, q, args, scanRun)
	})
	if err != nil {
		if offload {
			if delErr := r.storage.Delete(ctx, run.ArtifactKey); delErr != nil {
				r.logger.Warn("compensating artifact delete failed", "key", run.ArtifactKey, "error", delErr)
			}
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	saved.Record = rec

	r.logger.InfoContext(
		ctx, "run saved",
		"id", saved.ID,
		"outcome", saved.Outcome,
		"artifact_key", saved.ArtifactKey,
	)
	return &saved, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Run, error) {
	q := "SELECT " + columns + " FROM runs WHERE id = $1"

	run, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanRun)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if err := r.restoreArtifact(ctx, &run); err != nil {
		return nil, err
	}

	return &run, nil
}

func (r *repo) List(ctx context.Context, filters Filters) ([]Run, error) {
	q, args := filters.Query()

	runs, err := repository.QueryMany(ctx, r.db, q, args, scanRun)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return runs, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	run, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM runs WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if run.ArtifactKey != "" && r.storage != nil {
		if delErr := r.storage.Delete(ctx, run.ArtifactKey); delErr != nil && !errors.Is(delErr, storage.ErrNotFound) {
			r.logger.Warn("artifact delete failed after run delete", "key", run.ArtifactKey, "error", delErr)
		}
	}

	r.logger.InfoContext(ctx, "run deleted", "id", id)
	return nil
}

func (r *repo) restoreArtifact(ctx context.Context, run *Run) error {
	if run.ArtifactKey == "" || r.storage == nil {
		return nil
	}

	body, err := r.storage.Get(ctx, run.ArtifactKey)
	if err != nil {
		return fmt.Errorf("download artifact: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}

	run.Record.Artifact = string(data)
	if run.Record.RefineCount > 0 {
		run.Record.RefinedArtifact = run.Record.Artifact
	}
	return nil
}
