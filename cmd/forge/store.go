package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/google/uuid"

	"github.com/JaimeStill/forge/internal/runs"
	"github.com/JaimeStill/forge/internal/workflow"
)

var errNoStore = errors.New("stored runs require persistence: set persist = true or FORGE_PERSIST=true")

var outcomes = []string{
	string(workflow.OutcomeValid),
	string(workflow.OutcomeExhausted),
	string(workflow.OutcomeCancelled),
}

// storeCommand reports whether f asks for a stored-run command instead of a
// workflow run.
func (f *flags) storeCommand() bool {
	return f.show != "" || f.list || f.remove != ""
}

func (f *flags) validateStore() error {
	n := 0
	for _, set := range []bool{f.show != "", f.list, f.remove != ""} {
		if set {
			n++
		}
	}
	if n > 1 {
		return errors.New("-show, -list, and -delete are mutually exclusive")
	}
	if n == 1 && (f.task != "" || f.batch != "") {
		return errors.New("-task and -batch cannot be combined with -show, -list, or -delete")
	}
	return nil
}

func (f *flags) filters() (runs.Filters, error) {
	filters := runs.Filters{Limit: f.limit}
	if f.outcome != "" {
		if !slices.Contains(outcomes, f.outcome) {
			return filters, fmt.Errorf("outcome %q not one of %v", f.outcome, outcomes)
		}
		filters.Outcome = &f.outcome
	}
	return filters, nil
}

// runStore executes the stored-run command selected by f and writes its
// result to w as JSON.
func runStore(ctx context.Context, f *flags, store runs.System, w io.Writer) error {
	if store == nil {
		return errNoStore
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	switch {
	case f.show != "":
		id, err := parseRunID(f.show)
		if err != nil {
			return err
		}
		run, err := store.Find(ctx, id)
		if err != nil {
			return err
		}
		return enc.Encode(run)

	case f.list:
		filters, err := f.filters()
		if err != nil {
			return err
		}
		list, err := store.List(ctx, filters)
		if err != nil {
			return err
		}
		if list == nil {
			list = []runs.Run{}
		}
		return enc.Encode(list)

	default:
		id, err := parseRunID(f.remove)
		if err != nil {
			return err
		}
		if err := store.Delete(ctx, id); err != nil {
			return err
		}
		return enc.Encode(struct {
			ID      uuid.UUID `json:"id"`
			Deleted bool      `json:"deleted"`
		}{id, true})
	}
}

func parseRunID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid run id %q: %w", s, err)
	}
	return id, nil
}
