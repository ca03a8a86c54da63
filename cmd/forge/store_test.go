package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/forge/internal/runs"
	"github.com/JaimeStill/forge/internal/workflow"
)

type fakeStore struct {
	runs    map[uuid.UUID]runs.Run
	filters runs.Filters
}

func newFakeStore(list ...runs.Run) *fakeStore {
	s := &fakeStore{runs: map[uuid.UUID]runs.Run{}}
	for _, r := range list {
		s.runs[r.ID] = r
	}
	return s
}

func (s *fakeStore) Save(_ context.Context, rec *workflow.Record) (*runs.Run, error) {
	r, err := runs.FromRecord(rec)
	if err != nil {
		return nil, err
	}
	s.runs[r.ID] = r
	return &r, nil
}

func (s *fakeStore) Find(_ context.Context, id uuid.UUID) (*runs.Run, error) {
	r, ok := s.runs[id]
	if !ok {
		return nil, runs.ErrNotFound
	}
	return &r, nil
}

func (s *fakeStore) List(_ context.Context, filters runs.Filters) ([]runs.Run, error) {
	s.filters = filters
	var out []runs.Run
	for _, r := range s.runs {
		if filters.Outcome != nil && string(r.Outcome) != *filters.Outcome {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.runs[id]; !ok {
		return runs.ErrNotFound
	}
	delete(s.runs, id)
	return nil
}

func TestValidateStore(t *testing.T) {
	tests := []struct {
		name    string
		flags   flags
		wantErr bool
	}{
		{"workflow run", flags{task: "x"}, false},
		{"show", flags{show: "id"}, false},
		{"list", flags{list: true}, false},
		{"delete", flags{remove: "id"}, false},
		{"show and list", flags{show: "id", list: true}, true},
		{"list and delete", flags{list: true, remove: "id"}, true},
		{"show with task", flags{show: "id", task: "x"}, true},
		{"list with batch", flags{list: true, batch: "-"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.flags.validateStore()
			if tt.wantErr != (err != nil) {
				t.Errorf("validateStore error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunStoreShow(t *testing.T) {
	run := runs.Run{ID: uuid.New(), Task: "sum", Outcome: workflow.OutcomeValid}
	store := newFakeStore(run)

	var buf bytes.Buffer
	if err := runStore(context.Background(), &flags{show: run.ID.String()}, store, &buf); err != nil {
		t.Fatalf("runStore: %v", err)
	}

	var got runs.Run
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not a run: %v\n%s", err, buf.String())
	}
	if got.ID != run.ID || got.Task != "sum" {
		t.Errorf("run = %+v", got)
	}
}

func TestRunStoreList(t *testing.T) {
	store := newFakeStore(
		runs.Run{ID: uuid.New(), Outcome: workflow.OutcomeValid},
		runs.Run{ID: uuid.New(), Outcome: workflow.OutcomeExhausted},
	)

	var buf bytes.Buffer
	f := &flags{list: true, outcome: "exhausted", limit: 5}
	if err := runStore(context.Background(), f, store, &buf); err != nil {
		t.Fatalf("runStore: %v", err)
	}

	var got []runs.Run
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not a run list: %v", err)
	}
	if len(got) != 1 || got[0].Outcome != workflow.OutcomeExhausted {
		t.Errorf("runs = %+v", got)
	}
	if store.filters.Limit != 5 || store.filters.Outcome == nil {
		t.Errorf("filters = %+v", store.filters)
	}

	buf.Reset()
	if err := runStore(context.Background(), &flags{list: true, outcome: "cancelled"}, store, &buf); err != nil {
		t.Fatalf("runStore: %v", err)
	}
	if got := bytes.TrimSpace(buf.Bytes()); string(got) != "[]" {
		t.Errorf("empty list output = %s, want []", got)
	}
}

func TestRunStoreDelete(t *testing.T) {
	run := runs.Run{ID: uuid.New()}
	store := newFakeStore(run)

	var buf bytes.Buffer
	if err := runStore(context.Background(), &flags{remove: run.ID.String()}, store, &buf); err != nil {
		t.Fatalf("runStore: %v", err)
	}
	if _, ok := store.runs[run.ID]; ok {
		t.Error("run still stored after delete")
	}

	err := runStore(context.Background(), &flags{remove: run.ID.String()}, store, &buf)
	if !errors.Is(err, runs.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestRunStoreErrors(t *testing.T) {
	store := newFakeStore()

	tests := []struct {
		name  string
		flags flags
		store runs.System
		want  error
	}{
		{"no store", flags{list: true}, nil, errNoStore},
		{"missing run", flags{show: uuid.NewString()}, store, runs.ErrNotFound},
		{"bad id", flags{show: "not-a-uuid"}, store, nil},
		{"bad outcome", flags{list: true, outcome: "great"}, store, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := runStore(context.Background(), &tt.flags, tt.store, &buf)
			if err == nil {
				t.Fatal("runStore = nil, want error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
