package workflow_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/forge/internal/workflow"
)

func TestRunBatch(t *testing.T) {
	var inFlight, peak atomic.Int32
	base := scripted(happyResponses())

	gen := workflow.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return base.Generate(ctx, prompt)
	})

	o, err := workflow.New(&workflow.Runtime{
		Generator:   gen,
		Concurrency: 2,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	inputs := []workflow.Input{
		{Task: "first"},
		{Task: ""},
		{Task: "third", Format: "python"},
		{Task: "fourth"},
	}

	results := o.RunBatch(context.Background(), inputs)

	if len(results) != len(inputs) {
		t.Fatalf("len = %d, want %d", len(results), len(inputs))
	}

	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d has Index %d", i, r.Index)
		}
		if i == 1 {
			if !errors.Is(r.Err, workflow.ErrInvalidInput) || r.Record != nil {
				t.Errorf("result 1 = %+v, want invalid input", r)
			}
			continue
		}
		if r.Err != nil {
			t.Errorf("result %d: %v", i, r.Err)
			continue
		}
		if r.Record.Input.Task != inputs[i].Task {
			t.Errorf("result %d task = %q, want %q", i, r.Record.Input.Task, inputs[i].Task)
		}
		if !r.Record.IsValid {
			t.Errorf("result %d not valid", i)
		}
	}

	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", p)
	}
}
