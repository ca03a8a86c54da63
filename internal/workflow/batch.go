package workflow

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchResult pairs the outcome of one batch input with its position.
type BatchResult struct {
	Index  int     `json:"index"`
	Record *Record `json:"record,omitempty"`
	Err    error   `json:"-"`
}

// RunBatch runs every input through the workflow with at most
// Runtime.Concurrency runs in flight. Runs are independent: one input's
// failure does not cancel the others. Results are returned in input order.
func (o *Orchestrator) RunBatch(ctx context.Context, inputs []Input) []BatchResult {
	results := make([]BatchResult, len(inputs))

	var g errgroup.Group
	g.SetLimit(o.rt.Concurrency)

	for i, in := range inputs {
		g.Go(func() error {
			rec, err := o.Run(ctx, in)
			results[i] = BatchResult{Index: i, Record: rec, Err: err}
			return nil
		})
	}

	g.Wait()

	o.rt.Logger.InfoContext(
		ctx, "batch complete",
		"runs", len(inputs),
		"concurrency", o.rt.Concurrency,
	)

	return results
}
