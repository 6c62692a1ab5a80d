package importer

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many batches are in flight at once.
const DefaultConcurrency = 6

// DefaultBatchSize is the number of property sets per batch call; it is also
// the hard ceiling the CRM enforces.
const DefaultBatchSize = 100

// Runner schedules a full import: it partitions the input into batches,
// runs a fixed worker pool over them, and aggregates per-row outcomes as
// batches complete. A Runner is intended for a single Run call.
type Runner struct {
	// BatchCreate and CreateOne are the two CRM collaborators. CreateOne is
	// only invoked when a batch call fails and items fall back to
	// individual creates.
	BatchCreate BatchCreateFunc
	CreateOne   CreateFunc

	// Concurrency bounds in-flight batches; 0 means DefaultConcurrency.
	Concurrency int

	// BatchSize is items per batch; 0 means DefaultBatchSize, values above
	// DefaultBatchSize are clamped to it.
	BatchSize int

	// Pause is the courtesy delay inserted into fallback loops; 0 means 1s.
	Pause time.Duration

	// Job names the run in metrics; "" means "import".
	Job string

	// SourceIndex, when set, maps each item's position to its 0-based row
	// index in the original source, so dedup-dropped rows do not shift the
	// row numbers reported for the rows after them. Nil means positions are
	// source indexes already. Must be at least as long as the item slice.
	SourceIndex []int

	// OnProgress, when set, receives a summary snapshot after every batch
	// completes. It must be cheap and must not block; it is invoked from
	// worker goroutines under the aggregator's lock ordering, never
	// concurrently with itself.
	OnProgress func(Summary)

	// sleep overrides the fallback pause wait in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func (r *Runner) job() string {
	if r.Job == "" {
		return "import"
	}
	return r.Job
}

// Partition chunks items into consecutive batches of at most size, each
// tagged with its starting input index.
func Partition(items []map[string]string, size int) []Batch {
	if size <= 0 || size > DefaultBatchSize {
		size = DefaultBatchSize
	}
	var batches []Batch
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, Batch{Start: i, Items: items[i:end]})
	}
	return batches
}

// Run imports all items and returns the final summary. Workers claim batches
// through a shared cursor until none remain, so batch completion order is
// non-deterministic across workers; outcomes stay attributed by row number,
// not arrival order. Once started, every batch runs to completion, and each
// input row is counted exactly once.
func (r *Runner) Run(ctx context.Context, items []map[string]string) Summary {
	batches := Partition(items, r.BatchSize)

	agg := newAggregator(r.job(), len(items))
	if len(batches) == 0 {
		return agg.snapshot()
	}

	workers := r.Concurrency
	if workers <= 0 {
		workers = DefaultConcurrency
	}
	if workers > len(batches) {
		workers = len(batches)
	}

	var cursor atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				idx := int(cursor.Add(1)) - 1
				if idx >= len(batches) {
					return nil
				}
				outcomes := r.submitBatch(ctx, batches[idx])
				agg.record(outcomes, r.OnProgress)
			}
		})
	}
	// Workers convert every failure into row outcomes, so the group never
	// returns an error.
	_ = g.Wait()

	return agg.snapshot()
}
