package importer

import (
	"context"
	"time"

	"crmconsole/internal/metrics"
)

// fallbackPauseEvery inserts the courtesy pause after every Nth item of a
// per-item fallback loop. This is a fixed heuristic, not derived from
// rate-limit headers; the pause duration itself is configurable on Runner.
const fallbackPauseEvery = 9

// Batch is one chunk of at most 100 property sets, tagged with the 0-based
// input index of its first item so outcomes keep their original attribution
// through any fallback.
type Batch struct {
	Start int
	Items []map[string]string
}

// submitBatch submits one batch, degrading to per-item creates on any batch
// failure. The returned slice has exactly one outcome per item, in item
// order, each attributed to the item's original row.
//
// A batch-level failure (validation, rate limit, network) is never surfaced
// as a single error for the whole batch: every item is retried individually
// so one invalid record cannot fail its 99 siblings. The fallback loop
// pauses after every 9th item as a crude client-side rate-limit courtesy.
func (r *Runner) submitBatch(ctx context.Context, b Batch) []RowOutcome {
	outcomes := make([]RowOutcome, len(b.Items))

	start := time.Now()
	ids, err := r.BatchCreate(ctx, b.Items)
	metrics.RecordStep(r.job(), "batch_create", err, time.Since(start))
	if err == nil {
		for i := range b.Items {
			outcomes[i] = RowOutcome{Row: r.displayRow(b.Start + i), Status: StatusCreated}
			if i < len(ids) {
				outcomes[i].ID = ids[i]
			}
		}
		return outcomes
	}

	metrics.RecordBatchFallback(r.job())
	for i, props := range b.Items {
		if i > 0 && i%fallbackPauseEvery == 0 {
			if err := r.pause(ctx); err != nil {
				// Canceled mid-fallback: fail the remaining items rather
				// than dropping them, so every row still gets an outcome.
				for j := i; j < len(b.Items); j++ {
					outcomes[j] = RowOutcome{Row: r.displayRow(b.Start + j), Status: StatusFailed, Err: err.Error()}
				}
				return outcomes
			}
		}
		out := CreateWithRetry(ctx, r.CreateOne, props)
		out.Row = r.displayRow(b.Start + i)
		outcomes[i] = out
	}
	return outcomes
}

// displayRow resolves an item position to its user-facing row number,
// translating through SourceIndex when the caller deduplicated the input.
func (r *Runner) displayRow(pos int) int {
	if pos < len(r.SourceIndex) {
		return DisplayRow(r.SourceIndex[pos])
	}
	return DisplayRow(pos)
}

// pause waits the configured fallback pause, honoring cancellation.
func (r *Runner) pause(ctx context.Context) error {
	d := r.Pause
	if d <= 0 {
		d = time.Second
	}
	if r.sleep != nil {
		return r.sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
