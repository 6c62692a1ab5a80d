package importer

import (
	"fmt"
	"strings"
	"sync"

	"crmconsole/internal/metrics"
)

// RowNote is one user-facing detail line: row number plus message.
type RowNote struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Summary is the running aggregate of an import. Completed counts rows that
// have finished processing regardless of per-row status and only ever
// increases; Warnings and Errors list details in completion order (row
// numbers, not arrival order, identify the source rows).
type Summary struct {
	Total     int       `json:"total"`
	Completed int       `json:"completed"`
	Failed    int       `json:"failed"`
	Warned    int       `json:"warned"`
	Warnings  []RowNote `json:"warnings"`
	Errors    []RowNote `json:"errors"`
}

// Line renders the end-of-run summary, partitioning completed rows into
// clean successes, warned successes, and failures. Zero-count categories are
// omitted unless everything is zero.
func (s Summary) Line() string {
	clean := s.Completed - s.Failed - s.Warned
	var parts []string
	if clean > 0 {
		parts = append(parts, fmt.Sprintf("%d succeeded", clean))
	}
	if s.Warned > 0 {
		parts = append(parts, fmt.Sprintf("%d succeeded with skipped fields", s.Warned))
	}
	if s.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", s.Failed))
	}
	if len(parts) == 0 {
		return "0 succeeded"
	}
	return strings.Join(parts, ", ")
}

// aggregator accumulates outcomes from concurrently completing batches.
type aggregator struct {
	mu      sync.Mutex
	summary Summary
	job     string
}

func newAggregator(job string, total int) *aggregator {
	return &aggregator{summary: Summary{Total: total}, job: job}
}

// record folds one batch's outcomes into the summary and, while still
// holding the lock, hands a snapshot to onProgress. Running the callback
// under the lock keeps mutation and notification on the same execution
// context, so observers never see a torn summary and callbacks never
// interleave.
func (a *aggregator) record(outcomes []RowOutcome, onProgress func(Summary)) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.summary.Completed += len(outcomes)
	for _, out := range outcomes {
		switch out.Status {
		case StatusFailed:
			a.summary.Failed++
			a.summary.Errors = append(a.summary.Errors, RowNote{Row: out.Row, Message: out.Err})
		case StatusWarning:
			a.summary.Warned++
			a.summary.Warnings = append(a.summary.Warnings, RowNote{
				Row:     out.Row,
				Message: "Sent successfully, however had to skip invalid properties: " + strings.Join(out.SkippedFields, ", "),
			})
		}
		metrics.RecordRow(a.job, string(out.Status), 1)
	}
	metrics.RecordBatches(a.job, 1)

	if onProgress != nil {
		onProgress(a.summary.clone())
	}
}

func (a *aggregator) snapshot() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.summary.clone()
}

// clone copies the slices so snapshots stay stable after release.
func (s Summary) clone() Summary {
	out := s
	out.Warnings = append([]RowNote(nil), s.Warnings...)
	out.Errors = append([]RowNote(nil), s.Errors...)
	return out
}
