// Package importer implements the bulk batch-import pipeline: chunked batch
// submission with bounded concurrency, automatic degradation from batch
// creation to per-record calls, property-removal retry to salvage records
// with one bad field, and incremental aggregation of per-row outcomes.
//
// The pipeline never owns the CRM semantics; it drives two function-shaped
// collaborators (one-record create, batch create) and reports what happened
// to every input row. A row is never silently dropped: N rows in, exactly N
// outcomes out.
package importer

import "context"

// Status is the terminal state recorded for one input row.
type Status string

const (
	// StatusCreated means the record was created with its full property set.
	StatusCreated Status = "created"
	// StatusWarning means the record was created after skipping one or more
	// invalid properties.
	StatusWarning Status = "warning"
	// StatusFailed means no record was created for the row.
	StatusFailed Status = "failed"
)

// State is the lifecycle of one import run.
type State string

const (
	StateIdle      State = "idle"
	StateParsing   State = "parsing"
	StateUploading State = "uploading"
	StateDone      State = "done"
	StateError     State = "error"
)

// CreateFunc creates a single record from a property set and returns the new
// object ID.
type CreateFunc func(ctx context.Context, props map[string]string) (string, error)

// BatchCreateFunc creates up to 100 records in one call, returning the new
// object IDs in input order. Any error means the entire batch failed; no
// partial success is assumed.
type BatchCreateFunc func(ctx context.Context, inputs []map[string]string) ([]string, error)

// RowOutcome is the terminal result for one input row.
type RowOutcome struct {
	// Row is the user-facing row number: original 0-based index + 2
	// (one for the header row, one for 1-based spreadsheet counting).
	Row int `json:"row"`

	Status Status `json:"status"`

	// ID is the created object ID when Status is created or warning.
	ID string `json:"id,omitempty"`

	// SkippedFields lists the properties removed to salvage the create.
	// Set only when Status is warning.
	SkippedFields []string `json:"skippedFields,omitempty"`

	// Err is the failure message. Set only when Status is failed.
	Err string `json:"error,omitempty"`
}

// DisplayRow converts a 0-based input index to the row number shown to the
// user in the source spreadsheet.
func DisplayRow(index int) int { return index + 2 }
