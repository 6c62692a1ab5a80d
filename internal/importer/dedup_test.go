// Tests for keyed row deduplication.

package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"crmconsole/internal/rowmap"
)

// TestDedupRows verifies keep-first semantics with normalized comparison.
func TestDedupRows(t *testing.T) {
	t.Parallel()

	rows := []rowmap.Row{
		{"Email": "a@example.com", "Name": "first"},
		{"Email": " A@Example.COM ", "Name": "duplicate of first"},
		{"Email": "b@example.com", "Name": "second"},
		{"Email": "", "Name": "kept, empty key"},
		{"Email": "", "Name": "also kept, empty key"},
		{"Email": "b@example.com", "Name": "duplicate of second"},
	}

	kept, keptIdx, dropped := DedupRows(rows, "Email")
	if dropped != 2 {
		t.Fatalf("expected 2 dropped, got %d", dropped)
	}
	if len(kept) != 4 {
		t.Fatalf("expected 4 kept, got %d", len(kept))
	}
	if kept[0]["Name"] != "first" || kept[1]["Name"] != "second" {
		t.Fatalf("keep-first violated: %v", kept)
	}
	want := []int{0, 2, 3, 4}
	if len(keptIdx) != len(want) {
		t.Fatalf("expected indexes %v, got %v", want, keptIdx)
	}
	for i, idx := range want {
		if keptIdx[i] != idx {
			t.Fatalf("expected indexes %v, got %v", want, keptIdx)
		}
	}
}

// TestDedupRows_SourceAttribution verifies a run over deduplicated rows still
// reports outcomes against pre-dedup row numbers.
func TestDedupRows_SourceAttribution(t *testing.T) {
	t.Parallel()

	rows := []rowmap.Row{
		{"Email": "a@example.com"},
		{"Email": "a@example.com"},
		{"Email": "bad@example.com"},
	}
	kept, keptIdx, dropped := DedupRows(rows, "Email")
	if dropped != 1 || len(kept) != 2 {
		t.Fatalf("expected 1 dropped 2 kept, got %d dropped %d kept", dropped, len(kept))
	}

	items := make([]map[string]string, len(kept))
	for i, row := range kept {
		items[i] = map[string]string{"email": row["Email"]}
	}

	r := &Runner{
		BatchCreate: func(ctx context.Context, inputs []map[string]string) ([]string, error) {
			return nil, errors.New("batch rejected")
		},
		CreateOne: func(ctx context.Context, props map[string]string) (string, error) {
			if props["email"] == "bad@example.com" {
				return "", errors.New("create down")
			}
			return "id-1", nil
		},
		SourceIndex: keptIdx,
		sleep:       func(ctx context.Context, d time.Duration) error { return nil },
	}
	summary := r.Run(context.Background(), items)

	if len(summary.Errors) != 1 {
		t.Fatalf("expected 1 error, got %+v", summary.Errors)
	}
	// The bad row is item 1 after dedup but row index 2 in the source,
	// displayed as spreadsheet row 4.
	if summary.Errors[0].Row != DisplayRow(2) {
		t.Fatalf("expected failure at row %d, got %d", DisplayRow(2), summary.Errors[0].Row)
	}
}

// TestDedupRows_Disabled verifies an empty key column passes rows through.
func TestDedupRows_Disabled(t *testing.T) {
	t.Parallel()

	rows := []rowmap.Row{
		{"Email": "a@example.com"},
		{"Email": "a@example.com"},
	}
	kept, keptIdx, dropped := DedupRows(rows, "")
	if dropped != 0 || len(kept) != 2 {
		t.Fatalf("expected passthrough, got %d kept %d dropped", len(kept), dropped)
	}
	if len(keptIdx) != 2 || keptIdx[0] != 0 || keptIdx[1] != 1 {
		t.Fatalf("expected identity indexes, got %v", keptIdx)
	}
}
