// Tests for summary rendering and outcome aggregation.

package importer

import (
	"strings"
	"testing"
)

// TestSummaryLine verifies the partitioned summary line omits zero-count
// categories except for the all-zero case.
func TestSummaryLine(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		s    Summary
		want string
	}{
		{"all clean", Summary{Total: 5, Completed: 5}, "5 succeeded"},
		{
			"mixed",
			Summary{Total: 10, Completed: 10, Failed: 2, Warned: 3},
			"5 succeeded, 3 succeeded with skipped fields, 2 failed",
		},
		{"only failures", Summary{Total: 4, Completed: 4, Failed: 4}, "4 failed"},
		{"only warnings", Summary{Total: 2, Completed: 2, Warned: 2}, "2 succeeded with skipped fields"},
		{"empty run", Summary{}, "0 succeeded"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.s.Line(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

// TestAggregatorRecord verifies counting, the warning message format, and
// snapshot isolation from later mutation.
func TestAggregatorRecord(t *testing.T) {
	t.Parallel()

	agg := newAggregator("test", 3)
	agg.record([]RowOutcome{
		{Row: 2, Status: StatusCreated, ID: "a"},
		{Row: 3, Status: StatusWarning, ID: "b", SkippedFields: []string{"phone", "city"}},
		{Row: 4, Status: StatusFailed, Err: "bad record"},
	}, nil)

	snap := agg.snapshot()
	if snap.Completed != 3 || snap.Failed != 1 || snap.Warned != 1 {
		t.Fatalf("unexpected counts: %+v", snap)
	}
	if len(snap.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(snap.Warnings))
	}
	want := "Sent successfully, however had to skip invalid properties: phone, city"
	if snap.Warnings[0].Row != 3 || snap.Warnings[0].Message != want {
		t.Fatalf("unexpected warning: %+v", snap.Warnings[0])
	}
	if len(snap.Errors) != 1 || snap.Errors[0].Row != 4 || snap.Errors[0].Message != "bad record" {
		t.Fatalf("unexpected errors: %+v", snap.Errors)
	}

	// A snapshot must not observe later records.
	agg.record([]RowOutcome{{Row: 5, Status: StatusFailed, Err: "late"}}, nil)
	if len(snap.Errors) != 1 {
		t.Fatalf("snapshot mutated by later record: %+v", snap.Errors)
	}
	for _, e := range snap.Errors {
		if strings.Contains(e.Message, "late") {
			t.Fatalf("snapshot leaked later error: %+v", e)
		}
	}
}

// TestAggregatorProgressUnderLock verifies the callback sees each batch's
// snapshot exactly once with consistent totals.
func TestAggregatorProgressUnderLock(t *testing.T) {
	t.Parallel()

	var seen []int
	agg := newAggregator("test", 4)
	onProgress := func(s Summary) { seen = append(seen, s.Completed) }

	agg.record([]RowOutcome{{Row: 2, Status: StatusCreated}}, onProgress)
	agg.record([]RowOutcome{{Row: 3, Status: StatusCreated}, {Row: 4, Status: StatusCreated}}, onProgress)

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 3 {
		t.Fatalf("expected completed counts [1 3], got %v", seen)
	}
}
