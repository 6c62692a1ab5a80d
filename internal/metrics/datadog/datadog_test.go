// Tests for the Datadog statsd backend construction.

package datadog

import (
	"testing"

	"crmconsole/internal/metrics"
)

// TestNewBackend verifies a client is built with namespace and global tags
// applied through client options, and that emitting does not panic. DogStatsD
// is fire-and-forget UDP, so no agent is needed.
func TestNewBackend(t *testing.T) {
	t.Parallel()

	b, err := NewBackend(Config{
		Addr:       "127.0.0.1:8125",
		Namespace:  "crmconsole.",
		GlobalTags: []string{"env:test"},
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter("rows_total", 2, metrics.Labels{"status": "created"})
	b.ObserveHistogram("step_seconds", 0.25, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

// TestNewBackend_RequiresAddr verifies the empty-address guard.
func TestNewBackend_RequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{}); err == nil {
		t.Fatal("expected error for empty Addr")
	}
}
