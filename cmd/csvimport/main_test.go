// Tests for the CLI run() using injected Deps, keeping everything hermetic.

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"strings"
	"testing"

	"crmconsole/internal/config"
	"crmconsole/internal/hubspot"
	"crmconsole/internal/importer"
)

func testConfig(env map[string]string) *config.Config {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	return config.LoadFromArgs(fs, func(k string) string { return env[k] }, nil)
}

func fakeDeps(csv string, out io.Writer, batchErr error) Deps {
	return Deps{
		Open: func(path string) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(csv)), nil
		},
		NewRunner: func(cfg *config.Config, obj hubspot.ObjectType) *importer.Runner {
			return &importer.Runner{
				BatchCreate: func(ctx context.Context, inputs []map[string]string) ([]string, error) {
					if batchErr != nil {
						return nil, batchErr
					}
					return make([]string, len(inputs)), nil
				},
				CreateOne: func(ctx context.Context, props map[string]string) (string, error) {
					return "id", nil
				},
				Pause: 1, // effectively no pause in tests
			}
		},
		Out: out,
	}
}

// TestRun_Success verifies a clean import prints the summary line.
func TestRun_Success(t *testing.T) {
	var out bytes.Buffer
	cfg := testConfig(map[string]string{"HUBSPOT_ACCESS_TOKEN": "pat"})
	deps := fakeDeps("Business,Number\nAcme,555\nBeta,556\n", &out, nil)

	if err := run(context.Background(), cfg, "leads.csv", "contacts", deps); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "2 succeeded" {
		t.Fatalf("expected summary line, got %q", got)
	}
}

// TestRun_MissingToken verifies the credential precondition.
func TestRun_MissingToken(t *testing.T) {
	cfg := testConfig(nil)
	err := run(context.Background(), cfg, "leads.csv", "contacts", fakeDeps("a,b\n1,2\n", io.Discard, nil))
	if err == nil || !strings.Contains(err.Error(), "token") {
		t.Fatalf("expected token error, got %v", err)
	}
}

// TestRun_UnknownObjectType verifies object type validation.
func TestRun_UnknownObjectType(t *testing.T) {
	cfg := testConfig(map[string]string{"HUBSPOT_ACCESS_TOKEN": "pat"})
	err := run(context.Background(), cfg, "leads.csv", "tickets", fakeDeps("a,b\n1,2\n", io.Discard, nil))
	if err == nil || !strings.Contains(err.Error(), "object type") {
		t.Fatalf("expected object type error, got %v", err)
	}
}

// TestRun_EmptyCSV verifies a header-only file is a fatal source error.
func TestRun_EmptyCSV(t *testing.T) {
	cfg := testConfig(map[string]string{"HUBSPOT_ACCESS_TOKEN": "pat"})
	err := run(context.Background(), cfg, "leads.csv", "contacts", fakeDeps("Business,Number\n", io.Discard, nil))
	if err == nil {
		t.Fatal("expected error for empty csv")
	}
}

// TestRun_OpenFailure verifies unreadable input paths surface as errors.
func TestRun_OpenFailure(t *testing.T) {
	cfg := testConfig(map[string]string{"HUBSPOT_ACCESS_TOKEN": "pat"})
	deps := fakeDeps("", io.Discard, nil)
	deps.Open = func(path string) (io.ReadCloser, error) {
		return nil, os.ErrNotExist
	}
	err := run(context.Background(), cfg, "missing.csv", "contacts", deps)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", err)
	}
}

// TestRun_FailuresListed verifies per-row failures are written after the
// summary line.
func TestRun_FailuresListed(t *testing.T) {
	var out bytes.Buffer
	cfg := testConfig(map[string]string{"HUBSPOT_ACCESS_TOKEN": "pat"})
	deps := fakeDeps("Business\nAcme\n", &out, errors.New("batch down"))
	deps.NewRunner = func(cfg *config.Config, obj hubspot.ObjectType) *importer.Runner {
		return &importer.Runner{
			BatchCreate: func(ctx context.Context, inputs []map[string]string) ([]string, error) {
				return nil, errors.New("batch down")
			},
			CreateOne: func(ctx context.Context, props map[string]string) (string, error) {
				return "", errors.New("create down")
			},
			Pause: 1,
		}
	}

	if err := run(context.Background(), cfg, "leads.csv", "contacts", deps); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "1 failed") {
		t.Fatalf("expected failure count, got %q", text)
	}
	if !strings.Contains(text, "row 2: create down") {
		t.Fatalf("expected row detail, got %q", text)
	}
}
