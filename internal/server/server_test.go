// Tests for the HTTP console surface, focusing on:
//   - Envelope shape and correlation ID propagation.
//   - The batch-create route's size ceiling and fallback semantics.
//   - CSV import upload, background run, and progress polling.

package server

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"crmconsole/internal/config"
	"crmconsole/internal/hubspot"
	"crmconsole/internal/importer"
	"crmconsole/internal/sheets"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testServer(t *testing.T, hubHandler http.HandlerFunc) (*Server, http.Handler) {
	t.Helper()
	backend := httptest.NewServer(hubHandler)
	t.Cleanup(backend.Close)

	cfg := config.LoadFrom(flag.NewFlagSet("test", flag.ContinueOnError), func(string) string { return "" })
	cfg.FallbackPause = time.Millisecond

	hub := hubspot.New(hubspot.Config{Token: "test", BaseURL: backend.URL})
	gs := sheets.New(sheets.Config{Token: "test", DriveURL: backend.URL, SheetsURL: backend.URL})
	srv := NewWithClients(cfg, hub, gs)
	return srv, srv.Router()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

// TestHealth_EnvelopeAndCorrelation verifies the response envelope and that
// a caller-supplied correlation ID is echoed.
func TestHealth_EnvelopeAndCorrelation(t *testing.T) {
	t.Parallel()

	_, router := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/hubspot/health", nil)
	req.Header.Set("x-correlation-id", "corr-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.OK || env.Operation != "hubspot.health" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.CorrelationID != "corr-42" {
		t.Fatalf("correlation id not echoed: %q", env.CorrelationID)
	}
	if got := rec.Header().Get("x-correlation-id"); got != "corr-42" {
		t.Fatalf("correlation header missing: %q", got)
	}
}

// TestHealth_MintsCorrelationID verifies a correlation ID is generated when
// the caller sends none.
func TestHealth_MintsCorrelationID(t *testing.T) {
	t.Parallel()

	_, router := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hubspot/health", nil))
	if env := decodeEnvelope(t, rec); env.CorrelationID == "" {
		t.Fatal("expected a minted correlation id")
	}
}

// TestBatchCreate_SizeCeiling verifies more than 100 inputs is rejected
// before any upstream call.
func TestBatchCreate_SizeCeiling(t *testing.T) {
	t.Parallel()

	var hits int32
	_, router := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	var body struct {
		Inputs []propertiesBody `json:"inputs"`
	}
	for i := 0; i < 101; i++ {
		body.Inputs = append(body.Inputs, propertiesBody{Properties: map[string]string{"name": "x"}})
	}
	payload, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/hubspot/contacts/batch-create", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.OK || !strings.Contains(env.Error, "100") {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatal("upstream must not be called for oversized batches")
	}
}

// TestBatchCreate_FallbackSemantics verifies a failed batch call degrades
// to per-item creates and the summary reports the one bad row.
func TestBatchCreate_FallbackSemantics(t *testing.T) {
	t.Parallel()

	_, router := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/batch/create") {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"batch rejected"}`))
			return
		}
		var body struct {
			Properties map[string]string `json:"properties"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Properties["name"] == "bad" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"no good"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"created"}`))
	})

	var body struct {
		Inputs []propertiesBody `json:"inputs"`
	}
	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("company-%d", i)
		if i == 1 {
			name = "bad"
		}
		body.Inputs = append(body.Inputs, propertiesBody{Properties: map[string]string{"name": name}})
	}
	payload, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/hubspot/companies/batch-create", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	raw, _ := json.Marshal(env.Data)
	var summary importer.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Completed != 3 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	// Item index 1 is spreadsheet row 3.
	if len(summary.Errors) != 1 || summary.Errors[0].Row != 3 {
		t.Fatalf("unexpected errors: %+v", summary.Errors)
	}
}

// TestImport_UploadAndProgress verifies the CSV upload starts a run and the
// progress endpoint eventually reports it done.
func TestImport_UploadAndProgress(t *testing.T) {
	t.Parallel()

	_, router := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"id":"1"},{"id":"2"}]}`))
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "leads.csv")
	_, _ = fw.Write([]byte("Business,Number\nAcme,555\nBeta,556\nAcme,999\n"))
	_ = mw.WriteField("objectType", "contacts")
	_ = mw.WriteField("dedupeColumn", "Business")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	jobID, _ := data["jobId"].(string)
	if jobID == "" {
		t.Fatalf("expected a job id, got %v", env.Data)
	}
	if got := data["droppedDuplicates"].(float64); got != 1 {
		t.Fatalf("expected 1 dropped duplicate, got %v", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/import/"+jobID, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("progress: expected 200, got %d", rec.Code)
		}
		var status jobStatus
		raw, _ := json.Marshal(decodeEnvelope(t, rec).Data)
		if err := json.Unmarshal(raw, &status); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if status.State == importer.StateDone {
			if status.Summary.Completed != 2 || status.Summary.Failed != 0 {
				t.Fatalf("unexpected final summary: %+v", status.Summary)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("run did not finish, last state %s", status.State)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestImport_UnknownJob verifies polling a missing job returns 404.
func TestImport_UnknownJob(t *testing.T) {
	t.Parallel()

	_, router := testServer(t, func(w http.ResponseWriter, r *http.Request) {})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/import/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

// TestSheetData_RequiresSheetParam verifies the data route validates its
// query parameter before calling out.
func TestSheetData_RequiresSheetParam(t *testing.T) {
	t.Parallel()

	_, router := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no upstream call expected")
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/google-sheets/ss1/data", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
