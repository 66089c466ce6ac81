// internal/server/server_test.go
package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tamzrod/solax-monitor/internal/metrics"
	"github.com/tamzrod/solax-monitor/internal/registers"
	"github.com/tamzrod/solax-monitor/internal/status"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestStatus_InitialRecord(t *testing.T) {
	h := New(status.NewHolder(), Config{StaleAfter: time.Minute})

	rr := get(t, h, "/status")
	if rr.Code != http.StatusOK {
		t.Fatalf("code=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type=%q", ct)
	}

	var rec status.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec != status.Initial() {
		t.Fatalf("got %+v, want initial record", rec)
	}
}

func TestStatus_ServesLatest(t *testing.T) {
	holder := status.NewHolder()
	want := status.Encode(status.Snapshot{
		SolarW:           2000,
		BatteryPct:       64,
		BatteryDirection: status.BatteryIdle,
		GridDirection:    status.GridExporting,
		GridPowerW:       150,
	})
	holder.Publish(want, time.Now())

	rr := get(t, New(holder, Config{StaleAfter: time.Minute}), "/status")

	var got status.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if got.GridPower != "150.0W" || got.GridStatus != "Exporting" {
		t.Fatalf("unexpected grid fields %+v", got)
	}
}

func TestHealth(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	holder := status.NewHolder()
	h := New(holder, Config{
		StaleAfter: 3 * time.Minute,
		Now:        func() time.Time { return now },
	})

	if rr := get(t, h, "/health"); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("no data: code=%d want 503", rr.Code)
	}

	holder.Publish(status.Initial(), now.Add(-time.Minute))
	if rr := get(t, h, "/health"); rr.Code != http.StatusOK {
		t.Fatalf("fresh: code=%d want 200", rr.Code)
	}

	holder.Publish(status.Initial(), now.Add(-4*time.Minute))
	rr := get(t, h, "/health")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("stale: code=%d want 503", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "stale") {
		t.Fatalf("stale body=%q", rr.Body.String())
	}
}

func TestRegisters(t *testing.T) {
	m := registers.ForModel(registers.ModelX3HybridG4)
	rr := get(t, New(status.NewHolder(), Config{Map: m}), "/registers")

	var body struct {
		Model   string            `json:"model"`
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Model != string(registers.ModelX3HybridG4) {
		t.Fatalf("model=%q", body.Model)
	}
	if len(body.Entries) != m.Len() {
		t.Fatalf("entries=%d want %d", len(body.Entries), m.Len())
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg).ObserveSnapshot(status.Snapshot{SolarW: 1234})

	h := New(status.NewHolder(), Config{Gatherer: reg})
	rr := get(t, h, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("code=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "solax_solar_power_watts 1234") {
		t.Fatalf("missing solar gauge in:\n%s", rr.Body.String())
	}

	if rr := get(t, New(status.NewHolder(), Config{}), "/metrics"); rr.Code != http.StatusNotFound {
		t.Fatalf("metrics without gatherer: code=%d want 404", rr.Code)
	}

	if rr := get(t, MetricsOnly(reg), "/metrics"); rr.Code != http.StatusOK {
		t.Fatalf("metrics only: code=%d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := New(status.NewHolder(), Config{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/status", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("code=%d want 405", rr.Code)
	}
}
