// internal/monitor/source.go
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tamzrod/solax-monitor/internal/status"
)

const maxStatusBody = 64 << 10

// Source yields the current status record.
type Source interface {
	Fetch(ctx context.Context) (status.Record, error)
}

// HTTPSource reads the telemetry daemon's /status endpoint.
type HTTPSource struct {
	url  string
	http *http.Client
}

func NewHTTPSource(url string, timeout time.Duration) (*HTTPSource, error) {
	if url == "" {
		return nil, errors.New("monitor: status url required")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSource{url: url, http: &http.Client{Timeout: timeout}}, nil
}

// Fetch returns an error for transport failures, non-200 replies
// and records with a field absent or null. An empty field is passed
// through; parsing reads it as 0.
func (s *HTTPSource) Fetch(ctx context.Context) (status.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return status.Record{}, fmt.Errorf("monitor: build request: %w", err)
	}

	res, err := s.http.Do(req)
	if err != nil {
		return status.Record{}, fmt.Errorf("monitor: get %s: %w", s.url, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxStatusBody))
	if err != nil {
		return status.Record{}, fmt.Errorf("monitor: read body: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return status.Record{}, fmt.Errorf("monitor: %s returned status %d", s.url, res.StatusCode)
	}

	var w wireRecord
	if err := json.Unmarshal(body, &w); err != nil {
		return status.Record{}, fmt.Errorf("monitor: decode status: %w", err)
	}
	return w.record()
}

// wireRecord tells an absent field (nil) from an empty one.
type wireRecord struct {
	SolarPanels     *string `json:"solar_panels"`
	Batteries       *string `json:"batteries"`
	BatteryStatus   *string `json:"battery_status"`
	BatteryPower    *string `json:"battery_power"`
	GridStatus      *string `json:"grid_status"`
	GridPower       *string `json:"grid_power"`
	HomeConsumption *string `json:"home_consumption"`
}

func (w wireRecord) record() (status.Record, error) {
	var rec status.Record
	fields := []struct {
		name string
		src  *string
		dst  *string
	}{
		{"solar_panels", w.SolarPanels, &rec.SolarPanels},
		{"batteries", w.Batteries, &rec.Batteries},
		{"battery_status", w.BatteryStatus, &rec.BatteryStatus},
		{"battery_power", w.BatteryPower, &rec.BatteryPower},
		{"grid_status", w.GridStatus, &rec.GridStatus},
		{"grid_power", w.GridPower, &rec.GridPower},
		{"home_consumption", w.HomeConsumption, &rec.HomeConsumption},
	}
	for _, f := range fields {
		if f.src == nil {
			return status.Record{}, fmt.Errorf("monitor: status field %s missing", f.name)
		}
		*f.dst = *f.src
	}
	return rec, nil
}
