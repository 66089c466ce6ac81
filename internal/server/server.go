// internal/server/server.go
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tamzrod/solax-monitor/internal/registers"
	"github.com/tamzrod/solax-monitor/internal/status"
)

type Config struct {
	// StaleAfter is how old the last published record may be
	// before /health reports unavailable.
	StaleAfter time.Duration

	Map      registers.Map
	Gatherer prometheus.Gatherer // nil disables /metrics

	// Now is overridable for tests.
	Now func() time.Time
}

type server struct {
	cfg    Config
	holder *status.Holder
}

// New returns the status daemon's HTTP surface.
// The holder is read-only from here.
func New(h *status.Holder, cfg Config) http.Handler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &server{cfg: cfg, holder: h}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /registers", s.handleRegisters)
	if cfg.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// MetricsOnly serves /metrics alone (guard daemon).
func MetricsOnly(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return mux
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	rec, _ := s.holder.Latest()
	writeJSON(w, http.StatusOK, rec)
}

type healthBody struct {
	Status     string `json:"status"`
	LastUpdate string `json:"last_update,omitempty"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, at := s.holder.Latest()

	if at.IsZero() {
		writeJSON(w, http.StatusServiceUnavailable, healthBody{Status: "no data"})
		return
	}

	body := healthBody{LastUpdate: at.UTC().Format(time.RFC3339)}
	if s.cfg.Now().Sub(at) > s.cfg.StaleAfter {
		body.Status = "stale"
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	body.Status = "ok"
	writeJSON(w, http.StatusOK, body)
}

func (s *server) handleRegisters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Map)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encode response failed: %v", err)
	}
}
