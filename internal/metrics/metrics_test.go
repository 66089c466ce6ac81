// internal/metrics/metrics_test.go
package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tamzrod/solax-monitor/internal/alert"
	"github.com/tamzrod/solax-monitor/internal/status"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObservePoll(nil, time.Now())
	m.ObserveSnapshot(status.Snapshot{})
	m.ObserveGuardCheck(errors.New("x"))
	m.ObserveTransition(alert.State{}, alert.State{})
	m.ObserveAction(alert.KindSendAlert, nil)
}

func TestObservePoll(t *testing.T) {
	m := New(prometheus.NewRegistry())

	at := time.Unix(1700000000, 0)
	m.ObservePoll(nil, at)
	m.ObservePoll(nil, at)
	m.ObservePoll(errors.New("timeout"), at.Add(time.Minute))

	if got := testutil.ToFloat64(m.pollsTotal.WithLabelValues("ok")); got != 2 {
		t.Fatalf("ok polls = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.pollsTotal.WithLabelValues("error")); got != 1 {
		t.Fatalf("error polls = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.lastPollTime); got != 1700000000 {
		t.Fatalf("last poll = %v, failed poll must not advance it", got)
	}
}

func TestObserveSnapshot(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveSnapshot(status.Snapshot{
		SolarW:           2000,
		BatteryPct:       64,
		BatteryPowerW:    500,
		BatteryDirection: status.BatteryDischarging,
		GridPowerW:       200,
		GridDirection:    status.GridImporting,
		HomeConsumptionW: 1500,
	})

	if got := testutil.ToFloat64(m.solarWatts); got != 2000 {
		t.Fatalf("solar = %v", got)
	}
	if got := testutil.ToFloat64(m.batteryDirection); got != float64(status.BatteryDischarging) {
		t.Fatalf("battery direction = %v", got)
	}
	if got := testutil.ToFloat64(m.gridDirection); got != float64(status.GridImporting) {
		t.Fatalf("grid direction = %v", got)
	}
}

func TestObserveTransition(t *testing.T) {
	m := New(prometheus.NewRegistry())

	normal := alert.State{Phase: alert.PhaseNormal}
	tripped := alert.State{Phase: alert.PhaseShutdownTriggered, Incident: "a"}

	m.ObserveTransition(normal, tripped)
	m.ObserveTransition(tripped, tripped)

	if got := testutil.ToFloat64(m.incidentsTotal); got != 1 {
		t.Fatalf("incidents = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.guardTriggered); got != 1 {
		t.Fatalf("triggered = %v, want 1", got)
	}

	m.ObserveTransition(tripped, normal)
	if got := testutil.ToFloat64(m.guardTriggered); got != 0 {
		t.Fatalf("triggered = %v after recovery, want 0", got)
	}
}

func TestObserveAction(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveAction(alert.KindShutdownHosts, nil)
	m.ObserveAction(alert.KindShutdownHosts, errors.New("refused"))

	if got := testutil.ToFloat64(m.actionsTotal.WithLabelValues("shutdown_hosts", "error")); got != 1 {
		t.Fatalf("shutdown errors = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.actionsTotal); n != 2 {
		t.Fatalf("action series = %d, want 2", n)
	}
}
