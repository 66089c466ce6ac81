// internal/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tamzrod/solax-monitor/internal/alert"
	"github.com/tamzrod/solax-monitor/internal/status"
)

const namespace = "solax"

const (
	resultOK    = "ok"
	resultError = "error"
)

// Metrics holds every collector both daemons export.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	pollsTotal   *prometheus.CounterVec
	lastPollTime prometheus.Gauge

	solarWatts       prometheus.Gauge
	batteryPercent   prometheus.Gauge
	batteryWatts     prometheus.Gauge
	batteryDirection prometheus.Gauge
	gridWatts        prometheus.Gauge
	gridDirection    prometheus.Gauge
	homeWatts        prometheus.Gauge

	guardChecksTotal *prometheus.CounterVec
	guardTriggered   prometheus.Gauge
	incidentsTotal   prometheus.Counter
	actionsTotal     *prometheus.CounterVec
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		pollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Inverter poll cycles by result.",
		}, []string{"result"}),
		lastPollTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_successful_poll_timestamp_seconds",
			Help:      "Unix time of the last successful inverter poll.",
		}),
		solarWatts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "solar_power_watts",
			Help:      "Total PV power.",
		}),
		batteryPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "battery_capacity_percent",
			Help:      "Battery remaining capacity.",
		}),
		batteryWatts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "battery_power_watts",
			Help:      "Battery power magnitude.",
		}),
		batteryDirection: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "battery_direction",
			Help:      "0=unknown 1=idle 2=charging 3=discharging.",
		}),
		gridWatts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "grid_power_watts",
			Help:      "Grid power magnitude.",
		}),
		gridDirection: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "grid_direction",
			Help:      "0=unknown 1=idle 2=exporting 3=importing.",
		}),
		homeWatts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "home_consumption_watts",
			Help:      "Load/generator power.",
		}),
		guardChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "guard",
			Name:      "checks_total",
			Help:      "Guard status fetches by result.",
		}, []string{"result"}),
		guardTriggered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "guard",
			Name:      "shutdown_triggered",
			Help:      "1 while a shutdown incident is open.",
		}),
		incidentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "guard",
			Name:      "incidents_total",
			Help:      "Critical episodes that triggered a shutdown.",
		}),
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "guard",
			Name:      "actions_total",
			Help:      "Dispatched intents by kind and result.",
		}, []string{"kind", "result"}),
	}

	reg.MustRegister(
		m.pollsTotal,
		m.lastPollTime,
		m.solarWatts,
		m.batteryPercent,
		m.batteryWatts,
		m.batteryDirection,
		m.gridWatts,
		m.gridDirection,
		m.homeWatts,
		m.guardChecksTotal,
		m.guardTriggered,
		m.incidentsTotal,
		m.actionsTotal,
	)
	return m
}

// ---- telemetry daemon ----

func (m *Metrics) ObservePoll(err error, at time.Time) {
	if m == nil {
		return
	}
	if err != nil {
		m.pollsTotal.WithLabelValues(resultError).Inc()
		return
	}
	m.pollsTotal.WithLabelValues(resultOK).Inc()
	m.lastPollTime.Set(float64(at.Unix()))
}

func (m *Metrics) ObserveSnapshot(s status.Snapshot) {
	if m == nil {
		return
	}
	m.solarWatts.Set(s.SolarW)
	m.batteryPercent.Set(s.BatteryPct)
	m.batteryWatts.Set(s.BatteryPowerW)
	m.batteryDirection.Set(float64(s.BatteryDirection))
	m.gridWatts.Set(s.GridPowerW)
	m.gridDirection.Set(float64(s.GridDirection))
	m.homeWatts.Set(s.HomeConsumptionW)
}

// ---- guard daemon ----

func (m *Metrics) ObserveGuardCheck(err error) {
	if m == nil {
		return
	}
	m.guardChecksTotal.WithLabelValues(result(err)).Inc()
}

// ObserveTransition records the state the guard moved into.
func (m *Metrics) ObserveTransition(prev, next alert.State) {
	if m == nil {
		return
	}
	if next.Triggered() {
		m.guardTriggered.Set(1)
	} else {
		m.guardTriggered.Set(0)
	}
	if !prev.Triggered() && next.Triggered() {
		m.incidentsTotal.Inc()
	}
}

func (m *Metrics) ObserveAction(kind alert.Kind, err error) {
	if m == nil {
		return
	}
	m.actionsTotal.WithLabelValues(kind.String(), result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}
