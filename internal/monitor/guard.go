// internal/monitor/guard.go
package monitor

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/tamzrod/solax-monitor/internal/alert"
	"github.com/tamzrod/solax-monitor/internal/dispatch"
	"github.com/tamzrod/solax-monitor/internal/metrics"
	"github.com/tamzrod/solax-monitor/internal/status"
)

// Guard runs the alert loop: fetch -> evaluate -> dispatch.
// It owns the alert State; nothing else mutates it.
type Guard struct {
	interval time.Duration
	src      Source
	machine  *alert.Machine
	disp     dispatch.Dispatcher
	metrics  *metrics.Metrics

	state     alert.State
	iteration int
}

// NewGuard wires a guard. m may be nil.
func NewGuard(
	interval time.Duration,
	src Source,
	machine *alert.Machine,
	disp dispatch.Dispatcher,
	m *metrics.Metrics,
) (*Guard, error) {
	if interval <= 0 {
		return nil, errors.New("monitor: interval must be > 0")
	}
	if src == nil || machine == nil || disp == nil {
		return nil, errors.New("monitor: source, machine and dispatcher required")
	}
	return &Guard{
		interval: interval,
		src:      src,
		machine:  machine,
		disp:     disp,
		metrics:  m,
		state:    alert.State{Phase: alert.PhaseNormal},
	}, nil
}

// State returns the current alert state.
func (g *Guard) State() alert.State { return g.state }

// Step performs one monitoring iteration.
// A failed fetch skips evaluation and leaves the state untouched.
func (g *Guard) Step(ctx context.Context) error {
	g.iteration++
	log.Printf("=== monitoring iteration %d ===", g.iteration)

	rec, err := g.src.Fetch(ctx)
	g.metrics.ObserveGuardCheck(err)
	if err != nil {
		log.Printf("status fetch failed: %v", err)
		return err
	}

	snap := status.Parse(rec)
	logStatus(rec, snap)

	prev := g.state
	next, intents := g.machine.Evaluate(prev, snap)

	switch {
	case !prev.Triggered() && next.Triggered():
		log.Printf("CRITICAL: all shutdown conditions met (incident=%s)", next.Incident)
	case prev.Triggered() && !next.Triggered():
		log.Printf("conditions normalized (incident=%s)", prev.Incident)
	case next.Triggered():
		log.Printf("shutdown already triggered, waiting for conditions to normalize (incident=%s)", next.Incident)
	}

	for _, in := range intents {
		err := g.disp.Dispatch(ctx, in)
		g.metrics.ObserveAction(in.Kind, err)
		if err != nil {
			log.Printf("dispatch %s failed (incident=%s): %v", in.Kind, in.Incident, err)
		}
	}

	g.metrics.ObserveTransition(prev, next)
	g.state = next
	return nil
}

// Run steps immediately, then once per interval, until ctx ends.
func (g *Guard) Run(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		_ = g.Step(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func logStatus(rec status.Record, snap status.Snapshot) {
	c := alert.Check(snap)
	log.Printf(
		"status: solar=%s battery=%s battery_status=%s battery_power=%s grid_status=%s grid_power=%s home=%s",
		rec.SolarPanels, rec.Batteries, rec.BatteryStatus, rec.BatteryPower,
		rec.GridStatus, rec.GridPower, rec.HomeConsumption,
	)
	log.Printf(
		"checks: grid_offline=%t solar_short=%t (%g < %g) battery_low=%t (%g < %g)",
		c.GridOffline,
		c.SolarShort, snap.SolarW, snap.HomeConsumptionW,
		c.BatteryLow, snap.BatteryPct, alert.CriticalBatteryPct,
	)
}
