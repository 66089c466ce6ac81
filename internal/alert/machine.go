// internal/alert/machine.go
package alert

import (
	"github.com/google/uuid"

	"github.com/tamzrod/solax-monitor/internal/status"
)

// CriticalBatteryPct is the battery level below which the site is at risk.
const CriticalBatteryPct = 10.0

// Checks holds the individual terms of the critical predicate.
type Checks struct {
	GridOffline bool // grid power exactly 0
	SolarShort  bool // solar below home consumption
	BatteryLow  bool // battery below CriticalBatteryPct
}

// Critical is true only when every term holds.
func (c Checks) Critical() bool {
	return c.GridOffline && c.SolarShort && c.BatteryLow
}

// Check evaluates the predicate terms for one snapshot.
// Grid offline is exact equality with 0; no noise tolerance is applied.
func Check(s status.Snapshot) Checks {
	return Checks{
		GridOffline: s.GridPowerW == 0.0,
		SolarShort:  s.SolarW < s.HomeConsumptionW,
		BatteryLow:  s.BatteryPct < CriticalBatteryPct,
	}
}

// Machine is the shutdown/recovery state machine.
// It holds configuration only; the State is owned by the caller.
// No IO.
type Machine struct {
	targets     Targets
	newIncident func() string
}

// New creates a machine acting on targets.
func New(targets Targets) *Machine {
	return &Machine{
		targets:     targets,
		newIncident: uuid.NewString,
	}
}

// Evaluate advances s by one cycle and returns the next state with the intents it emits.
// At most one transition fires per call.
func (m *Machine) Evaluate(s State, snap status.Snapshot) (State, []Intent) {
	critical := Check(snap).Critical()

	switch {
	case critical && !s.Triggered():
		next := State{Phase: PhaseShutdownTriggered, Incident: m.newIncident()}
		return next, m.triggerIntents(next.Incident, snap)

	case !critical && s.Triggered():
		return State{Phase: PhaseNormal}, m.recoverIntents(s.Incident, snap)

	default:
		return s, nil
	}
}

func (m *Machine) triggerIntents(incident string, snap status.Snapshot) []Intent {
	intents := []Intent{{
		Kind:     KindSendAlert,
		Incident: incident,
		Message:  CriticalMessage(snap),
	}}

	// Shutdown is emitted regardless of alert delivery.
	if len(m.targets.ShutdownHosts) > 0 {
		intents = append(intents, Intent{
			Kind:          KindShutdownHosts,
			Incident:      incident,
			ShutdownHosts: append([]string(nil), m.targets.ShutdownHosts...),
		})
	}

	return intents
}

func (m *Machine) recoverIntents(incident string, snap status.Snapshot) []Intent {
	intents := []Intent{{
		Kind:     KindSendAlert,
		Incident: incident,
		Message:  RecoveryMessage(snap),
	}}

	if len(m.targets.PowerOnHosts) > 0 {
		intents = append(intents, Intent{
			Kind:         KindPowerOnHosts,
			Incident:     incident,
			PowerOnHosts: append([]PowerOnHost(nil), m.targets.PowerOnHosts...),
		})
	}

	return intents
}
