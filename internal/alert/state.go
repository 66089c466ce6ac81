// internal/alert/state.go
package alert

// State is the guard's alerting state.
type State struct {
	Phase Phase

	// Incident identifies the current critical episode.
	// Empty while Normal.
	Incident string
}

// Phase is the state machine position.
type Phase uint8

const (
	// PhaseNormal: no shutdown has been triggered.
	PhaseNormal Phase = iota

	// PhaseShutdownTriggered: alert and shutdown intents were emitted for the current episode.
	PhaseShutdownTriggered
)

func (p Phase) String() string {
	switch p {
	case PhaseNormal:
		return "NORMAL"
	case PhaseShutdownTriggered:
		return "SHUTDOWN_TRIGGERED"
	default:
		return "UNKNOWN"
	}
}

// Triggered reports whether a shutdown is in effect.
func (s State) Triggered() bool {
	return s.Phase == PhaseShutdownTriggered
}
