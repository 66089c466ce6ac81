// internal/alert/intent.go
package alert

// Kind is the side effect an Intent requests.
type Kind uint8

const (
	KindSendAlert Kind = iota + 1
	KindShutdownHosts
	KindPowerOnHosts
)

func (k Kind) String() string {
	switch k {
	case KindSendAlert:
		return "send_alert"
	case KindShutdownHosts:
		return "shutdown_hosts"
	case KindPowerOnHosts:
		return "power_on_hosts"
	default:
		return "unknown"
	}
}

// PowerOnHost is a management controller that can power a server on.
type PowerOnHost struct {
	Address  string
	Username string
	Password string
}

// Targets is what the machine may act upon.
type Targets struct {
	ShutdownHosts []string
	PowerOnHosts  []PowerOnHost
}

// Intent is a request for a collaborator to perform one side effect.
// Exactly one payload field is set, matching Kind.
type Intent struct {
	Kind     Kind
	Incident string

	Message       string        // KindSendAlert
	ShutdownHosts []string      // KindShutdownHosts
	PowerOnHosts  []PowerOnHost // KindPowerOnHosts
}
