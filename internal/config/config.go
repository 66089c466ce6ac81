// internal/config/config.go
package config

type Config struct {
	Inverter InverterConfig `yaml:"inverter"`
	Poll     PollConfig     `yaml:"poll"`
	Server   ServerConfig   `yaml:"server"`
	MQTT     *MQTTConfig    `yaml:"mqtt"`
	Guard    GuardConfig    `yaml:"guard"`
	Alert    AlertConfig    `yaml:"alert"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
	PowerOn  PowerOnConfig  `yaml:"power_on"`
}

// ---- INVERTER (telemetry source) ----

const (
	TransportHTTP   = "http"
	TransportModbus = "modbus"
)

type InverterConfig struct {
	Model     string        `yaml:"model"`
	Transport string        `yaml:"transport"`
	Endpoint  string        `yaml:"endpoint"`
	Serial    string        `yaml:"serial"`
	TimeoutMs int           `yaml:"timeout_ms"`
	Modbus    *ModbusConfig `yaml:"modbus"`
}

const (
	ModbusModeTCP = "tcp"
	ModbusModeRTU = "rtu"
)

type ModbusConfig struct {
	Mode      string `yaml:"mode"`
	Endpoint  string `yaml:"endpoint"` // host:port (tcp) or serial device (rtu)
	UnitID    uint8  `yaml:"unit_id"`
	BaudRate  int    `yaml:"baud_rate"`
	Address   uint16 `yaml:"address"`
	Quantity  uint16 `yaml:"quantity"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- STATUS SERVER ----

type ServerConfig struct {
	Listen       string `yaml:"listen"`
	StaleAfterMs int    `yaml:"stale_after_ms"`
}

// ---- MQTT (optional) ----

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// ---- GUARD ----

type GuardConfig struct {
	StatusURL  string `yaml:"status_url"`
	IntervalMs int    `yaml:"interval_ms"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	Listen     string `yaml:"listen"` // metrics only; empty disables
}

type AlertConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

type ShutdownConfig struct {
	SSHKeyPath string   `yaml:"ssh_key_path"`
	User       string   `yaml:"user"`
	Command    string   `yaml:"command"`
	KnownHosts string   `yaml:"known_hosts"` // empty: host keys are not verified
	TimeoutMs  int      `yaml:"timeout_ms"`
	Hosts      []string `yaml:"hosts"` // [user@]host[:port]
}

type PowerOnConfig struct {
	Enabled bool          `yaml:"enabled"`
	Command string        `yaml:"command"`
	Hosts   []PowerOnHost `yaml:"hosts"`
}

type PowerOnHost struct {
	Address  string `yaml:"address"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}
