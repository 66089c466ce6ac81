// internal/config/normalize.go
package config

import (
	"strings"

	"github.com/tamzrod/solax-monitor/internal/registers"
)

// Defaults applied by Normalize.
const (
	DefaultInverterTimeoutMs = 5000
	DefaultPollIntervalMs    = 60000
	DefaultListen            = ":3000"
	DefaultMQTTTopic         = "solax"
	DefaultMQTTClientID      = "solax-monitor"
	DefaultStatusURL         = "http://localhost:3000/status"
	DefaultGuardIntervalMs   = 30000
	DefaultGuardTimeoutMs    = 5000
	DefaultAlertTimeoutMs    = 10000
	DefaultSSHKeyPath        = "/srv/solax-mon/data/ssh.key"
	DefaultSSHUser           = "root"
	DefaultShutdownCommand   = "sudo poweroff"
	DefaultShutdownTimeoutMs = 15000
	DefaultPowerOnCommand    = "racadm serveraction powerup"
	DefaultModbusTimeoutMs   = 1000
	DefaultModbusBaudRate    = 9600
	DefaultModbusUnitID      = 1
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ---- inverter ----

	inv := &cfg.Inverter
	if inv.Model == "" {
		inv.Model = string(registers.ModelX3HybridG4)
	}
	if inv.Transport == "" {
		inv.Transport = TransportHTTP
	}
	if inv.Endpoint != "" && !strings.Contains(inv.Endpoint, "://") {
		inv.Endpoint = "http://" + inv.Endpoint
	}
	if inv.TimeoutMs == 0 {
		inv.TimeoutMs = DefaultInverterTimeoutMs
	}
	if mb := inv.Modbus; mb != nil {
		if mb.Mode == "" {
			mb.Mode = ModbusModeTCP
		}
		if mb.UnitID == 0 {
			mb.UnitID = DefaultModbusUnitID
		}
		if mb.TimeoutMs == 0 {
			mb.TimeoutMs = DefaultModbusTimeoutMs
		}
		if mb.Mode == ModbusModeRTU && mb.BaudRate == 0 {
			mb.BaudRate = DefaultModbusBaudRate
		}
		if mb.Quantity == 0 {
			span := registers.ForLayout(registers.Model(inv.Model), registers.LayoutModbus).Span()
			mb.Quantity = uint16(span)
		}
	}

	// ---- cadence / server ----

	if cfg.Poll.IntervalMs == 0 {
		cfg.Poll.IntervalMs = DefaultPollIntervalMs
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = DefaultListen
	}
	if cfg.Server.StaleAfterMs == 0 {
		cfg.Server.StaleAfterMs = 3 * cfg.Poll.IntervalMs
	}

	if m := cfg.MQTT; m != nil {
		if m.Topic == "" {
			m.Topic = DefaultMQTTTopic
		}
		m.Topic = strings.TrimSuffix(m.Topic, "/")
		if m.ClientID == "" {
			m.ClientID = DefaultMQTTClientID
		}
	}

	// ---- guard ----

	if cfg.Guard.StatusURL == "" {
		cfg.Guard.StatusURL = DefaultStatusURL
	}
	if cfg.Guard.IntervalMs == 0 {
		cfg.Guard.IntervalMs = DefaultGuardIntervalMs
	}
	if cfg.Guard.TimeoutMs == 0 {
		cfg.Guard.TimeoutMs = DefaultGuardTimeoutMs
	}
	if cfg.Alert.TimeoutMs == 0 {
		cfg.Alert.TimeoutMs = DefaultAlertTimeoutMs
	}

	// ---- host actions ----

	sd := &cfg.Shutdown
	if sd.SSHKeyPath == "" {
		sd.SSHKeyPath = DefaultSSHKeyPath
	}
	if sd.User == "" {
		sd.User = DefaultSSHUser
	}
	if sd.Command == "" {
		sd.Command = DefaultShutdownCommand
	}
	if sd.TimeoutMs == 0 {
		sd.TimeoutMs = DefaultShutdownTimeoutMs
	}
	for i := range sd.Hosts {
		sd.Hosts[i] = strings.TrimSpace(sd.Hosts[i])
	}

	if cfg.PowerOn.Command == "" {
		cfg.PowerOn.Command = DefaultPowerOnCommand
	}
}
