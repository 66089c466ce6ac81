// internal/config/validate.go
package config

import (
	"fmt"
	"strings"

	"github.com/tamzrod/solax-monitor/internal/registers"
)

// Validate checks configuration correctness for both daemons.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// Empty fields that Normalize fills are accepted.
func Validate(cfg *Config) error {
	if err := ValidateTelemetry(cfg); err != nil {
		return err
	}
	return ValidateGuard(cfg)
}

// ValidateTelemetry checks the sections the status daemon reads.
func ValidateTelemetry(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// INVERTER
	// ------------------------------------------------------------

	inv := cfg.Inverter

	if inv.Model != "" && !registers.Supported(registers.Model(inv.Model)) {
		return fmt.Errorf("inverter: unsupported model %q", inv.Model)
	}

	switch inv.Transport {
	case "", TransportHTTP:
		if inv.Endpoint == "" {
			return fmt.Errorf("inverter: endpoint is required for http transport")
		}
		if inv.Serial == "" {
			return fmt.Errorf("inverter: serial is required for http transport")
		}

	case TransportModbus:
		if inv.Modbus == nil {
			return fmt.Errorf("inverter: modbus transport selected but no modbus block defined")
		}
		mb := inv.Modbus
		switch mb.Mode {
		case "", ModbusModeTCP, ModbusModeRTU:
		default:
			return fmt.Errorf("inverter: unknown modbus mode %q", mb.Mode)
		}
		if mb.Endpoint == "" {
			return fmt.Errorf("inverter: modbus endpoint is required")
		}
		// The modbus layout is addressed from input register 0.
		if mb.Address != 0 {
			return fmt.Errorf("inverter: modbus address must be 0, got %d", mb.Address)
		}
		span := registers.ForLayout(modelOrDefault(inv.Model), registers.LayoutModbus).Span()
		if mb.Quantity != 0 && int(mb.Quantity) < span {
			return fmt.Errorf(
				"inverter: modbus quantity %d too short for %s layout (need %d)",
				mb.Quantity,
				modelOrDefault(inv.Model),
				span,
			)
		}
		if mb.TimeoutMs < 0 || mb.BaudRate < 0 {
			return fmt.Errorf("inverter: modbus timeout_ms and baud_rate must be >= 0")
		}

	default:
		return fmt.Errorf("inverter: unknown transport %q", inv.Transport)
	}

	if inv.TimeoutMs < 0 {
		return fmt.Errorf("inverter: timeout_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// CADENCE
	// ------------------------------------------------------------

	if cfg.Poll.IntervalMs < 0 {
		return fmt.Errorf("poll: interval_ms must be >= 0")
	}
	if cfg.Server.StaleAfterMs < 0 {
		return fmt.Errorf("server: stale_after_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// MQTT (OPT-IN)
	// ------------------------------------------------------------

	if cfg.MQTT != nil && cfg.MQTT.Broker == "" {
		return fmt.Errorf("mqtt: broker is required when mqtt block is present")
	}

	return nil
}

// ValidateGuard checks the sections the guard daemon reads.
// The inverter section is not consulted.
func ValidateGuard(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	if cfg.Guard.IntervalMs < 0 || cfg.Guard.TimeoutMs < 0 {
		return fmt.Errorf("guard: interval_ms and timeout_ms must be >= 0")
	}
	if cfg.Alert.TimeoutMs < 0 || cfg.Shutdown.TimeoutMs < 0 {
		return fmt.Errorf("alert/shutdown: timeout_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// SHUTDOWN TARGETS
	// ------------------------------------------------------------

	seen := make(map[string]struct{}, len(cfg.Shutdown.Hosts))
	for i, h := range cfg.Shutdown.Hosts {
		h = strings.TrimSpace(h)
		if h == "" {
			return fmt.Errorf("shutdown: host %d is empty", i)
		}
		if _, dup := seen[h]; dup {
			return fmt.Errorf("shutdown: host %q listed twice", h)
		}
		seen[h] = struct{}{}
	}

	// ------------------------------------------------------------
	// POWER-ON TARGETS (OPT-IN)
	// ------------------------------------------------------------

	if !cfg.PowerOn.Enabled {
		return nil
	}

	for i, h := range cfg.PowerOn.Hosts {
		if h.Address == "" {
			return fmt.Errorf("power_on: host %d has no address", i)
		}
		if h.Username == "" {
			return fmt.Errorf("power_on: host %q has no username", h.Address)
		}
	}

	return nil
}

func modelOrDefault(m string) registers.Model {
	if m == "" {
		return registers.ModelX3HybridG4
	}
	return registers.Model(m)
}
