// internal/poller/builder.go
package poller

import (
	"fmt"
	"time"

	"github.com/tamzrod/solax-monitor/internal/config"
	"github.com/tamzrod/solax-monitor/internal/poller/modbus"
	"github.com/tamzrod/solax-monitor/internal/poller/solax"
	"github.com/tamzrod/solax-monitor/internal/registers"
)

// Build constructs the inverter poller from validated, normalized config.
// The first client is created eagerly so a bad endpoint fails at startup.
func Build(inv config.InverterConfig, poll config.PollConfig) (*Poller, error) {
	factory, err := clientFactory(inv)
	if err != nil {
		return nil, err
	}

	client, err := factory()
	if err != nil {
		return nil, fmt.Errorf("inverter %s: %w", inv.Model, err)
	}

	p, err := New(
		Config{
			Source:   inv.Model,
			Interval: time.Duration(poll.IntervalMs) * time.Millisecond,
			Map:      RegisterMap(inv),
		},
		client,
		factory,
	)
	if err != nil {
		_ = closeClient(client)
		return nil, err
	}
	return p, nil
}

// RegisterMap returns the layout matching the inverter's transport.
// Modbus numbers input registers differently from the HTTP Data array.
func RegisterMap(inv config.InverterConfig) registers.Map {
	layout := registers.LayoutHTTP
	if inv.Transport == config.TransportModbus {
		layout = registers.LayoutModbus
	}
	return registers.ForLayout(registers.Model(inv.Model), layout)
}

func clientFactory(inv config.InverterConfig) (Factory, error) {
	switch inv.Transport {
	case config.TransportHTTP:
		cfg := solax.Config{
			Endpoint: inv.Endpoint,
			Serial:   inv.Serial,
			Timeout:  time.Duration(inv.TimeoutMs) * time.Millisecond,
		}
		return func() (Client, error) {
			return solax.New(cfg)
		}, nil

	case config.TransportModbus:
		if inv.Modbus == nil {
			return nil, fmt.Errorf("inverter: modbus block missing")
		}
		mb := inv.Modbus
		cfg := modbus.Config{
			Mode:     mb.Mode,
			Endpoint: mb.Endpoint,
			UnitID:   mb.UnitID,
			BaudRate: mb.BaudRate,
			Address:  mb.Address,
			Quantity: mb.Quantity,
			Timeout:  time.Duration(mb.TimeoutMs) * time.Millisecond,
		}
		return func() (Client, error) {
			return modbus.New(cfg)
		}, nil

	default:
		return nil, fmt.Errorf("inverter: unsupported transport %q", inv.Transport)
	}
}

func closeClient(c Client) error {
	if cl, ok := c.(interface{ Close() error }); ok {
		return cl.Close()
	}
	return nil
}
