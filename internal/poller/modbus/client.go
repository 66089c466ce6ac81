// internal/poller/modbus/client.go
package modbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/solax-monitor/internal/registers"
)

// maxRead is the largest FC4 request this client issues.
// The protocol allows 125; SolaX dongles reject more than 100.
const maxRead = 100

const (
	ModeTCP = "tcp"
	ModeRTU = "rtu"
)

type Config struct {
	Mode     string // tcp | rtu
	Endpoint string // host:port or serial device
	UnitID   uint8
	BaudRate int
	Address  uint16
	Quantity uint16
	Timeout  time.Duration
}

// handler is what both goburrow transports expose beyond modbus.ClientHandler.
type handler interface {
	modbus.ClientHandler
	Connect() error
	Close() error
}

// Client reads one input-register window from one inverter.
type Client struct {
	mu       sync.Mutex
	handler  handler
	client   modbus.Client
	address  uint16
	quantity uint16
}

// New connects immediately; a dead endpoint fails here, not on first fetch.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("poller modbus: endpoint required")
	}
	if cfg.Quantity == 0 {
		return nil, errors.New("poller modbus: quantity must be > 0")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}

	var h handler
	switch cfg.Mode {
	case "", ModeTCP:
		th := modbus.NewTCPClientHandler(cfg.Endpoint)
		th.Timeout = cfg.Timeout
		th.SlaveId = cfg.UnitID
		h = th
	case ModeRTU:
		rh := modbus.NewRTUClientHandler(cfg.Endpoint)
		rh.BaudRate = cfg.BaudRate
		rh.DataBits = 8
		rh.Parity = "N"
		rh.StopBits = 1
		rh.SlaveId = cfg.UnitID
		rh.Timeout = cfg.Timeout
		h = rh
	default:
		return nil, fmt.Errorf("poller modbus: unknown mode %q", cfg.Mode)
	}

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("poller modbus: connect %s: %w", cfg.Endpoint, err)
	}

	return &Client{
		handler:  h,
		client:   modbus.NewClient(h),
		address:  cfg.Address,
		quantity: cfg.Quantity,
	}, nil
}

// Fetch implements poller.Client.
// Index i of the returned window is register address+i.
func (c *Client) Fetch(ctx context.Context) (registers.Raw, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(registers.Raw, 0, c.quantity)

	for off := uint16(0); off < c.quantity; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n := c.quantity - off
		if n > maxRead {
			n = maxRead
		}

		b, err := c.client.ReadInputRegisters(c.address+off, n)
		if err != nil {
			return nil, fmt.Errorf("poller modbus: read %d+%d: %w", c.address+off, n, err)
		}
		if len(b) != int(n)*2 {
			return nil, fmt.Errorf("poller modbus: short response %d bytes for %d registers", len(b), n)
		}

		out = append(out, unpackRegisters(b)...)
		off += n
	}

	return out, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// unpackRegisters converts big-endian register bytes to unsigned values.
func unpackRegisters(b []byte) registers.Raw {
	out := make(registers.Raw, len(b)/2)
	for i := range out {
		out[i] = int64(uint16(b[2*i])<<8 | uint16(b[2*i+1]))
	}
	return out
}
