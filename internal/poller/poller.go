// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/tamzrod/solax-monitor/internal/registers"
	"github.com/tamzrod/solax-monitor/internal/status"
)

// Client abstracts one telemetry transport.
// The poller depends on the raw register window only.
type Client interface {
	Fetch(ctx context.Context) (registers.Raw, error)
}

// Factory creates a fresh Client. ONE attempt per call.
type Factory func() (Client, error)

// Config is the minimal runtime config the poller needs.
type Config struct {
	Source   string
	Interval time.Duration
	Map      registers.Map
}

// Poller is a clock-driven reader and decoder.
type Poller struct {
	cfg     Config
	client  Client
	factory Factory
}

// New creates a poller with immutable config.
// factory may be nil; then a failing client is kept and retried as-is.
func New(cfg Config, client Client, factory Factory) (*Poller, error) {
	if cfg.Source == "" {
		return nil, errors.New("poller: source required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.Map.Len() == 0 {
		return nil, errors.New("poller: register map is empty")
	}
	if client == nil && factory == nil {
		return nil, errors.New("poller: client or factory required")
	}
	return &Poller{cfg: cfg, client: client, factory: factory}, nil
}

// PollOnce performs exactly one fetch + decode + project cycle.
// A failed fetch returns only Err.
func (p *Poller) PollOnce(ctx context.Context) PollResult {
	res := PollResult{
		Source: p.cfg.Source,
		At:     time.Now(),
	}

	if p.client == nil {
		c, err := p.factory()
		if err != nil {
			res.Err = err
			return res
		}
		p.client = c
	}

	raw, err := p.client.Fetch(ctx)
	if err != nil {
		p.discard()
		res.Err = err
		return res
	}

	res.Raw = raw
	res.Measurements = registers.Decode(raw, p.cfg.Map)
	res.Snapshot = status.Project(res.Measurements)
	return res
}

// Close releases the current client, if it holds resources.
func (p *Poller) Close() error {
	if c, ok := p.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// discard drops a client after transport failure so the factory
// rebuilds it on a future tick.
func (p *Poller) discard() {
	if p.factory == nil {
		return
	}
	if c, ok := p.client.(io.Closer); ok {
		_ = c.Close()
	}
	p.client = nil
}
