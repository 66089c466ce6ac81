// internal/poller/solax/client.go
package solax

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tamzrod/solax-monitor/internal/registers"
)

// optReadRealTime is the only operation the local API needs.
const optReadRealTime = "ReadRealTimeData"

// maxBody caps the response size; the real-time payload is a few KiB.
const maxBody = 1 << 20

// Response is the inverter's real-time payload.
// Only Data is decoded further; the rest is kept for logging.
type Response struct {
	Type        json.RawMessage   `json:"type"`
	SN          string            `json:"sn"`
	Version     string            `json:"ver"`
	Data        []int64           `json:"Data"`
	Information []json.RawMessage `json:"Information"`
}

type Config struct {
	Endpoint string // http://host[:port]
	Serial   string // inverter registration serial, sent as pwd
	Timeout  time.Duration
}

// Client reads the local SolaX HTTP API (stateless, 1 request per fetch).
type Client struct {
	endpoint string
	serial   string
	http     *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("solax: endpoint required")
	}
	if cfg.Serial == "" {
		return nil, errors.New("solax: serial required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		serial:   cfg.Serial,
		http:     &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Fetch implements poller.Client.
func (c *Client) Fetch(ctx context.Context) (registers.Raw, error) {
	resp, err := c.Read(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("solax: response carries no Data")
	}
	return registers.Raw(resp.Data), nil
}

// Read performs one ReadRealTimeData request.
func (c *Client) Read(ctx context.Context) (*Response, error) {
	form := url.Values{}
	form.Set("optType", optReadRealTime)
	form.Set("pwd", c.serial)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.endpoint,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("solax: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("solax: request %s: %w", c.endpoint, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("solax: read body: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("solax: unexpected status %d", res.StatusCode)
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("solax: decode response: %w", err)
	}
	return &out, nil
}

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
