// internal/dispatch/webhook/client.go
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tamzrod/solax-monitor/internal/redact"
)

// maxErrBody bounds how much of a failed response is echoed back.
const maxErrBody = 512

// Discord-compatible webhook client (stateless, 1 message = 1 request).
type Client struct {
	url  string
	http *http.Client
}

type Config struct {
	URL     string
	Timeout time.Duration
}

type payload struct {
	Content string `json:"content"`
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook: url required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		url:  cfg.URL,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Send implements dispatch.Alerter.
// Errors never carry the webhook URL in clear.
func (c *Client) Send(ctx context.Context, msg string) error {
	body, err := json.Marshal(payload{Content: msg})
	if err != nil {
		return fmt.Errorf("webhook: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request for %s: %s", redact.URL(c.url), redact.Scrub(err.Error(), c.url))
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post %s: %s", redact.URL(c.url), redact.Scrub(err.Error(), c.url))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(res.Body, maxErrBody))
		return fmt.Errorf(
			"webhook: %s failed with status %d: %s",
			redact.URL(c.url), res.StatusCode, strings.TrimSpace(string(text)),
		)
	}

	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
