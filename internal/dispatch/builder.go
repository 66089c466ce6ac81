// internal/dispatch/builder.go
package dispatch

import (
	"fmt"
	"time"

	"github.com/tamzrod/solax-monitor/internal/alert"
	"github.com/tamzrod/solax-monitor/internal/config"
	"github.com/tamzrod/solax-monitor/internal/dispatch/remote"
	"github.com/tamzrod/solax-monitor/internal/dispatch/webhook"
)

// BuildTargets converts host config into what the alert machine may act upon.
// Power-on hosts are included only when power-on is enabled.
func BuildTargets(cfg *config.Config) alert.Targets {
	t := alert.Targets{
		ShutdownHosts: append([]string(nil), cfg.Shutdown.Hosts...),
	}
	if cfg.PowerOn.Enabled {
		for _, h := range cfg.PowerOn.Hosts {
			t.PowerOnHosts = append(t.PowerOnHosts, alert.PowerOnHost{
				Address:  h.Address,
				Username: h.Username,
				Password: h.Password,
			})
		}
	}
	return t
}

// Build creates a Dispatcher from validated, normalized config.
// Collaborators are built only when something will use them; the SSH key
// is read only when shutdown hosts exist.
func Build(cfg *config.Config) (Dispatcher, error) {
	var a Alerter
	if cfg.Alert.WebhookURL != "" {
		wh, err := webhook.New(webhook.Config{
			URL:     cfg.Alert.WebhookURL,
			Timeout: time.Duration(cfg.Alert.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			return nil, err
		}
		a = wh
	}

	needShutdown := len(cfg.Shutdown.Hosts) > 0
	needPowerOn := cfg.PowerOn.Enabled && len(cfg.PowerOn.Hosts) > 0
	if !needShutdown && !needPowerOn {
		return New(a, nil, nil), nil
	}

	rc := remote.Config{
		User:            cfg.Shutdown.User,
		ShutdownCommand: cfg.Shutdown.Command,
		PowerOnCommand:  cfg.PowerOn.Command,
		KnownHosts:      cfg.Shutdown.KnownHosts,
		Timeout:         time.Duration(cfg.Shutdown.TimeoutMs) * time.Millisecond,
	}
	if needShutdown {
		rc.KeyPath = cfg.Shutdown.SSHKeyPath
	}

	rem, err := remote.New(rc)
	if err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}

	var s Shutdowner
	if needShutdown {
		s = rem
	}
	var p PowerOner
	if needPowerOn {
		p = rem
	}
	return New(a, s, p), nil
}
