// cmd/power-guard/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tamzrod/solax-monitor/internal/alert"
	"github.com/tamzrod/solax-monitor/internal/config"
	"github.com/tamzrod/solax-monitor/internal/dispatch"
	"github.com/tamzrod/solax-monitor/internal/metrics"
	"github.com/tamzrod/solax-monitor/internal/monitor"
	"github.com/tamzrod/solax-monitor/internal/redact"
	"github.com/tamzrod/solax-monitor/internal/server"
)

const defaultConfigPath = "/srv/solax-mon/data/secrets.txt"

func main() {
	cfgPath := defaultConfigPath
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.ValidateGuard(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	log.Printf("starting power guard (shutdown_hosts=%d)", len(cfg.Shutdown.Hosts))
	if cfg.PowerOn.Enabled {
		log.Printf("power-on enabled (hosts=%d)", len(cfg.PowerOn.Hosts))
	}
	if cfg.Alert.WebhookURL == "" {
		log.Printf("no webhook configured; alerts will not be delivered")
	} else {
		log.Printf("alerts via webhook (url=%s)", redact.URL(cfg.Alert.WebhookURL))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Collaborators
	// --------------------

	src, err := monitor.NewHTTPSource(
		cfg.Guard.StatusURL,
		time.Duration(cfg.Guard.TimeoutMs)*time.Millisecond,
	)
	if err != nil {
		log.Fatalf("status source failed: %v", err)
	}

	disp, err := dispatch.Build(cfg)
	if err != nil {
		log.Fatalf("dispatch build failed: %v", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	g, err := monitor.NewGuard(
		time.Duration(cfg.Guard.IntervalMs)*time.Millisecond,
		src,
		alert.New(dispatch.BuildTargets(cfg)),
		disp,
		m,
	)
	if err != nil {
		log.Fatalf("guard build failed: %v", err)
	}

	// ---- optional metrics listener ----

	var srv *http.Server
	if cfg.Guard.Listen != "" {
		srv = &http.Server{
			Addr:              cfg.Guard.Listen,
			Handler:           server.MetricsOnly(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Printf("guard metrics listening (addr=%s)", cfg.Guard.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("guard metrics server failed: %v", err)
			}
		}()
	}

	// --------------------
	// Guard loop (blocks until signal)
	// --------------------

	g.Run(ctx)

	if srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}
	log.Printf("power guard stopped (state=%s)", g.State().Phase)
}
