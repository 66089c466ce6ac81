// cmd/solax-status/main.go
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
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tamzrod/solax-monitor/internal/config"
	"github.com/tamzrod/solax-monitor/internal/metrics"
	"github.com/tamzrod/solax-monitor/internal/poller"
	"github.com/tamzrod/solax-monitor/internal/publish"
	"github.com/tamzrod/solax-monitor/internal/server"
	"github.com/tamzrod/solax-monitor/internal/status"
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

	if err := config.ValidateTelemetry(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Metrics
	// --------------------

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// --------------------
	// Poller
	// --------------------

	p, err := poller.Build(cfg.Inverter, cfg.Poll)
	if err != nil {
		log.Fatalf("poller build failed (model=%s): %v", cfg.Inverter.Model, err)
	}

	// ---- optional MQTT mirror ----

	var pub *publish.Publisher
	if mc := cfg.MQTT; mc != nil {
		pub, err = publish.Connect(publish.Config{
			Broker:   mc.Broker,
			Topic:    mc.Topic,
			ClientID: mc.ClientID,
		})
		if err != nil {
			log.Fatalf("mqtt connect failed: %v", err)
		}
		defer pub.Close()
	}

	holder := status.NewHolder()

	// --------------------
	// HTTP surface
	// --------------------

	srv := &http.Server{
		Addr: cfg.Server.Listen,
		Handler: server.New(holder, server.Config{
			StaleAfter: time.Duration(cfg.Server.StaleAfterMs) * time.Millisecond,
			Map:        poller.RegisterMap(cfg.Inverter),
			Gatherer:   reg,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("status server listening (addr=%s)", cfg.Server.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("status server failed: %v", err)
		}
	}()

	// --------------------
	// Poll loop (single publisher into holder)
	// --------------------

	out := make(chan poller.PollResult)
	runDone := make(chan struct{})
	go func() {
		p.Run(ctx, out)
		close(runDone)
	}()

	log.Printf(
		"polling inverter (model=%s transport=%s interval=%dms)",
		cfg.Inverter.Model, cfg.Inverter.Transport, cfg.Poll.IntervalMs,
	)

	for {
		select {
		case <-ctx.Done():
			shutdown(srv)
			// Run owns the client until it returns.
			<-runDone
			if err := p.Close(); err != nil {
				log.Printf("poller close: %v", err)
			}
			return

		case res := <-out:
			m.ObservePoll(res.Err, res.At)
			if res.Err != nil {
				// Last good record stays served.
				log.Printf("poll failed (source=%s): %v", res.Source, res.Err)
				continue
			}

			rec := status.Encode(res.Snapshot)
			holder.Publish(rec, res.At)
			m.ObserveSnapshot(res.Snapshot)

			log.Printf(
				"poll ok (source=%s measurements=%d solar=%s battery=%s grid=%s %s)",
				res.Source, len(res.Measurements), rec.SolarPanels, rec.Batteries,
				rec.GridStatus, rec.GridPower,
			)

			if pub != nil {
				if err := pub.Publish(rec); err != nil {
					log.Printf("mqtt publish failed: %v", err)
				}
			}
		}
	}
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("status server shutdown: %v", err)
	}
}
