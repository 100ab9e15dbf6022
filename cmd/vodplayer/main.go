// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// vodplayer is a headless VOD playback agent: it opens playback
// sessions against the playback service, models content time, runs the
// ad timeline and reports telemetry, all driven over a local control
// API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/vodplayer/internal/backend"
	"github.com/ManuGH/vodplayer/internal/config"
	"github.com/ManuGH/vodplayer/internal/control"
	"github.com/ManuGH/vodplayer/internal/entitlement"
	"github.com/ManuGH/vodplayer/internal/log"
	"github.com/ManuGH/vodplayer/internal/playback/headless"
	"github.com/ManuGH/vodplayer/internal/playback/ports"
)

var (
	version   = "v0.3.0"
	commit    = "none"
	buildDate = "unknown"
)

const shutdownGrace = 10 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vodplayer: %v\n", err)
		os.Exit(1)
	}

	log.Configure(log.Config{
		Level:   cfg.Log.Level,
		Service: "vodplayer",
	})
	logger := log.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := backend.New(cfg.Backend.URL, cfg.Backend.Timeout)
	srv := &control.Server{
		Backend:      client,
		Entitlements: entitlement.NewStatic(cfg.Entitlement.Premium, cfg.Entitlement.ShowAds, cfg.MaxQualityTier()),
		AdProviderFor: func(titleID string) ports.AdProvider {
			return client.AdSchedule(titleID)
		},
		Engines:        headless.NewEngineFactory(nil),
		HeartbeatEvery: cfg.Heartbeat.Interval,
		RateLimitRPM:   cfg.RateLimit.RequestsPerMinute,
	}

	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("listen", cfg.Listen).
			Str("backend", cfg.Backend.URL).
			Str("version", version).
			Msg("control API listening")
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("daemon exited with error")
		os.Exit(1)
	}
	logger.Info().Msg("daemon stopped")
}
