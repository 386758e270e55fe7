package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/testudo/seatwatch/internal/analyze"
	"github.com/testudo/seatwatch/internal/config"
	"github.com/testudo/seatwatch/internal/domain/watch"
	"github.com/testudo/seatwatch/internal/fetch"
	"github.com/testudo/seatwatch/internal/obs"
	"github.com/testudo/seatwatch/internal/services/notifier"
	"github.com/testudo/seatwatch/internal/services/watcher"
)

func main() {
	// init
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("SEATWATCH_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/seatwatch.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	// logger
	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	l.Info("starting seatwatch",
		zap.String("targets_path", cfg.TargetsPath),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("channel", cfg.Channel.Type),
		zap.String("status_addr", cfg.Server.StatusAddr),
	)

	// otel
	otelCloser, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// targets: a broken file is fatal, a broken target is skipped
	targets, issues, err := config.LoadTargets(cfg.TargetsPath)
	if err != nil {
		l.Fatal("load targets", zap.Error(err))
	}
	for _, is := range issues {
		l.Warn("target skipped", zap.String("target", is.ID), zap.String("reason", is.Reason))
	}
	l.Info("targets loaded", zap.Int("count", len(targets)), zap.Int("skipped", len(issues)))

	// collaborators
	clock := watch.SystemClock{}
	session := fetch.NewSession(cfg.Fetch.Timeout)
	fetcher := fetch.NewFetcher(l, session, cfg.Fetch.UserAgent)

	analyzer, err := analyze.New(l, analyze.Config{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
		BaseURL:  cfg.AI.BaseURL,
		Timeout:  cfg.AI.Timeout,
	})
	if err != nil {
		l.Fatal("analyzer init", zap.Error(err))
	}

	channel, err := notifier.NewChannel(l, cfg.Channel)
	if err != nil {
		l.Fatal("channel init", zap.Error(err))
	}
	dispatcher := notifier.NewDispatcher(l, channel, clock)

	// wiring
	pipeline := watcher.NewPipeline(l, fetcher, analyzer, dispatcher, clock, cfg.Channel.DefaultRecipient)
	sup := watcher.NewSupervisor(l, targets, pipeline, session, clock)

	// status/metrics server
	ms := obs.BootstrapStatusServer(cfg.Server.StatusAddr, func(context.Context) error { return nil }, sup, l)

	// run
	errCh := make(chan error, 1)
	go func() { errCh <- sup.Run(ctx) }()

	l.Info("seatwatch started")

	// loop
	select {
	case <-ctx.Done():
		// supervisor joins every loop and closes the session before returning
		err = <-errCh
	case err = <-errCh:
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		l.Error("supervisor error", zap.Error(err))
	}

	// graceful shutdown
	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
