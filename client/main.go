package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/linluma/nexusdex/client/subscriber"
	"github.com/linluma/nexusdex/dex/nexus"
	"github.com/linluma/nexusdex/shared/config"
	"github.com/linluma/nexusdex/shared/logging"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.ParseClientFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(2)
	}

	logger.Info("🚀 Starting Nexus market watch")
	logger.WithFields(logrus.Fields{
		"api":      cfg.API.URL,
		"pairs":    cfg.Pairs,
		"interval": cfg.Interval,
		"poll":     cfg.Poll,
		"duration": cfg.Duration,
	}).Info("📊 Config")

	// Set up context - run until interrupted if duration is 0
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	if err := watch(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("❌ Watch failed")
	}
	logger.Info("👋 Market watch stopped")
}

// watch polls the configured pairs and prints every snapshot
func watch(ctx context.Context, cfg *config.ClientConfig, logger *logrus.Logger) error {
	retry := nexus.DefaultRetryConfig
	retry.MaxRetries = int(cfg.API.MaxRetries)

	client := nexus.New(nexus.Config{
		BaseURL:           cfg.API.URL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             2,
		Retry:             retry,
	}, logger)

	poller := subscriber.NewPoller(client, subscriber.Config{
		Pairs:      cfg.Pairs,
		Interval:   cfg.Interval,
		Poll:       cfg.Poll,
		Depth:      cfg.Depth,
		TradeLimit: cfg.TradeLimit,
	}, clock.New(), logger)
	poller.Start(ctx)
	defer poller.Stop()

	logger.Info("📡 Polling Nexus market API...")
	for snap := range poller.Snapshots() {
		if cfg.Format == config.FormatJSON {
			if err := WriteJSON(os.Stdout, snap); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			continue
		}
		DisplaySnapshot(os.Stdout, snap, cfg.Depth)
	}

	if health := client.GetHealth(); health.FailureCount > 0 {
		logger.WithFields(logrus.Fields{
			"failures":   health.FailureCount,
			"last":       health.LastFailureTime,
			"storm_mode": health.InStormMode,
		}).Warn("⚠️ API errors during session")
	}
	return nil
}
