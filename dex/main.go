package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/linluma/nexusdex/dex/nexus"
	"github.com/linluma/nexusdex/shared/config"
	"github.com/linluma/nexusdex/shared/logging"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.ParseDexFlags(os.Args[1:])
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runPreview(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("❌ Preview failed")
	}
}

// runPreview fetches the counter side and prints the fill plan
func runPreview(ctx context.Context, cfg *config.DexConfig, logger *logrus.Logger) error {
	retry := nexus.DefaultRetryConfig
	retry.MaxRetries = int(cfg.API.MaxRetries)

	client := nexus.New(nexus.Config{
		BaseURL:           cfg.API.URL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Retry:             retry,
	}, logger)

	counterSide := cfg.Side.CounterSide()
	logger.WithFields(logrus.Fields{
		"pair":  cfg.Pair.String(),
		"side":  cfg.Side,
		"book":  counterSide,
		"depth": cfg.Depth,
	}).Info("📡 Fetching counter-orders")

	counter, err := client.FetchSide(ctx, cfg.Pair, counterSide, cfg.Depth)
	if err != nil {
		return fmt.Errorf("fetch %s %ss: %w", cfg.Pair, counterSide, err)
	}

	result := BuildPreview(cfg.Side, counter, cfg.Pair, cfg.Amount, cfg.Price)
	if result.Plan.PartiallyMatched() {
		logger.WithField("remainder", result.Plan.RemainderUnfilled).Warn("⚠️ Order book too thin for the full amount")
	}

	if cfg.Format == config.FormatJSON {
		if err := WriteJSON(os.Stdout, result); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
		return nil
	}
	DisplayPreview(os.Stdout, result, cfg.Pair)
	return nil
}
