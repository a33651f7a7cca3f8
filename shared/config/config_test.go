package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linluma/nexusdex/shared/models"
)

func TestParseDexFlags(t *testing.T) {
	cfg, err := ParseDexFlags([]string{
		"--api", "http://node.local:8080/",
		"--pair", "DIST/USDD",
		"--side", "SELL",
		"--amount", "12.5",
		"--price", "0.3",
		"--format", "json",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://node.local:8080", cfg.API.URL, "Trailing slash should be trimmed")
	assert.Equal(t, models.MarketSymbol{Base: "DIST", Quote: "USDD"}, cfg.Pair)
	assert.Equal(t, models.Sell, cfg.Side)
	assert.Equal(t, 12.5, cfg.Amount)
	assert.Equal(t, 0.3, cfg.Price)
	assert.Equal(t, 50, cfg.Depth)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
}

func TestParseDexFlagsValidation(t *testing.T) {
	cases := map[string][]string{
		"missing amount": {"--price", "1"},
		"bad price":      {"--amount", "1", "--price", "-2"},
		"bad pair":       {"--pair", "DIST", "--amount", "1", "--price", "1"},
		"bad side":       {"--side", "hold", "--amount", "1", "--price", "1"},
		"bad format":     {"--format", "xml", "--amount", "1", "--price", "1"},
		"unknown flag":   {"--port", "50051"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDexFlags(args)
			assert.Error(t, err)
		})
	}
}

func TestParseClientFlags(t *testing.T) {
	cfg, err := ParseClientFlags([]string{
		"--pairs", "DIST/NXS, ,NXS/USDD",
		"--interval", "1y",
		"--poll", "5s",
		"--duration", "1m",
	})
	require.NoError(t, err)

	require.Len(t, cfg.Pairs, 2)
	assert.Equal(t, "DIST/NXS", cfg.Pairs[0].String())
	assert.Equal(t, "NXS/USDD", cfg.Pairs[1].String())
	assert.Equal(t, models.Interval1Y, cfg.Interval)
	assert.Equal(t, 5*time.Second, cfg.Poll)
	assert.Equal(t, time.Minute, cfg.Duration)
	assert.Equal(t, 15, cfg.Depth)
	assert.Equal(t, FormatTable, cfg.Format)
}

func TestParseClientFlagsValidation(t *testing.T) {
	_, err := ParseClientFlags([]string{"--interval", "4h"})
	assert.Error(t, err)

	_, err = ParseClientFlags([]string{"--pairs", " , "})
	assert.Error(t, err)

	_, err = ParseClientFlags([]string{"--poll", "0s"})
	assert.Error(t, err)
}

func TestEnvironmentDefaults(t *testing.T) {
	t.Setenv("NEXUS_API_URL", "http://127.0.0.1:9999")
	t.Setenv("NEXUS_PAIRS", "NXS/BTC")
	t.Setenv("NEXUS_POLL", "2m")
	t.Setenv("NEXUS_DEPTH", "not-a-number")

	cfg, err := ParseClientFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.API.URL)
	assert.Equal(t, []models.MarketSymbol{{Base: "NXS", Quote: "BTC"}}, cfg.Pairs)
	assert.Equal(t, 2*time.Minute, cfg.Poll)
	assert.Equal(t, 15, cfg.Depth, "Unparseable env values fall back to the default")

	// flags win over the environment
	cfg, err = ParseClientFlags([]string{"--api", "http://other"})
	require.NoError(t, err)
	assert.Equal(t, "http://other", cfg.API.URL)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("NEXUS_LOG_LEVEL=debug\n"), 0o600))

	t.Setenv("NEXUS_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("NEXUS_LOG_LEVEL"))

	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "debug", os.Getenv("NEXUS_LOG_LEVEL"))

	assert.NoError(t, LoadEnv(filepath.Join(dir, "missing.env")), "A missing file is not an error")
}
