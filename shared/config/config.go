package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/linluma/nexusdex/shared/models"
)

const (
	DefaultAPIURL = "https://api.distordia.com"
	DefaultPairs  = "DIST/NXS,DIST/USDD"
)

// Output formats
const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// APIConfig holds settings shared by everything that talks to a Nexus node
type APIConfig struct {
	URL               string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxRetries        uint64
}

// DexConfig holds configuration for the trade preview command
type DexConfig struct {
	API       APIConfig
	Pair      models.MarketSymbol
	Side      models.Side
	Amount    float64
	Price     float64
	Depth     int
	Format    string
	LogLevel  string
	LogFormat string
}

// ClientConfig holds configuration for the market watch client
type ClientConfig struct {
	API        APIConfig
	Pairs      []models.MarketSymbol
	Interval   models.Interval
	Poll       time.Duration
	Duration   time.Duration
	Depth      int
	TradeLimit int
	Format     string
	LogLevel   string
	LogFormat  string
}

// LoadEnv reads a .env file into the environment if one exists
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

func apiFlags(fs *pflag.FlagSet) func() APIConfig {
	var (
		url     = fs.String("api", getEnv("NEXUS_API_URL", DefaultAPIURL), "Nexus API base URL")
		timeout = fs.Duration("timeout", getEnvDuration("NEXUS_TIMEOUT", 10*time.Second), "Per-request timeout")
		rps     = fs.Float64("rps", getEnvFloat("NEXUS_RPS", 5), "Maximum API requests per second")
		retries = fs.Uint64("retries", uint64(getEnvInt("NEXUS_MAX_RETRIES", 3)), "Retries per request before giving up")
	)
	return func() APIConfig {
		return APIConfig{
			URL:               strings.TrimRight(*url, "/"),
			Timeout:           *timeout,
			RequestsPerSecond: *rps,
			MaxRetries:        *retries,
		}
	}
}

// ParseDexFlags parses command line flags for the trade preview command
func ParseDexFlags(args []string) (*DexConfig, error) {
	fs := pflag.NewFlagSet("dex", pflag.ContinueOnError)
	api := apiFlags(fs)
	var (
		pair      = fs.String("pair", getEnv("NEXUS_PAIR", "DIST/NXS"), "Market pair, BASE/QUOTE")
		side      = fs.String("side", "buy", "Trade direction (buy/sell)")
		amount    = fs.Float64("amount", 0, "Quote currency to spend when buying, base currency to sell when selling")
		price     = fs.Float64("price", 0, "Price limit: maximum when buying, minimum when selling")
		depth     = fs.Int("depth", getEnvInt("NEXUS_DEPTH", 50), "Counter-orders to fetch")
		format    = fs.String("format", FormatTable, "Output format (json/table)")
		logLevel  = fs.String("log-level", getEnv("NEXUS_LOG_LEVEL", "info"), "Log level")
		logFormat = fs.String("log-format", getEnv("NEXUS_LOG_FORMAT", "text"), "Log format (text/json)")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &DexConfig{
		API:       api(),
		Amount:    *amount,
		Price:     *price,
		Depth:     *depth,
		Format:    strings.ToLower(*format),
		LogLevel:  *logLevel,
		LogFormat: *logFormat,
	}

	var err error
	if cfg.Pair, err = models.ParseSymbol(*pair); err != nil {
		return nil, err
	}
	if cfg.Side, err = models.ParseSide(*side); err != nil {
		return nil, err
	}
	if cfg.Amount <= 0 {
		return nil, fmt.Errorf("--amount must be positive, got %v", cfg.Amount)
	}
	if cfg.Price <= 0 {
		return nil, fmt.Errorf("--price must be positive, got %v", cfg.Price)
	}
	if err := validateCommon(cfg.API, cfg.Depth, cfg.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseClientFlags parses command line flags for the watch client
func ParseClientFlags(args []string) (*ClientConfig, error) {
	fs := pflag.NewFlagSet("client", pflag.ContinueOnError)
	api := apiFlags(fs)
	var (
		pairs      = fs.String("pairs", getEnv("NEXUS_PAIRS", DefaultPairs), "Comma-separated market pairs to watch")
		interval   = fs.String("interval", getEnv("NEXUS_INTERVAL", "1d"), "Chart interval (1d/1w/1m/1y)")
		poll       = fs.Duration("poll", getEnvDuration("NEXUS_POLL", 30*time.Second), "Polling period")
		duration   = fs.Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
		depth      = fs.Int("depth", getEnvInt("NEXUS_DEPTH", 15), "Order book depth per side")
		tradeLimit = fs.Int("trades", 20, "Recent trades to show")
		format     = fs.String("format", FormatTable, "Output format (json/table)")
		logLevel   = fs.String("log-level", getEnv("NEXUS_LOG_LEVEL", "info"), "Log level")
		logFormat  = fs.String("log-format", getEnv("NEXUS_LOG_FORMAT", "text"), "Log format (text/json)")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &ClientConfig{
		API:        api(),
		Poll:       *poll,
		Duration:   *duration,
		Depth:      *depth,
		TradeLimit: *tradeLimit,
		Format:     strings.ToLower(*format),
		LogLevel:   *logLevel,
		LogFormat:  *logFormat,
	}

	for _, p := range strings.Split(*pairs, ",") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		symbol, err := models.ParseSymbol(p)
		if err != nil {
			return nil, err
		}
		cfg.Pairs = append(cfg.Pairs, symbol)
	}
	if len(cfg.Pairs) == 0 {
		return nil, errors.New("--pairs: at least one pair is required")
	}

	var err error
	if cfg.Interval, err = models.ParseInterval(*interval); err != nil {
		return nil, err
	}
	if cfg.Poll <= 0 {
		return nil, fmt.Errorf("--poll must be positive, got %v", cfg.Poll)
	}
	if cfg.Duration < 0 {
		return nil, fmt.Errorf("--duration can't be negative, got %v", cfg.Duration)
	}
	if err := validateCommon(cfg.API, cfg.Depth, cfg.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateCommon(api APIConfig, depth int, format string) error {
	if api.URL == "" {
		return errors.New("--api: URL is required")
	}
	if api.RequestsPerSecond <= 0 {
		return fmt.Errorf("--rps must be positive, got %v", api.RequestsPerSecond)
	}
	if depth <= 0 {
		return fmt.Errorf("--depth must be positive, got %d", depth)
	}
	if format != FormatJSON && format != FormatTable {
		return fmt.Errorf("--format %q: want json or table", format)
	}
	return nil
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}
