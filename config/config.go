package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"tickbacktest/internal/adapters/logger"
	"tickbacktest/internal/ports"
	"tickbacktest/internal/strategy"
)

// Strategy names accepted in STRATEGY.
const (
	StrategyStochastic  = "stochastic"
	StrategyRSI         = "rsi"
	StrategyMACrossover = "ma_crossover"
)

// Config holds all application configuration.
type Config struct {
	// Run parameters
	Strategy    string
	Symbol      string
	BucketMs    int64   // Candle bucket length in milliseconds
	InitialCash float64 // Starting balance for the run
	TicksFile   string  // JSONL tick input
	RunID       string  // Label for the recorded trades; empty means autogenerate

	// Risk guards; zero disables a guard
	MaxEntryPrice float64
	MaxQuantity   float64

	// Strategy parameters, validated by the strategy constructors
	Stochastic  strategy.StochasticConfig
	RSI         strategy.RSIConfig
	MACrossover strategy.MACrossoverConfig

	// Binance API (fetch tool only)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Database
	DBPath string

	// Logging
	LogLevel  zerolog.Level
	LogFormat string // "json" (zerolog) or "text" (plain lines)
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	cfg.Strategy = strings.ToLower(getEnv("STRATEGY", StrategyStochastic))
	switch cfg.Strategy {
	case StrategyStochastic, StrategyRSI, StrategyMACrossover:
	default:
		errs = append(errs, fmt.Sprintf("unknown STRATEGY %q (want %s, %s or %s)",
			cfg.Strategy, StrategyStochastic, StrategyRSI, StrategyMACrossover))
	}

	cfg.Symbol = getEnv("SYMBOL", "ETHUSDT")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}

	cfg.BucketMs, err = getEnvAsInt64Required("BUCKET_MS", 60_000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid BUCKET_MS: %v", err))
	} else if cfg.BucketMs <= 0 {
		errs = append(errs, "BUCKET_MS must be positive")
	}

	cfg.InitialCash, err = getEnvAsFloatRequired("INITIAL_CASH", 10_000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid INITIAL_CASH: %v", err))
	} else if cfg.InitialCash <= 0 {
		errs = append(errs, "INITIAL_CASH must be positive")
	}

	cfg.TicksFile = getEnv("TICKS_FILE", "./data/ticks.jsonl")
	cfg.RunID = getEnv("RUN_ID", "")

	cfg.MaxEntryPrice, err = getEnvAsFloatRequired("MAX_ENTRY_PRICE", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_ENTRY_PRICE: %v", err))
	} else if cfg.MaxEntryPrice < 0 {
		errs = append(errs, "MAX_ENTRY_PRICE cannot be negative")
	}

	cfg.MaxQuantity, err = getEnvAsFloatRequired("MAX_QUANTITY", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_QUANTITY: %v", err))
	} else if cfg.MaxQuantity < 0 {
		errs = append(errs, "MAX_QUANTITY cannot be negative")
	}

	// Strategy parameters. Range checks live in the strategy
	// constructors; the config layer only parses.
	cfg.Stochastic = strategy.StochasticConfig{
		KPeriod:             getEnvAsInt("STOCH_K_PERIOD", 14),
		DPeriod:             getEnvAsInt("STOCH_D_PERIOD", 3),
		OversoldThreshold:   getEnvAsFloat("STOCH_OVERSOLD", 20),
		OverboughtThreshold: getEnvAsFloat("STOCH_OVERBOUGHT", 80),
		PositionSize:        getEnvAsFloat("POSITION_SIZE", 1),
		ATRPeriod:           getEnvAsInt("STOCH_ATR_PERIOD", 14),
		ATRMultiplier:       getEnvAsFloat("STOCH_ATR_MULTIPLIER", 2),
	}
	cfg.RSI = strategy.RSIConfig{
		Period:           getEnvAsInt("RSI_PERIOD", 14),
		PositionSize:     getEnvAsFloat("POSITION_SIZE", 1),
		Oversold:         getEnvAsFloat("RSI_OVERSOLD", 30),
		Overbought:       getEnvAsFloat("RSI_OVERBOUGHT", 70),
		UseDynamicLevels: getEnvAsBool("RSI_DYNAMIC_LEVELS", false),
		VolatilityWindow: getEnvAsInt("RSI_VOLATILITY_WINDOW", 20),
		OversoldMin:      getEnvAsFloat("RSI_OVERSOLD_MIN", 20),
		OversoldMax:      getEnvAsFloat("RSI_OVERSOLD_MAX", 35),
		OverboughtMin:    getEnvAsFloat("RSI_OVERBOUGHT_MIN", 65),
		OverboughtMax:    getEnvAsFloat("RSI_OVERBOUGHT_MAX", 80),
	}
	cfg.MACrossover = strategy.MACrossoverConfig{
		FastPeriod:            getEnvAsInt("MA_FAST_PERIOD", 8),
		SlowPeriod:            getEnvAsInt("MA_SLOW_PERIOD", 21),
		MinSeparationPct:      getEnvAsFloat("MA_MIN_SEPARATION_PCT", 0.1),
		MinBarsSinceCross:     getEnvAsInt("MA_MIN_BARS_SINCE_CROSS", 3),
		PositionSize:          getEnvAsFloat("POSITION_SIZE", 1),
		UseVolumeConfirmation: getEnvAsBool("MA_VOLUME_CONFIRMATION", false),
		VolumeSurgeThreshold:  getEnvAsFloat("MA_VOLUME_SURGE_THRESHOLD", 1.5),
		VolumeAvgPeriod:       getEnvAsInt("MA_VOLUME_AVG_PERIOD", 20),
	}

	// Binance API; only the fetch tool needs keys and aggTrades is
	// public anyway.
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/backtest.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "json"))
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be json or text, got %q", cfg.LogFormat))
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// NewLogger builds the configured ports.Logger adapter.
func (c *Config) NewLogger() ports.Logger {
	if c.LogFormat == "text" {
		return logger.NewStd(c.LogLevel)
	}
	return logger.New(c.LogLevel)
}

// NewStrategy builds the configured strategy variant.
func (c *Config) NewStrategy(log ports.Logger) (strategy.Strategy, error) {
	switch c.Strategy {
	case StrategyStochastic:
		return strategy.NewStochastic(c.Stochastic, c.Symbol, c.InitialCash, log)
	case StrategyRSI:
		return strategy.NewRSI(c.RSI, c.Symbol, c.InitialCash, log)
	case StrategyMACrossover:
		return strategy.NewMACrossover(c.MACrossover, c.Symbol, c.InitialCash, log)
	default:
		return nil, fmt.Errorf("unknown strategy %q", c.Strategy)
	}
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// For non-required fields, default is acceptable.
		return defaultValue
	}
	return value
}

func getEnvAsInt64Required(key string, defaultValue int64) (int64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
