package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"traderBot/internal/adapters/logger"
	"traderBot/internal/domain"
	"traderBot/internal/ports"
	"traderBot/internal/risk"
)

// Market data sources.
const (
	SourceBinance = "binance"
	SourceCSV     = "csv"
)

// Daily state backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Config holds all application configuration.
type Config struct {
	// Binance API
	APIKey       string
	SecretKey    string
	IsTestnet    bool
	QuoteAsset   string
	ContractSize float64

	// Run loop
	Symbol           string
	PollInterval     time.Duration
	DryRun           bool
	MarketDataSource string
	CSVDataDir       string
	PaperBalance     float64
	PaperPoint       float64 // Tick size reported by the paper account

	// Strategies
	StrategyConfigPath string
	CombinationMethod  domain.CombinationMethod
	SignalHistorySize  int
	ParallelStrategies int

	Risk risk.Config

	// Daily state
	DailyStateBackend string
	DBPath            string
	DailyPnLFile      string

	LogLevel    logger.LogLevel
	MetricsAddr string // Empty disables the metrics endpoint
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	p := &parser{}
	cfg := &Config{}

	// Run loop
	cfg.Symbol = strings.ToUpper(getEnv("SYMBOL", "ETHUSDT"))
	cfg.PollInterval = time.Duration(p.int("POLL_INTERVAL_SECONDS", 60)) * time.Second
	if cfg.PollInterval <= 0 {
		p.fail("POLL_INTERVAL_SECONDS must be positive")
	}
	cfg.DryRun = p.bool("DRY_RUN", true)
	cfg.MarketDataSource = strings.ToLower(getEnv("MARKET_DATA_SOURCE", SourceBinance))
	if cfg.MarketDataSource != SourceBinance && cfg.MarketDataSource != SourceCSV {
		p.fail("MARKET_DATA_SOURCE must be %q or %q", SourceBinance, SourceCSV)
	}
	cfg.CSVDataDir = getEnv("CSV_DATA_DIR", "data")
	if cfg.MarketDataSource == SourceCSV && !cfg.DryRun {
		p.fail("MARKET_DATA_SOURCE=csv requires DRY_RUN=true")
	}
	cfg.PaperBalance = p.float("PAPER_BALANCE", 10000)
	if cfg.PaperBalance <= 0 {
		p.fail("PAPER_BALANCE must be positive")
	}
	cfg.PaperPoint = p.float("PAPER_POINT", 0.01)
	if cfg.PaperPoint <= 0 {
		p.fail("PAPER_POINT must be positive")
	}

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = p.bool("IS_TESTNET", true) // Default to testnet for safety
	cfg.QuoteAsset = getEnv("QUOTE_ASSET", "USDT")
	cfg.ContractSize = p.float("CONTRACT_SIZE", 1)
	if cfg.ContractSize <= 0 {
		p.fail("CONTRACT_SIZE must be positive")
	}
	if cfg.NeedsCredentials() {
		if cfg.APIKey == "" {
			p.fail("BINANCE_API_KEY must be set")
		}
		if cfg.SecretKey == "" {
			p.fail("BINANCE_API_SECRET must be set")
		}
	}

	// Strategies
	cfg.StrategyConfigPath = getEnv("STRATEGY_CONFIG_PATH", "")
	cfg.CombinationMethod = domain.CombinationMethod(strings.ToLower(getEnv("COMBINATION_METHOD", string(domain.MethodWeighted))))
	if !cfg.CombinationMethod.Valid() {
		p.fail("COMBINATION_METHOD %q is not one of unanimous, majority, weighted, any", cfg.CombinationMethod)
	}
	cfg.SignalHistorySize = p.int("SIGNAL_HISTORY_SIZE", 100)
	if cfg.SignalHistorySize <= 0 {
		p.fail("SIGNAL_HISTORY_SIZE must be positive")
	}
	cfg.ParallelStrategies = p.int("PARALLEL_STRATEGIES", 4)
	if cfg.ParallelStrategies <= 0 {
		p.fail("PARALLEL_STRATEGIES must be positive")
	}

	cfg.Risk = loadRisk(p)

	// Daily state
	cfg.DailyStateBackend = strings.ToLower(getEnv("DAILY_STATE_BACKEND", BackendSQLite))
	if cfg.DailyStateBackend != BackendSQLite && cfg.DailyStateBackend != BackendJSON {
		p.fail("DAILY_STATE_BACKEND must be %q or %q", BackendSQLite, BackendJSON)
	}
	cfg.DBPath = getEnv("DB_PATH", "./data/trader_bot.db")
	cfg.DailyPnLFile = getEnv("DAILY_PNL_FILE", "logs/daily_pnl.json")

	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.MetricsAddr = getEnv("METRICS_ADDR", "")

	if err := p.err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NeedsCredentials reports whether any component talks to private Binance endpoints.
func (c *Config) NeedsCredentials() bool {
	return c.MarketDataSource == SourceBinance && !c.DryRun
}

func loadRisk(p *parser) risk.Config {
	d := risk.DefaultConfig()
	rc := risk.Config{
		RiskPercentage:         p.float("RISK_PERCENTAGE", d.RiskPercentage),
		MaxRiskPercentage:      p.float("MAX_RISK_PERCENTAGE", d.MaxRiskPercentage),
		MinLotSize:             p.float("MIN_LOT_SIZE", d.MinLotSize),
		MaxLotSize:             p.float("MAX_LOT_SIZE", d.MaxLotSize),
		SLMethod:               domain.DistanceMethod(strings.ToLower(getEnv("SL_METHOD", string(d.SLMethod)))),
		TPMethod:               domain.DistanceMethod(strings.ToLower(getEnv("TP_METHOD", string(d.TPMethod)))),
		FixedSLPips:            p.float("FIXED_SL_PIPS", d.FixedSLPips),
		FixedTPPips:            p.float("FIXED_TP_PIPS", d.FixedTPPips),
		ATRPeriod:              p.int("ATR_PERIOD", d.ATRPeriod),
		ATRTimeframe:           getEnv("ATR_TIMEFRAME", d.ATRTimeframe),
		ATRSLMultiplier:        p.float("ATR_SL_MULTIPLIER", d.ATRSLMultiplier),
		ATRTPMultiplier:        p.float("ATR_TP_MULTIPLIER", d.ATRTPMultiplier),
		SLPercentage:           p.float("SL_PERCENTAGE", d.SLPercentage),
		TPPercentage:           p.float("TP_PERCENTAGE", d.TPPercentage),
		DailyLossLimit:         p.float("DAILY_LOSS_LIMIT", d.DailyLossLimit),
		DailyProfitTarget:      p.float("DAILY_PROFIT_TARGET", d.DailyProfitTarget),
		EnableDailyLimits:      p.bool("ENABLE_DAILY_LIMITS", d.EnableDailyLimits),
		EnableDynamicLotSizing: p.bool("ENABLE_DYNAMIC_LOT_SIZING", d.EnableDynamicLotSizing),
		StaticVolume:           p.float("VOLUME", d.StaticVolume),
		DefaultLotStep:         p.float("DEFAULT_LOT_STEP", d.DefaultLotStep),
	}
	if err := rc.Validate(); err != nil {
		p.errs = append(p.errs, err)
	}
	return rc
}

// parser collects every malformed or invalid value so one run reports all of them.
type parser struct {
	errs []error
}

func (p *parser) fail(format string, args ...interface{}) {
	p.errs = append(p.errs, fmt.Errorf(format, args...))
}

func (p *parser) err() error {
	if len(p.errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: configuration validation failed: %w", ports.ErrConfigurationError, errors.Join(p.errs...))
}

func (p *parser) int(key string, defaultValue int) int {
	v, err := getEnvAsIntRequired(key, defaultValue)
	if err != nil {
		p.errs = append(p.errs, err)
	}
	return v
}

func (p *parser) float(key string, defaultValue float64) float64 {
	v, err := getEnvAsFloatRequired(key, defaultValue)
	if err != nil {
		p.errs = append(p.errs, err)
	}
	return v
}

func (p *parser) bool(key string, defaultValue bool) bool {
	v, err := getEnvAsBoolRequired(key, defaultValue)
	if err != nil {
		p.errs = append(p.errs, err)
	}
	return v
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBoolRequired(key string, defaultValue bool) (bool, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid boolean value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
