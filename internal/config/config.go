// Package config defines the top-level configuration for the recall trading
// agent and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by RECALLBOT_* environment variables.
type Config struct {
	Recall    RecallConfig            `toml:"recall"`
	Universe  UniverseConfig          `toml:"universe"`
	Strategy  StrategyConfig          `toml:"strategy"`
	Portfolio PortfolioConfig         `toml:"portfolio"`
	Risk      RiskConfig              `toml:"risk"`
	RateLimit RateLimitConfig         `toml:"ratelimit"`
	Filter    FilterConfig            `toml:"filter"`
	Telemetry TelemetryConfig         `toml:"telemetry"`
	Journal   JournalConfig           `toml:"journal"`
	Archive   ArchiveConfig           `toml:"archive"`
	Mode      string                  `toml:"mode"`
	LogLevel  string                  `toml:"log_level"`
}

// RecallConfig holds venue API endpoints and credentials. The API key is
// normally injected through RECALLBOT_API_KEY rather than written to disk.
type RecallConfig struct {
	Env           string `toml:"env"` // "production" or "sandbox"
	ProductionURL string `toml:"production_url"`
	SandboxURL    string `toml:"sandbox_url"`
	APIKey        string `toml:"api_key"`
}

// BaseURL returns the venue URL selected by Env.
func (r RecallConfig) BaseURL() string {
	if strings.EqualFold(r.Env, "sandbox") {
		return r.SandboxURL
	}
	return r.ProductionURL
}

// TokenConfig locates one token of the trading universe on its chain.
type TokenConfig struct {
	Address  string `toml:"address"`
	Chain    string `toml:"chain"`
	Specific string `toml:"specific"`
}

// UniverseConfig enumerates the tracked tokens. CashSymbol names the entry
// used as the quote/cash asset; it must be present in Tokens.
type UniverseConfig struct {
	CashSymbol string                 `toml:"cash_symbol"`
	Tokens     map[string]TokenConfig `toml:"tokens"`
}

// StrategyConfig holds momentum signal parameters.
type StrategyConfig struct {
	LookbackShort  int     `toml:"lookback_short"`
	LookbackLong   int     `toml:"lookback_long"`
	VolLookback    int     `toml:"vol_lookback"`
	ZEntry         float64 `toml:"z_entry"`
	ZExit          float64 `toml:"z_exit"`
	MinMomentum    float64 `toml:"min_momentum"`
	BarSeconds     int     `toml:"bar_seconds"`
	MinReadyAssets int     `toml:"min_ready_assets"`
	MaxAssets      int     `toml:"max_assets"`
}

// PortfolioConfig holds allocation parameters.
type PortfolioConfig struct {
	RebalanceEvery duration `toml:"rebalance_every"`
	TargetCashFrac float64  `toml:"target_cash_frac"`
}

// RiskConfig holds the risk manager limits.
type RiskConfig struct {
	MaxDailyTrades       int     `toml:"max_daily_trades"`
	MinDailyTrades       int     `toml:"min_daily_trades"`
	CooldownSeconds      int     `toml:"cooldown_seconds"`
	MaxGrossExposureUSD  float64 `toml:"max_gross_exposure_usd"`
	PerTradeUSD          float64 `toml:"per_trade_usd"`
	MaxTradeEquityFrac   float64 `toml:"max_trade_equity_frac"`
	MaxAssetExposureFrac float64 `toml:"max_asset_exposure_frac"`
	MaxDrawdownStop      float64 `toml:"max_drawdown_stop"`
	SlippageTolerancePct float64 `toml:"slippage_tolerance_pct"`
}

// RateLimitConfig holds per-category and global request quotas. Category
// windows span one minute; the global hourly window spans one hour.
type RateLimitConfig struct {
	TradeOperations int      `toml:"trade_operations"`
	PriceQueries    int      `toml:"price_queries"`
	BalanceChecks   int      `toml:"balance_checks"`
	GlobalRPM       int      `toml:"global_rpm"`
	GlobalRPH       int      `toml:"global_rph"`
	MaxWait         duration `toml:"max_wait"`
}

// FilterConfig holds token eligibility thresholds for universe discovery.
type FilterConfig struct {
	Enabled      bool    `toml:"enabled"`
	MinAgeHours  float64 `toml:"min_age_hours"`
	MinVolume24h float64 `toml:"min_volume_24h"`
	MinLiquidity float64 `toml:"min_liquidity"`
	MinFDV       float64 `toml:"min_fdv"`
	TokenLimit   int     `toml:"token_limit"`
}

// TelemetryConfig holds equity telemetry parameters.
type TelemetryConfig struct {
	CSVPath  string   `toml:"csv_path"`
	LogEvery duration `toml:"log_every"`
}

// JournalConfig holds PostgreSQL connection parameters for the optional
// trade journal.
type JournalConfig struct {
	Enabled      bool   `toml:"enabled"`
	DSN          string `toml:"dsn"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Database     string `toml:"database"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	SSLMode      string `toml:"ssl_mode"`
	PoolMaxConns int    `toml:"pool_max_conns"`
	PoolMinConns int    `toml:"pool_min_conns"`
}

// ArchiveConfig holds S3-compatible object storage parameters for telemetry
// archival.
type ArchiveConfig struct {
	Enabled        bool     `toml:"enabled"`
	Endpoint       string   `toml:"endpoint"`
	Region         string   `toml:"region"`
	Bucket         string   `toml:"bucket"`
	Prefix         string   `toml:"prefix"`
	AccessKey      string   `toml:"access_key"`
	SecretKey      string   `toml:"secret_key"`
	UseSSL         bool     `toml:"use_ssl"`
	ForcePathStyle bool     `toml:"force_path_style"`
	Every          duration `toml:"every"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Recall: RecallConfig{
			Env:           "production",
			ProductionURL: "https://api.competitions.recall.network",
			SandboxURL:    "https://api.sandbox.competitions.recall.network",
		},
		Universe: UniverseConfig{
			CashSymbol: "USDC",
			Tokens:     map[string]TokenConfig{},
		},
		Strategy: StrategyConfig{
			LookbackShort:  20,
			LookbackLong:   120,
			VolLookback:    120,
			ZEntry:         1.0,
			ZExit:          0.2,
			MinMomentum:    0.0,
			BarSeconds:     30,
			MinReadyAssets: 1,
			MaxAssets:      5,
		},
		Portfolio: PortfolioConfig{
			RebalanceEvery: duration{2 * time.Minute},
			TargetCashFrac: 0.2,
		},
		Risk: RiskConfig{
			MaxDailyTrades:       60,
			MinDailyTrades:       3,
			CooldownSeconds:      30,
			MaxGrossExposureUSD:  2000,
			PerTradeUSD:          25,
			MaxTradeEquityFrac:   0.10,
			MaxAssetExposureFrac: 0.35,
			MaxDrawdownStop:      0.20,
			SlippageTolerancePct: 0.5,
		},
		RateLimit: RateLimitConfig{
			TradeOperations: 100,
			PriceQueries:    300,
			BalanceChecks:   30,
			GlobalRPM:       3000,
			GlobalRPH:       10000,
			MaxWait:         duration{30 * time.Second},
		},
		Filter: FilterConfig{
			Enabled:      false,
			MinAgeHours:  168,
			MinVolume24h: 500_000,
			MinLiquidity: 250_000,
			MinFDV:       1_000_000,
			TokenLimit:   50,
		},
		Telemetry: TelemetryConfig{
			CSVPath:  "telemetry_equity.csv",
			LogEvery: duration{5 * time.Minute},
		},
		Journal: JournalConfig{
			Enabled:      false,
			Host:         "localhost",
			Port:         5432,
			Database:     "postgres",
			User:         "postgres",
			SSLMode:      "disable",
			PoolMaxConns: 4,
			PoolMinConns: 1,
		},
		Archive: ArchiveConfig{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "recallbot-telemetry",
			Prefix:         "telemetry",
			UseSSL:         false,
			ForcePathStyle: true,
			Every:          duration{24 * time.Hour},
		},
		Mode:     "trade",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"trade":   true,
	"monitor": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: trade, monitor)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Venue
	if c.Recall.BaseURL() == "" {
		errs = append(errs, "recall: base URL for env "+c.Recall.Env+" must not be empty")
	}
	if strings.ToLower(c.Mode) == "trade" && c.Recall.APIKey == "" {
		errs = append(errs, "recall: api_key is required for trade mode (set RECALLBOT_API_KEY)")
	}

	// Universe
	if len(c.Universe.Tokens) == 0 {
		errs = append(errs, "universe: at least one token must be configured")
	}
	if _, ok := c.Universe.Tokens[c.Universe.CashSymbol]; !ok {
		errs = append(errs, fmt.Sprintf("universe: cash_symbol %q must appear in universe.tokens", c.Universe.CashSymbol))
	}
	for sym, tok := range c.Universe.Tokens {
		if tok.Address == "" {
			errs = append(errs, fmt.Sprintf("universe: token %s has no address", sym))
		}
	}

	// Strategy — z_entry <= z_exit leaves the weight ramp undefined.
	if c.Strategy.ZEntry <= 0 {
		errs = append(errs, fmt.Sprintf("strategy: z_entry must be > 0, got %g", c.Strategy.ZEntry))
	}
	if c.Strategy.ZEntry <= c.Strategy.ZExit {
		errs = append(errs, fmt.Sprintf("strategy: z_entry (%g) must be strictly greater than z_exit (%g)", c.Strategy.ZEntry, c.Strategy.ZExit))
	}
	if c.Strategy.LookbackShort < 2 {
		errs = append(errs, "strategy: lookback_short must be >= 2")
	}
	if c.Strategy.LookbackLong <= c.Strategy.LookbackShort {
		errs = append(errs, "strategy: lookback_long must exceed lookback_short")
	}
	if c.Strategy.VolLookback < 2 {
		errs = append(errs, "strategy: vol_lookback must be >= 2")
	}
	if c.Strategy.BarSeconds <= 0 {
		errs = append(errs, "strategy: bar_seconds must be > 0")
	}
	if c.Strategy.MinReadyAssets < 1 {
		errs = append(errs, "strategy: min_ready_assets must be >= 1")
	}
	if c.Strategy.MaxAssets < 1 {
		errs = append(errs, "strategy: max_assets must be >= 1")
	}

	// Portfolio
	if c.Portfolio.TargetCashFrac < 0 || c.Portfolio.TargetCashFrac >= 1 {
		errs = append(errs, fmt.Sprintf("portfolio: target_cash_frac must be in [0,1), got %g", c.Portfolio.TargetCashFrac))
	}
	if c.Portfolio.RebalanceEvery.Duration <= 0 {
		errs = append(errs, "portfolio: rebalance_every must be > 0")
	}

	// Risk
	if c.Risk.MaxDailyTrades < 1 {
		errs = append(errs, "risk: max_daily_trades must be >= 1")
	}
	if c.Risk.MinDailyTrades < 0 {
		errs = append(errs, "risk: min_daily_trades must be >= 0")
	}
	if c.Risk.CooldownSeconds < 0 {
		errs = append(errs, "risk: cooldown_seconds must be >= 0")
	}
	if c.Risk.PerTradeUSD <= 0 {
		errs = append(errs, "risk: per_trade_usd must be > 0")
	}
	if c.Risk.MaxDrawdownStop <= 0 || c.Risk.MaxDrawdownStop >= 1 {
		errs = append(errs, fmt.Sprintf("risk: max_drawdown_stop must be in (0,1), got %g", c.Risk.MaxDrawdownStop))
	}
	if c.Risk.MaxTradeEquityFrac <= 0 || c.Risk.MaxTradeEquityFrac > 1 {
		errs = append(errs, "risk: max_trade_equity_frac must be in (0,1]")
	}
	if c.Risk.MaxAssetExposureFrac <= 0 || c.Risk.MaxAssetExposureFrac > 1 {
		errs = append(errs, "risk: max_asset_exposure_frac must be in (0,1]")
	}

	// Rate limits
	if c.RateLimit.TradeOperations < 1 || c.RateLimit.PriceQueries < 1 || c.RateLimit.BalanceChecks < 1 {
		errs = append(errs, "ratelimit: category quotas must be >= 1")
	}
	if c.RateLimit.GlobalRPM < 1 || c.RateLimit.GlobalRPH < 1 {
		errs = append(errs, "ratelimit: global quotas must be >= 1")
	}
	if c.RateLimit.MaxWait.Duration <= 0 {
		errs = append(errs, "ratelimit: max_wait must be > 0")
	}

	// Telemetry
	if c.Telemetry.CSVPath == "" {
		errs = append(errs, "telemetry: csv_path must not be empty")
	}
	if c.Telemetry.LogEvery.Duration <= 0 {
		errs = append(errs, "telemetry: log_every must be > 0")
	}

	// Journal
	if c.Journal.Enabled {
		if strings.TrimSpace(c.Journal.DSN) == "" && c.Journal.Host == "" {
			errs = append(errs, "journal: host must not be empty (or set journal.dsn)")
		}
		if c.Journal.PoolMaxConns < 1 {
			errs = append(errs, "journal: pool_max_conns must be >= 1")
		}
	}

	// Archive
	if c.Archive.Enabled {
		if c.Archive.Endpoint == "" {
			errs = append(errs, "archive: endpoint must not be empty")
		}
		if c.Archive.Bucket == "" {
			errs = append(errs, "archive: bucket must not be empty")
		}
		if c.Archive.Every.Duration <= 0 {
			errs = append(errs, "archive: every must be > 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
