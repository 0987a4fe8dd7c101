package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies RECALLBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known RECALLBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Venue ──
	setStr(&cfg.Recall.Env, "RECALLBOT_ENV")
	setStr(&cfg.Recall.ProductionURL, "RECALLBOT_PRODUCTION_URL")
	setStr(&cfg.Recall.SandboxURL, "RECALLBOT_SANDBOX_URL")
	setStr(&cfg.Recall.APIKey, "RECALLBOT_API_KEY")
	setStr(&cfg.Recall.APIKey, "RECALL_API_KEY") // compatibility alias

	// ── Strategy ──
	setInt(&cfg.Strategy.LookbackShort, "RECALLBOT_STRATEGY_LOOKBACK_SHORT")
	setInt(&cfg.Strategy.LookbackLong, "RECALLBOT_STRATEGY_LOOKBACK_LONG")
	setInt(&cfg.Strategy.VolLookback, "RECALLBOT_STRATEGY_VOL_LOOKBACK")
	setFloat64(&cfg.Strategy.ZEntry, "RECALLBOT_STRATEGY_Z_ENTRY")
	setFloat64(&cfg.Strategy.ZExit, "RECALLBOT_STRATEGY_Z_EXIT")
	setFloat64(&cfg.Strategy.MinMomentum, "RECALLBOT_STRATEGY_MIN_MOMENTUM")
	setInt(&cfg.Strategy.BarSeconds, "RECALLBOT_STRATEGY_BAR_SECONDS")
	setInt(&cfg.Strategy.MaxAssets, "RECALLBOT_STRATEGY_MAX_ASSETS")

	// ── Portfolio ──
	setDuration(&cfg.Portfolio.RebalanceEvery, "RECALLBOT_PORTFOLIO_REBALANCE_EVERY")
	setFloat64(&cfg.Portfolio.TargetCashFrac, "RECALLBOT_PORTFOLIO_TARGET_CASH_FRAC")

	// ── Risk ──
	setInt(&cfg.Risk.MaxDailyTrades, "RECALLBOT_RISK_MAX_DAILY_TRADES")
	setInt(&cfg.Risk.MinDailyTrades, "RECALLBOT_RISK_MIN_DAILY_TRADES")
	setInt(&cfg.Risk.CooldownSeconds, "RECALLBOT_RISK_COOLDOWN_SECONDS")
	setFloat64(&cfg.Risk.MaxGrossExposureUSD, "RECALLBOT_RISK_MAX_GROSS_EXPOSURE_USD")
	setFloat64(&cfg.Risk.PerTradeUSD, "RECALLBOT_RISK_PER_TRADE_USD")
	setFloat64(&cfg.Risk.MaxDrawdownStop, "RECALLBOT_RISK_MAX_DRAWDOWN_STOP")
	setFloat64(&cfg.Risk.SlippageTolerancePct, "RECALLBOT_RISK_SLIPPAGE_TOLERANCE_PCT")

	// ── Rate limits ──
	setInt(&cfg.RateLimit.TradeOperations, "RECALLBOT_RATELIMIT_TRADE_OPERATIONS")
	setInt(&cfg.RateLimit.PriceQueries, "RECALLBOT_RATELIMIT_PRICE_QUERIES")
	setInt(&cfg.RateLimit.BalanceChecks, "RECALLBOT_RATELIMIT_BALANCE_CHECKS")
	setInt(&cfg.RateLimit.GlobalRPM, "RECALLBOT_RATELIMIT_GLOBAL_RPM")
	setInt(&cfg.RateLimit.GlobalRPH, "RECALLBOT_RATELIMIT_GLOBAL_RPH")
	setDuration(&cfg.RateLimit.MaxWait, "RECALLBOT_RATELIMIT_MAX_WAIT")

	// ── Telemetry ──
	setStr(&cfg.Telemetry.CSVPath, "RECALLBOT_TELEMETRY_CSV_PATH")
	setDuration(&cfg.Telemetry.LogEvery, "RECALLBOT_TELEMETRY_LOG_EVERY")

	// ── Journal ──
	setBool(&cfg.Journal.Enabled, "RECALLBOT_JOURNAL_ENABLED")
	setStr(&cfg.Journal.DSN, "RECALLBOT_JOURNAL_DSN")
	setStr(&cfg.Journal.Host, "RECALLBOT_JOURNAL_HOST")
	setInt(&cfg.Journal.Port, "RECALLBOT_JOURNAL_PORT")
	setStr(&cfg.Journal.Database, "RECALLBOT_JOURNAL_DATABASE")
	setStr(&cfg.Journal.User, "RECALLBOT_JOURNAL_USER")
	setStr(&cfg.Journal.Password, "RECALLBOT_JOURNAL_PASSWORD")
	setStr(&cfg.Journal.SSLMode, "RECALLBOT_JOURNAL_SSLMODE")

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "RECALLBOT_ARCHIVE_ENABLED")
	setStr(&cfg.Archive.Endpoint, "RECALLBOT_ARCHIVE_ENDPOINT")
	setStr(&cfg.Archive.Region, "RECALLBOT_ARCHIVE_REGION")
	setStr(&cfg.Archive.Bucket, "RECALLBOT_ARCHIVE_BUCKET")
	setStr(&cfg.Archive.Prefix, "RECALLBOT_ARCHIVE_PREFIX")
	setStr(&cfg.Archive.AccessKey, "RECALLBOT_ARCHIVE_ACCESS_KEY")
	setStr(&cfg.Archive.SecretKey, "RECALLBOT_ARCHIVE_SECRET_KEY")
	setBool(&cfg.Archive.UseSSL, "RECALLBOT_ARCHIVE_USE_SSL")
	setBool(&cfg.Archive.ForcePathStyle, "RECALLBOT_ARCHIVE_FORCE_PATH_STYLE")
	setDuration(&cfg.Archive.Every, "RECALLBOT_ARCHIVE_EVERY")

	// ── Top-level ──
	setStr(&cfg.Mode, "RECALLBOT_MODE")
	setStr(&cfg.LogLevel, "RECALLBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
