package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns defaults patched into a valid trade-mode config.
func validConfig() Config {
	cfg := Defaults()
	cfg.Recall.APIKey = "test-key"
	cfg.Universe.Tokens = map[string]TokenConfig{
		"USDC": {Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", Chain: "evm", Specific: "eth"},
		"WETH": {Address: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", Chain: "evm", Specific: "eth"},
	}
	return cfg
}

func TestValidate_AcceptsValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RejectsZEntryNotAboveZExit(t *testing.T) {
	cfg := validConfig()
	cfg.Strategy.ZEntry = 0.2
	cfg.Strategy.ZExit = 0.2

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "z_entry")
}

func TestValidate_RejectsNonPositiveZEntry(t *testing.T) {
	cfg := validConfig()
	cfg.Strategy.ZEntry = 0
	cfg.Strategy.ZExit = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "z_entry must be > 0")
}

func TestValidate_RequiresAPIKeyInTradeMode(t *testing.T) {
	cfg := validConfig()
	cfg.Recall.APIKey = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestValidate_MonitorModeWithoutAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.Recall.APIKey = ""
	cfg.Mode = "monitor"

	assert.NoError(t, cfg.Validate())
}

func TestValidate_RequiresCashSymbolInUniverse(t *testing.T) {
	cfg := validConfig()
	cfg.Universe.CashSymbol = "USDT"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cash_symbol")
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "backtest"
	cfg.Strategy.BarSeconds = 0
	cfg.Risk.PerTradeUSD = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "bar_seconds")
	assert.Contains(t, err.Error(), "per_trade_usd")
}

func TestValidate_RejectsCashFracAtOne(t *testing.T) {
	cfg := validConfig()
	cfg.Portfolio.TargetCashFrac = 1.0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target_cash_frac")
}

func TestBaseURL_SelectsByEnv(t *testing.T) {
	r := RecallConfig{
		Env:           "sandbox",
		ProductionURL: "https://prod.example",
		SandboxURL:    "https://sandbox.example",
	}
	assert.Equal(t, "https://sandbox.example", r.BaseURL())

	r.Env = "production"
	assert.Equal(t, "https://prod.example", r.BaseURL())
}

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
mode = "monitor"
log_level = "debug"

[strategy]
lookback_short = 10
bar_seconds = 60

[universe]
cash_symbol = "USDC"

[universe.tokens.USDC]
address = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
chain = "evm"
specific = "eth"

[portfolio]
rebalance_every = "5m"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "monitor", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10, cfg.Strategy.LookbackShort)
	assert.Equal(t, 60, cfg.Strategy.BarSeconds)
	// Untouched fields keep their defaults.
	assert.Equal(t, 120, cfg.Strategy.LookbackLong)
	assert.Equal(t, 5*time.Minute, cfg.Portfolio.RebalanceEvery.Duration)
	assert.Contains(t, cfg.Universe.Tokens, "USDC")
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`mode = "trade"`), 0o644))

	t.Setenv("RECALLBOT_MODE", "monitor")
	t.Setenv("RECALLBOT_API_KEY", "env-key")
	t.Setenv("RECALLBOT_RISK_PER_TRADE_USD", "42.5")
	t.Setenv("RECALLBOT_RATELIMIT_MAX_WAIT", "45s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "monitor", cfg.Mode)
	assert.Equal(t, "env-key", cfg.Recall.APIKey)
	assert.Equal(t, 42.5, cfg.Risk.PerTradeUSD)
	assert.Equal(t, 45*time.Second, cfg.RateLimit.MaxWait.Duration)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestDurationUnmarshalText(t *testing.T) {
	var d duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration)

	assert.Error(t, d.UnmarshalText([]byte("not-a-duration")))
}
