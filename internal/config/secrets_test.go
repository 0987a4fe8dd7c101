package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactedConfig_MasksSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Recall.APIKey = "super-secret-key"
	cfg.Journal.DSN = "postgres://user:pw@host/db"
	cfg.Journal.Password = "pgpass"
	cfg.Archive.AccessKey = "AKIA123"
	cfg.Archive.SecretKey = "shhh"

	red := RedactedConfig(&cfg)

	assert.Equal(t, "***", red.Recall.APIKey)
	assert.Equal(t, "***", red.Journal.DSN)
	assert.Equal(t, "***", red.Journal.Password)
	assert.Equal(t, "***", red.Archive.AccessKey)
	assert.Equal(t, "***", red.Archive.SecretKey)

	// Non-secret fields survive untouched.
	assert.Equal(t, cfg.Universe.CashSymbol, red.Universe.CashSymbol)
	assert.Equal(t, cfg.Recall.Env, red.Recall.Env)

	// The original is never mutated.
	assert.Equal(t, "super-secret-key", cfg.Recall.APIKey)
	assert.Equal(t, "pgpass", cfg.Journal.Password)
}

func TestRedactedConfig_LeavesEmptySecretsEmpty(t *testing.T) {
	cfg := Defaults()
	red := RedactedConfig(&cfg)

	assert.Empty(t, red.Recall.APIKey)
	assert.Empty(t, red.Journal.DSN)
	assert.Empty(t, red.Archive.SecretKey)
}

func TestRedactedConfig_CopiesTokenMap(t *testing.T) {
	cfg := validConfig()
	red := RedactedConfig(&cfg)

	red.Universe.Tokens["EVIL"] = TokenConfig{Address: "0xevil"}
	assert.NotContains(t, cfg.Universe.Tokens, "EVIL")
}
