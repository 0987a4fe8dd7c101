package universe

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blackcatdeath-dev/recall-ai-agent/internal/domain"
)

func testFilter() *Filter {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewFilter(168, 500_000, 250_000, 1_000_000, logger)
}

func healthyToken() domain.TokenInfo {
	return domain.TokenInfo{
		Symbol:    "WETH",
		Address:   "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
		Volume24h: 2_000_000,
		Liquidity: 5_000_000,
		AgeHours:  10_000,
		FDV:       100_000_000,
	}
}

func TestEligible_PassesAllThresholds(t *testing.T) {
	ok, reason := testFilter().Eligible(healthyToken())
	assert.True(t, ok)
	assert.Equal(t, "OK", reason)
}

func TestEligible_RejectsYoungToken(t *testing.T) {
	tok := healthyToken()
	tok.AgeHours = 24

	ok, reason := testFilter().Eligible(tok)
	assert.False(t, ok)
	assert.Contains(t, reason, "age")
}

func TestEligible_RejectsThinVolume(t *testing.T) {
	tok := healthyToken()
	tok.Volume24h = 10_000

	ok, reason := testFilter().Eligible(tok)
	assert.False(t, ok)
	assert.Contains(t, reason, "vol24h")
}

func TestEligible_RejectsThinLiquidity(t *testing.T) {
	tok := healthyToken()
	tok.Liquidity = 1_000

	ok, reason := testFilter().Eligible(tok)
	assert.False(t, ok)
	assert.Contains(t, reason, "liquidity")
}

func TestEligible_RejectsLowFDV(t *testing.T) {
	tok := healthyToken()
	tok.FDV = 500_000

	ok, reason := testFilter().Eligible(tok)
	assert.False(t, ok)
	assert.Contains(t, reason, "fdv")
}

func TestApply_KeepsOnlyEligible(t *testing.T) {
	young := healthyToken()
	young.Symbol = "NEW"
	young.AgeHours = 1

	out := testFilter().Apply([]domain.TokenInfo{healthyToken(), young})

	assert.Len(t, out, 1)
	assert.Equal(t, "WETH", out[0].Symbol)
}
