// Package universe filters venue tokens against competition eligibility
// thresholds.
package universe

import (
	"fmt"
	"log/slog"

	"github.com/blackcatdeath-dev/recall-ai-agent/internal/domain"
)

// Filter holds minimum eligibility thresholds for tracked tokens.
type Filter struct {
	MinAgeHours  float64
	MinVolume24h float64
	MinLiquidity float64
	MinFDV       float64

	logger *slog.Logger
}

// NewFilter creates a Filter with the given thresholds.
func NewFilter(minAgeHours, minVolume24h, minLiquidity, minFDV float64, logger *slog.Logger) *Filter {
	return &Filter{
		MinAgeHours:  minAgeHours,
		MinVolume24h: minVolume24h,
		MinLiquidity: minLiquidity,
		MinFDV:       minFDV,
		logger:       logger.With(slog.String("component", "universe")),
	}
}

// Eligible checks a token against every threshold and returns the first
// failing reason.
func (f *Filter) Eligible(tok domain.TokenInfo) (bool, string) {
	if tok.AgeHours < f.MinAgeHours {
		return false, fmt.Sprintf("age %.0fh < %.0fh", tok.AgeHours, f.MinAgeHours)
	}
	if tok.Volume24h < f.MinVolume24h {
		return false, fmt.Sprintf("vol24h $%.0f < $%.0f", tok.Volume24h, f.MinVolume24h)
	}
	if tok.Liquidity < f.MinLiquidity {
		return false, fmt.Sprintf("liquidity $%.0f < $%.0f", tok.Liquidity, f.MinLiquidity)
	}
	if tok.FDV < f.MinFDV {
		return false, fmt.Sprintf("fdv $%.0f < $%.0f", tok.FDV, f.MinFDV)
	}
	return true, "OK"
}

// Apply returns only the eligible tokens from the given list, logging each
// rejection reason at debug level.
func (f *Filter) Apply(tokens []domain.TokenInfo) []domain.TokenInfo {
	eligible := make([]domain.TokenInfo, 0, len(tokens))
	for _, tok := range tokens {
		ok, reason := f.Eligible(tok)
		if ok {
			eligible = append(eligible, tok)
			continue
		}
		f.logger.Debug("token rejected",
			slog.String("symbol", tok.Symbol),
			slog.String("reason", reason),
		)
	}
	f.logger.Info("token filter applied",
		slog.Int("eligible", len(eligible)),
		slog.Int("total", len(tokens)),
	)
	return eligible
}
