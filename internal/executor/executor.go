// Package executor turns sizing decisions into venue trade submissions. It
// owns token addressing, slippage tolerance and the dry-run switch; sizing
// and risk checks happen upstream.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/blackcatdeath-dev/recall-ai-agent/internal/domain"
	"github.com/blackcatdeath-dev/recall-ai-agent/internal/platform/recall"
)

// Venue is the part of the venue client the executor needs.
type Venue interface {
	ExecuteTrade(ctx context.Context, req recall.TradeRequest) (recall.TradeResult, error)
}

// Executor submits buy and sell swaps between the cash asset and tracked
// tokens. When DryRun is set the venue is never called; the trade is logged
// and journaled with a synthetic transaction hash.
type Executor struct {
	venue       Venue
	journal     domain.TradeJournal
	assets      map[string]domain.Asset
	cash        domain.Asset
	slippagePct float64
	dryRun      bool
	logger      *slog.Logger
	now         func() time.Time
}

// New creates an Executor over the given universe. assets must contain the
// cash asset under its own symbol.
func New(venue Venue, journal domain.TradeJournal, assets map[string]domain.Asset, cashSymbol string, slippagePct float64, dryRun bool, logger *slog.Logger) (*Executor, error) {
	cash, ok := assets[cashSymbol]
	if !ok {
		return nil, fmt.Errorf("executor: cash symbol %q not in universe", cashSymbol)
	}
	return &Executor{
		venue:       venue,
		journal:     journal,
		assets:      assets,
		cash:        cash,
		slippagePct: slippagePct,
		dryRun:      dryRun,
		logger:      logger.With(slog.String("component", "executor")),
		now:         time.Now,
	}, nil
}

// Buy swaps amountUSD of cash into symbol.
func (e *Executor) Buy(ctx context.Context, symbol string, amountUSD float64, reason string) (domain.TradeRecord, error) {
	asset, ok := e.assets[symbol]
	if !ok {
		return domain.TradeRecord{}, fmt.Errorf("executor: unknown symbol %q", symbol)
	}
	return e.submit(ctx, domain.OrderSideBuy, symbol, e.cash, asset, amountUSD, reason)
}

// SellToCash swaps amountUSD worth of symbol back into cash.
func (e *Executor) SellToCash(ctx context.Context, symbol string, amountUSD float64, reason string) (domain.TradeRecord, error) {
	asset, ok := e.assets[symbol]
	if !ok {
		return domain.TradeRecord{}, fmt.Errorf("executor: unknown symbol %q", symbol)
	}
	return e.submit(ctx, domain.OrderSideSell, symbol, asset, e.cash, amountUSD, reason)
}

// CrossChainSwap swaps amountUSD worth of fromSymbol directly into toSymbol,
// bypassing the cash leg. Both ends must be tracked assets; the record is
// keyed on the acquired symbol.
func (e *Executor) CrossChainSwap(ctx context.Context, fromSymbol, toSymbol string, amountUSD float64, reason string) (domain.TradeRecord, error) {
	from, ok := e.assets[fromSymbol]
	if !ok {
		return domain.TradeRecord{}, fmt.Errorf("executor: unknown symbol %q", fromSymbol)
	}
	to, ok := e.assets[toSymbol]
	if !ok {
		return domain.TradeRecord{}, fmt.Errorf("executor: unknown symbol %q", toSymbol)
	}
	return e.submit(ctx, domain.OrderSideBuy, toSymbol, from, to, amountUSD, reason)
}

func (e *Executor) submit(ctx context.Context, side domain.OrderSide, symbol string, from, to domain.Asset, amountUSD float64, reason string) (domain.TradeRecord, error) {
	if amountUSD <= 0 {
		return domain.TradeRecord{}, fmt.Errorf("executor: non-positive trade size %.2f for %s", amountUSD, symbol)
	}

	req := recall.TradeRequest{
		BaseToken:            from.Address,
		QuoteToken:           to.Address,
		TradeAmountUSD:       amountUSD,
		Reason:               reason,
		SlippageTolerancePct: e.slippagePct,
		FromChain:            from.Chain,
		FromSpecificChain:    from.Specific,
		ToChain:              to.Chain,
		ToSpecificChain:      to.Specific,
	}

	rec := domain.TradeRecord{
		ID:          uuid.NewString(),
		Symbol:      symbol,
		Side:        side,
		FromToken:   from.Address,
		ToToken:     to.Address,
		AmountUSD:   amountUSD,
		Reason:      reason,
		SubmittedAt: e.now().UTC(),
	}

	if e.dryRun {
		rec.TxHash = "dry-run"
		e.logger.Info("dry-run trade",
			slog.String("symbol", symbol),
			slog.String("side", string(side)),
			slog.Float64("amount_usd", amountUSD),
			slog.String("reason", reason))
		e.record(ctx, rec)
		return rec, nil
	}

	result, err := e.venue.ExecuteTrade(ctx, req)
	if err != nil {
		return domain.TradeRecord{}, fmt.Errorf("executor: %s %s for %.2f USD: %w", side, symbol, amountUSD, err)
	}
	rec.TxHash = result.TxHash

	e.logger.Info("trade executed",
		slog.String("symbol", symbol),
		slog.String("side", string(side)),
		slog.Float64("amount_usd", amountUSD),
		slog.String("tx_hash", rec.TxHash),
		slog.String("reason", reason))
	e.record(ctx, rec)
	return rec, nil
}

// record journals the trade. Journal failures are logged, not returned: a
// filled trade must not be reported as failed because bookkeeping lagged.
func (e *Executor) record(ctx context.Context, rec domain.TradeRecord) {
	if e.journal == nil {
		return
	}
	if err := e.journal.Insert(ctx, rec); err != nil {
		e.logger.Warn("journal insert failed",
			slog.String("trade_id", rec.ID),
			slog.String("error", err.Error()))
	}
}
