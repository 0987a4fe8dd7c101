// Package trader runs the bar-cadence control loop: poll prices, update
// signals, allocate, mark to market, then emit risk-gated exit and
// rebalance orders.
package trader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/blackcatdeath-dev/recall-ai-agent/internal/domain"
	"github.com/blackcatdeath-dev/recall-ai-agent/internal/portfolio"
	"github.com/blackcatdeath-dev/recall-ai-agent/internal/risk"
	"github.com/blackcatdeath-dev/recall-ai-agent/internal/signal"
	"github.com/blackcatdeath-dev/recall-ai-agent/internal/telemetry"
)

// minOrderUSD is the dust floor below which no order is worth submitting.
const minOrderUSD = 1.0

// equitySeriesCap bounds the in-memory equity series used for Sharpe and
// drawdown; older points are dropped once exceeded.
const equitySeriesCap = 20000

// cycleBackoff is the extra sleep after a cycle-level failure before the
// next attempt.
const cycleBackoff = 10 * time.Second

// Venue is the market-data surface the loop polls each bar.
type Venue interface {
	GetPrice(ctx context.Context, tokenAddress, chain, specific string) (float64, error)
	Balances(ctx context.Context) ([]domain.Balance, error)
}

// Trades submits orders. Implemented by executor.Executor.
type Trades interface {
	Buy(ctx context.Context, symbol string, amountUSD float64, reason string) (domain.TradeRecord, error)
	SellToCash(ctx context.Context, symbol string, amountUSD float64, reason string) (domain.TradeRecord, error)
}

// Config holds the loop cadence and sizing parameters.
type Config struct {
	CashSymbol          string
	BarInterval         time.Duration
	MinReadyAssets      int
	MaxAssets           int
	MinMomentum         float64
	TargetCashFrac      float64
	RebalanceEvery      time.Duration
	TelemetryEvery      time.Duration
	PerTradeUSD         float64
	MaxGrossExposureUSD float64
	MaxTradeEquityFrac  float64
}

// Trader owns the per-asset price histories and drives one decision cycle
// per bar. It is single-threaded; nothing here is safe for concurrent use.
type Trader struct {
	venue  Venue
	trades Trades
	engine *signal.Engine
	risk   *risk.Manager
	sink   domain.TelemetrySink
	cfg    Config
	logger *slog.Logger

	// assets are the tracked non-cash tokens, keyed by symbol. canonical
	// maps upper-cased symbols back to the configured key, since the venue
	// does not guarantee balance symbol casing.
	assets    map[string]domain.Asset
	canonical map[string]string
	histories map[string]*signal.Series

	equitySeries  []float64
	lastRebalance time.Time
	lastTelemetry time.Time

	now func() time.Time
}

// New creates a Trader over the tracked universe. assets must not contain
// the cash symbol; histories are sized to the engine's minimum requirement.
func New(venue Venue, trades Trades, engine *signal.Engine, riskMgr *risk.Manager, sink domain.TelemetrySink, assets map[string]domain.Asset, cfg Config, logger *slog.Logger) *Trader {
	histories := make(map[string]*signal.Series, len(assets))
	canonical := make(map[string]string, len(assets))
	for sym := range assets {
		histories[sym] = signal.NewSeries(engine.MinHistory())
		canonical[strings.ToUpper(sym)] = sym
	}
	return &Trader{
		venue:     venue,
		trades:    trades,
		engine:    engine,
		risk:      riskMgr,
		sink:      sink,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "trader")),
		assets:    assets,
		canonical: canonical,
		histories: histories,
		now:       time.Now,
	}
}

// Run drives cycles on the bar interval until ctx is cancelled. Cycle
// failures are logged and retried after a fixed backoff; they never stop
// the loop.
func (t *Trader) Run(ctx context.Context) error {
	t.logger.Info("control loop starting",
		slog.Int("assets", len(t.assets)),
		slog.Duration("bar_interval", t.cfg.BarInterval))

	ticker := time.NewTicker(t.cfg.BarInterval)
	defer ticker.Stop()

	for {
		if err := t.RunCycle(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			t.logger.Error("cycle failed", slog.String("error", err.Error()))
			if err := sleepCtx(ctx, cycleBackoff); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunCycle executes one decision cycle. Per-asset failures are logged and
// skipped; an error return means the whole cycle failed (e.g. the balance
// fetch) and the caller should back off.
func (t *Trader) RunCycle(ctx context.Context) error {
	prices := t.pollPrices(ctx)

	ready := 0
	for _, hist := range t.histories {
		if hist.Ready(t.engine.MinHistory()) {
			ready++
		}
	}
	if ready < t.cfg.MinReadyAssets {
		t.logger.Debug("warming up",
			slog.Int("ready", ready),
			slog.Int("required", t.cfg.MinReadyAssets))
		return nil
	}

	signals := t.computeSignals()
	targets := t.targetWeights(signals)

	snap, err := t.markToMarket(ctx, prices)
	if err != nil {
		return fmt.Errorf("trader: mark to market: %w", err)
	}
	t.recordEquity(snap.EquityUSD)

	t.exitPass(ctx, snap, signals)

	now := t.now()
	if now.Sub(t.lastRebalance) >= t.cfg.RebalanceEvery {
		t.lastRebalance = now
		t.rebalancePass(ctx, snap, targets)
	}

	if now.Sub(t.lastTelemetry) >= t.cfg.TelemetryEvery {
		t.lastTelemetry = now
		t.telemetryPass(snap)
	}
	return nil
}

// pollPrices fetches the current price for every tracked asset and appends
// valid ones to the histories. Failures are asset-scoped. Returns the
// per-cycle price cache keyed by symbol.
func (t *Trader) pollPrices(ctx context.Context) map[string]float64 {
	prices := make(map[string]float64, len(t.assets))
	for sym, asset := range t.assets {
		price, err := t.venue.GetPrice(ctx, asset.Address, asset.Chain, asset.Specific)
		if err != nil {
			t.logger.Warn("price fetch failed",
				slog.String("symbol", sym),
				slog.String("error", err.Error()))
			continue
		}
		if !t.histories[sym].Append(price) {
			t.logger.Warn("invalid price skipped",
				slog.String("symbol", sym),
				slog.Float64("price", price))
			continue
		}
		prices[sym] = price
	}
	return prices
}

// computeSignals runs the signal engine over every ready history.
func (t *Trader) computeSignals() map[string]signal.Signal {
	signals := make(map[string]signal.Signal, len(t.histories))
	for sym, hist := range t.histories {
		if !hist.Ready(t.engine.MinHistory()) {
			continue
		}
		signals[sym] = t.engine.Compute(hist.Values())
	}
	return signals
}

// targetWeights combines allocator output with per-asset signal weights and
// renormalizes so the deployed total equals 1 minus the cash reserve.
func (t *Trader) targetWeights(signals map[string]signal.Signal) map[string]float64 {
	vols := make(map[string]float64)
	for sym, sig := range signals {
		if sig.Momentum > t.cfg.MinMomentum && sig.Weight > 0 {
			vols[sym] = sig.Vol
		}
	}
	if len(vols) == 0 {
		return nil
	}

	alloc := portfolio.InverseVolWeights(vols, true)

	combined := make(map[string]float64, len(alloc))
	sum := 0.0
	for sym, w := range alloc {
		cw := w * signals[sym].Weight
		combined[sym] = cw
		sum += cw
	}
	if sum <= 0 {
		return nil
	}

	deploy := 1 - t.cfg.TargetCashFrac
	targets := make(map[string]float64, len(combined))
	for sym, cw := range combined {
		targets[sym] = cw / sum * deploy
	}
	return targets
}

// markToMarket prices every balance using the per-cycle price cache. Cash
// is valued at parity; balances in untracked tokens are counted separately
// and excluded from equity. Symbol matching is case-insensitive: the venue
// reports casing of its own choosing.
//
// A tracked holding whose feed failed this cycle is valued at its last
// accepted price. Dropping it instead would deflate equity and could latch
// the drawdown stop off a transient outage. A tracked holding with no price
// history at all leaves equity uncomputable and fails the cycle.
func (t *Trader) markToMarket(ctx context.Context, prices map[string]float64) (domain.EquitySnapshot, error) {
	balances, err := t.venue.Balances(ctx)
	if err != nil {
		return domain.EquitySnapshot{}, err
	}

	snap := domain.EquitySnapshot{ExposureByAsset: make(map[string]float64)}
	for _, bal := range balances {
		if bal.Amount <= 0 {
			continue
		}
		if strings.EqualFold(bal.Symbol, t.cfg.CashSymbol) {
			snap.CashUSD += bal.Amount
			continue
		}
		sym, tracked := t.canonical[strings.ToUpper(bal.Symbol)]
		if !tracked {
			snap.IgnoredUSD += bal.Amount
			continue
		}
		price, ok := prices[sym]
		if !ok {
			price = t.histories[sym].Last()
			if price <= 0 {
				return domain.EquitySnapshot{}, fmt.Errorf("trader: no price available for held asset %s", sym)
			}
			t.logger.Warn("marking position at last accepted price",
				slog.String("symbol", sym),
				slog.Float64("price", price))
		}
		usd := bal.Amount * price
		snap.ExposureByAsset[sym] += usd
		snap.TrackedUSD += usd
	}
	snap.EquityUSD = snap.CashUSD + snap.TrackedUSD
	return snap, nil
}

func (t *Trader) recordEquity(equity float64) {
	t.equitySeries = append(t.equitySeries, equity)
	if len(t.equitySeries) > equitySeriesCap {
		t.equitySeries = t.equitySeries[len(t.equitySeries)-equitySeriesCap:]
	}
}

// exitPass sells out of held assets whose signal has gone flat or whose
// momentum dropped below threshold. Exits run through the pretrade gate but
// deliberately skip the size and exposure checks so a position can always
// be unwound.
func (t *Trader) exitPass(ctx context.Context, snap domain.EquitySnapshot, signals map[string]signal.Signal) {
	for sym, exposure := range snap.ExposureByAsset {
		if exposure < minOrderUSD {
			continue
		}
		if _, tracked := t.assets[sym]; !tracked {
			continue
		}
		sig, ok := signals[sym]
		if ok && sig.Weight > 0 && sig.Momentum > t.cfg.MinMomentum {
			continue
		}

		allowed, reason := t.risk.CheckPretrade(snap.EquityUSD, snap.TrackedUSD)
		if !allowed {
			t.logger.Info("exit blocked",
				slog.String("symbol", sym),
				slog.String("reason", reason))
			continue
		}

		sellUSD := exposure
		if bound := snap.EquityUSD * t.cfg.MaxTradeEquityFrac; sellUSD > bound {
			sellUSD = bound
		}
		if sellUSD < minOrderUSD {
			continue
		}

		rec, err := t.trades.SellToCash(ctx, sym, sellUSD, "signal exit")
		if err != nil {
			t.logger.Warn("exit order failed",
				slog.String("symbol", sym),
				slog.String("error", err.Error()))
			continue
		}
		t.risk.MarkTrade()
		t.logger.Info("exited position",
			slog.String("symbol", sym),
			slog.Float64("amount_usd", rec.AmountUSD),
			slog.Float64("z", sig.Z))
	}
}

// rebalancePass moves held exposure toward the target weights, one bounded
// buy per asset, gated by the full risk check chain.
func (t *Trader) rebalancePass(ctx context.Context, snap domain.EquitySnapshot, targets map[string]float64) {
	if len(targets) == 0 {
		return
	}

	allowed, reason := t.risk.CheckPretrade(snap.EquityUSD, snap.TrackedUSD)
	if !allowed {
		t.logger.Info("rebalance blocked", slog.String("reason", reason))
		return
	}

	// Rank by final weight and cap the asset count.
	type ranked struct {
		sym    string
		weight float64
	}
	order := make([]ranked, 0, len(targets))
	for sym, w := range targets {
		order = append(order, ranked{sym, w})
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].weight != order[j].weight {
			return order[i].weight > order[j].weight
		}
		return order[i].sym < order[j].sym
	})
	if len(order) > t.cfg.MaxAssets {
		order = order[:t.cfg.MaxAssets]
	}

	cash := snap.CashUSD
	gross := snap.TrackedUSD
	for _, r := range order {
		targetUSD := r.weight * snap.EquityUSD
		current := snap.ExposureByAsset[r.sym]
		delta := targetUSD - current
		if delta < minOrderUSD {
			continue
		}

		tradeUSD := delta
		if tradeUSD > t.cfg.PerTradeUSD {
			tradeUSD = t.cfg.PerTradeUSD
		}
		if headroom := t.cfg.MaxGrossExposureUSD - gross; tradeUSD > headroom {
			tradeUSD = headroom
		}
		if tradeUSD > cash {
			tradeUSD = cash
		}
		if tradeUSD < minOrderUSD {
			continue
		}

		if ok, reason := t.risk.CheckTradeSize(tradeUSD, snap.EquityUSD); !ok {
			t.logger.Info("trade size rejected",
				slog.String("symbol", r.sym),
				slog.String("reason", reason))
			continue
		}
		if ok, reason := t.risk.CheckAssetExposure(current+tradeUSD, snap.EquityUSD); !ok {
			t.logger.Info("exposure rejected",
				slog.String("symbol", r.sym),
				slog.String("reason", reason))
			continue
		}

		rec, err := t.trades.Buy(ctx, r.sym, tradeUSD, "momentum rebalance")
		if err != nil {
			t.logger.Warn("buy order failed",
				slog.String("symbol", r.sym),
				slog.String("error", err.Error()))
			continue
		}
		t.risk.MarkTrade()
		cash -= tradeUSD
		gross += tradeUSD
		t.logger.Info("rebalanced into position",
			slog.String("symbol", r.sym),
			slog.Float64("amount_usd", rec.AmountUSD),
			slog.Float64("target_weight", r.weight))
	}
}

// telemetryPass persists one equity row. Sink failures are logged only;
// telemetry must never stall trading.
func (t *Trader) telemetryPass(snap domain.EquitySnapshot) {
	row := domain.TelemetryRow{
		Timestamp:       t.now().UTC(),
		EquityUSD:       snap.EquityUSD,
		Sharpe:          telemetry.Sharpe(t.equitySeries, t.cfg.BarInterval.Seconds()),
		MaxDrawdown:     telemetry.MaxDrawdown(t.equitySeries),
		DailyTradeCount: t.risk.DailyTradeCount(),
	}
	if err := t.sink.Append(row); err != nil {
		t.logger.Warn("telemetry append failed", slog.String("error", err.Error()))
		return
	}
	t.logger.Info("telemetry",
		slog.Float64("equity_usd", row.EquityUSD),
		slog.Float64("sharpe", row.Sharpe),
		slog.Float64("max_drawdown", row.MaxDrawdown),
		slog.Int("daily_trades", row.DailyTradeCount))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
