package app

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// TradeMode runs the live control loop, plus the telemetry archiver when
// configured. It blocks until the context is cancelled or a goroutine
// returns a non-context error.
func (a *App) TradeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting trade mode")

	a.checkVenue(ctx, deps)
	a.discoverUniverse(ctx, deps)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Trader.Run(ctx)
	})

	if deps.Archiver != nil {
		g.Go(func() error {
			return deps.Archiver.Run(ctx)
		})
	}

	return g.Wait()
}

// MonitorMode runs the same control loop with a dry-run executor: prices,
// signals, risk decisions and telemetry are all live, but no order reaches
// the venue. The dry-run switch is set during wiring.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode (no orders will be sent)")

	a.checkVenue(ctx, deps)
	a.discoverUniverse(ctx, deps)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Trader.Run(ctx)
	})

	if deps.Archiver != nil {
		g.Go(func() error {
			return deps.Archiver.Run(ctx)
		})
	}

	return g.Wait()
}

// checkVenue probes the venue once at startup. A failed probe is logged,
// not fatal: the loop's own backoff handles a venue that comes up late.
func (a *App) checkVenue(ctx context.Context, deps *Dependencies) {
	if err := deps.Venue.Health(ctx); err != nil {
		a.logger.WarnContext(ctx, "venue health check failed",
			slog.String("error", err.Error()))
		return
	}
	a.logger.InfoContext(ctx, "venue healthy")
}

// discoverUniverse cross-checks the configured tokens against the venue's
// token list when the eligibility filter is enabled. The configured
// universe stays authoritative; this only warns about tokens that fail the
// liquidity screen.
func (a *App) discoverUniverse(ctx context.Context, deps *Dependencies) {
	if deps.Filter == nil {
		return
	}

	type chainKey struct{ chain, specific string }
	seen := make(map[chainKey]bool)
	eligible := make(map[string]bool)

	for _, asset := range deps.Assets {
		key := chainKey{asset.Chain, asset.Specific}
		if seen[key] {
			continue
		}
		seen[key] = true

		tokens, err := deps.Venue.GetTokens(ctx, asset.Chain, asset.Specific, a.cfg.Filter.TokenLimit)
		if err != nil {
			a.logger.WarnContext(ctx, "token discovery failed",
				slog.String("chain", asset.Chain),
				slog.String("error", err.Error()))
			continue
		}
		for _, tok := range deps.Filter.Apply(tokens) {
			eligible[tok.Address] = true
		}
	}

	for sym, asset := range deps.Assets {
		if sym == a.cfg.Universe.CashSymbol {
			continue
		}
		if !eligible[asset.Address] {
			a.logger.WarnContext(ctx, "configured token failed liquidity screen",
				slog.String("symbol", sym),
				slog.String("address", asset.Address))
		}
	}
}
