package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	s3blob "github.com/blackcatdeath-dev/recall-ai-agent/internal/blob/s3"
	"github.com/blackcatdeath-dev/recall-ai-agent/internal/config"
	"github.com/blackcatdeath-dev/recall-ai-agent/internal/domain"
	"github.com/blackcatdeath-dev/recall-ai-agent/internal/executor"
	"github.com/blackcatdeath-dev/recall-ai-agent/internal/platform/recall"
	"github.com/blackcatdeath-dev/recall-ai-agent/internal/ratelimit"
	"github.com/blackcatdeath-dev/recall-ai-agent/internal/risk"
	"github.com/blackcatdeath-dev/recall-ai-agent/internal/signal"
	"github.com/blackcatdeath-dev/recall-ai-agent/internal/store/memory"
	"github.com/blackcatdeath-dev/recall-ai-agent/internal/store/postgres"
	"github.com/blackcatdeath-dev/recall-ai-agent/internal/telemetry"
	"github.com/blackcatdeath-dev/recall-ai-agent/internal/trader"
	"github.com/blackcatdeath-dev/recall-ai-agent/internal/universe"
)

// Dependencies bundles everything the application modes need. Constructed
// by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Venue    *recall.Throttled
	Limiter  *ratelimit.Limiter
	Journal  domain.TradeJournal
	Sink     *telemetry.CSVSink
	Archiver *telemetry.Archiver // nil unless archive.enabled
	Filter   *universe.Filter    // nil unless filter.enabled
	Assets   map[string]domain.Asset
	Trader   *trader.Trader
}

// Wire constructs all concrete dependencies from the configuration. dryRun
// routes orders through the executor without touching the venue.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger, dryRun bool) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Universe ---
	assets := make(map[string]domain.Asset, len(cfg.Universe.Tokens))
	for sym, tok := range cfg.Universe.Tokens {
		assets[sym] = domain.Asset{
			Symbol:   sym,
			Address:  tok.Address,
			Chain:    tok.Chain,
			Specific: tok.Specific,
		}
	}
	deps.Assets = assets

	// --- Venue client behind the rate limiter ---
	deps.Limiter = ratelimit.New(ratelimit.Limits{
		TradeOperations: cfg.RateLimit.TradeOperations,
		PriceQueries:    cfg.RateLimit.PriceQueries,
		BalanceChecks:   cfg.RateLimit.BalanceChecks,
		GlobalRPM:       cfg.RateLimit.GlobalRPM,
		GlobalRPH:       cfg.RateLimit.GlobalRPH,
	})
	client := recall.NewClient(cfg.Recall.BaseURL(), cfg.Recall.APIKey, recall.DefaultRetryPolicy())
	deps.Venue = recall.NewThrottled(client, deps.Limiter, cfg.RateLimit.MaxWait.Duration)

	// --- Trade journal (PostgreSQL when enabled, in-memory otherwise) ---
	if cfg.Journal.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Journal.DSN,
			Host:     cfg.Journal.Host,
			Port:     cfg.Journal.Port,
			Database: cfg.Journal.Database,
			User:     cfg.Journal.User,
			Password: cfg.Journal.Password,
			SSLMode:  cfg.Journal.SSLMode,
			MaxConns: cfg.Journal.PoolMaxConns,
			MinConns: cfg.Journal.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
		deps.Journal = postgres.NewJournal(pgClient.Pool())
	} else {
		deps.Journal = memory.NewJournal(0)
	}

	// --- Telemetry sink and optional S3 archival ---
	sink, err := telemetry.NewCSVSink(cfg.Telemetry.CSVPath)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: telemetry sink: %w", err)
	}
	deps.Sink = sink

	if cfg.Archive.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.Archive.Endpoint,
			Region:         cfg.Archive.Region,
			Bucket:         cfg.Archive.Bucket,
			AccessKey:      cfg.Archive.AccessKey,
			SecretKey:      cfg.Archive.SecretKey,
			UseSSL:         cfg.Archive.UseSSL,
			ForcePathStyle: cfg.Archive.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		writer := s3blob.NewWriter(s3Client)
		runID := uuid.NewString()
		deps.Archiver = telemetry.NewArchiver(sink, writer, cfg.Archive.Prefix, runID, cfg.Archive.Every.Duration, logger)
	}

	// --- Universe discovery filter ---
	if cfg.Filter.Enabled {
		deps.Filter = universe.NewFilter(
			cfg.Filter.MinAgeHours,
			cfg.Filter.MinVolume24h,
			cfg.Filter.MinLiquidity,
			cfg.Filter.MinFDV,
			logger,
		)
	}

	// --- Core pipeline ---
	engine := signal.NewEngine(
		cfg.Strategy.LookbackShort,
		cfg.Strategy.LookbackLong,
		cfg.Strategy.VolLookback,
		cfg.Strategy.ZEntry,
		cfg.Strategy.ZExit,
	)

	riskMgr := risk.NewManager(risk.Params{
		MaxDailyTrades:       cfg.Risk.MaxDailyTrades,
		MinDailyTrades:       cfg.Risk.MinDailyTrades,
		Cooldown:             secondsDuration(cfg.Risk.CooldownSeconds),
		MaxDrawdownStop:      cfg.Risk.MaxDrawdownStop,
		MaxTradeEquityFrac:   cfg.Risk.MaxTradeEquityFrac,
		MaxAssetExposureFrac: cfg.Risk.MaxAssetExposureFrac,
	}, logger)

	exec, err := executor.New(
		deps.Venue,
		deps.Journal,
		assets,
		cfg.Universe.CashSymbol,
		cfg.Risk.SlippageTolerancePct,
		dryRun,
		logger,
	)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: executor: %w", err)
	}

	tracked := make(map[string]domain.Asset, len(assets))
	for sym, asset := range assets {
		if sym == cfg.Universe.CashSymbol {
			continue
		}
		tracked[sym] = asset
	}

	deps.Trader = trader.New(deps.Venue, exec, engine, riskMgr, sink, tracked, trader.Config{
		CashSymbol:          cfg.Universe.CashSymbol,
		BarInterval:         secondsDuration(cfg.Strategy.BarSeconds),
		MinReadyAssets:      cfg.Strategy.MinReadyAssets,
		MaxAssets:           cfg.Strategy.MaxAssets,
		MinMomentum:         cfg.Strategy.MinMomentum,
		TargetCashFrac:      cfg.Portfolio.TargetCashFrac,
		RebalanceEvery:      cfg.Portfolio.RebalanceEvery.Duration,
		TelemetryEvery:      cfg.Telemetry.LogEvery.Duration,
		PerTradeUSD:         cfg.Risk.PerTradeUSD,
		MaxGrossExposureUSD: cfg.Risk.MaxGrossExposureUSD,
		MaxTradeEquityFrac:  cfg.Risk.MaxTradeEquityFrac,
	}, logger)

	return deps, cleanup, nil
}

func secondsDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}
