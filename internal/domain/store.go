package domain

import (
	"context"
	"io"
	"time"
)

// TradeJournal persists executed trades for later analysis. Implementations
// must tolerate duplicate inserts (same ID) without error.
type TradeJournal interface {
	Insert(ctx context.Context, rec TradeRecord) error
	RecentTrades(ctx context.Context, limit int) ([]TradeRecord, error)
}

// BlobWriter uploads a single object to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// TelemetryRow is one line of the equity telemetry series.
type TelemetryRow struct {
	Timestamp       time.Time
	EquityUSD       float64
	Sharpe          float64
	MaxDrawdown     float64
	DailyTradeCount int
}

// TelemetrySink is an append-only destination for telemetry rows.
type TelemetrySink interface {
	Append(row TelemetryRow) error
}
