package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blackcatdeath-dev/recall-ai-agent/internal/domain"
)

// Journal implements domain.TradeJournal using PostgreSQL.
type Journal struct {
	pool *pgxpool.Pool
}

// NewJournal creates a Journal backed by the given connection pool.
func NewJournal(pool *pgxpool.Pool) *Journal {
	return &Journal{pool: pool}
}

// Insert records one executed trade. Duplicate IDs are silently skipped so
// a retried insert after a partial failure is safe.
func (j *Journal) Insert(ctx context.Context, rec domain.TradeRecord) error {
	const query = `
		INSERT INTO trade_journal (
			id, symbol, side, from_token, to_token,
			amount_usd, reason, tx_hash, submitted_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		) ON CONFLICT (id) DO NOTHING`

	_, err := j.pool.Exec(ctx, query,
		rec.ID, rec.Symbol, string(rec.Side), rec.FromToken, rec.ToToken,
		rec.AmountUSD, rec.Reason, rec.TxHash, rec.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert trade %s: %w", rec.ID, err)
	}
	return nil
}

// RecentTrades returns the most recently submitted trades, newest first.
func (j *Journal) RecentTrades(ctx context.Context, limit int) ([]domain.TradeRecord, error) {
	const query = `
		SELECT id, symbol, side, from_token, to_token,
			amount_usd, reason, tx_hash, submitted_at
		FROM trade_journal
		ORDER BY submitted_at DESC
		LIMIT $1`

	rows, err := j.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: recent trades: %w", err)
	}
	defer rows.Close()

	var out []domain.TradeRecord
	for rows.Next() {
		var rec domain.TradeRecord
		var side string
		if err := rows.Scan(
			&rec.ID, &rec.Symbol, &side, &rec.FromToken, &rec.ToToken,
			&rec.AmountUSD, &rec.Reason, &rec.TxHash, &rec.SubmittedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan trade: %w", err)
		}
		rec.Side = domain.OrderSide(side)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: recent trades rows: %w", err)
	}
	return out, nil
}
