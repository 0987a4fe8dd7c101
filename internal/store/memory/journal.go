// Package memory provides in-process store implementations used when no
// database is configured.
package memory

import (
	"context"
	"sync"

	"github.com/blackcatdeath-dev/recall-ai-agent/internal/domain"
)

// Journal is an in-memory domain.TradeJournal. It keeps a bounded number of
// records so a long run cannot grow without limit.
type Journal struct {
	mu      sync.Mutex
	records []domain.TradeRecord
	max     int
}

// NewJournal creates a journal retaining at most max records (oldest
// evicted first). max <= 0 means 10000.
func NewJournal(max int) *Journal {
	if max <= 0 {
		max = 10000
	}
	return &Journal{max: max}
}

// Insert appends a record, skipping duplicates by ID.
func (j *Journal) Insert(_ context.Context, rec domain.TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, r := range j.records {
		if r.ID == rec.ID {
			return nil
		}
	}
	j.records = append(j.records, rec)
	if len(j.records) > j.max {
		j.records = j.records[len(j.records)-j.max:]
	}
	return nil
}

// RecentTrades returns up to limit records, newest first.
func (j *Journal) RecentTrades(_ context.Context, limit int) ([]domain.TradeRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if limit <= 0 || limit > len(j.records) {
		limit = len(j.records)
	}
	out := make([]domain.TradeRecord, 0, limit)
	for i := len(j.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, j.records[i])
	}
	return out, nil
}
