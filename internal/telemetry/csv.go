package telemetry

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/blackcatdeath-dev/recall-ai-agent/internal/domain"
)

var csvHeader = []string{"timestamp", "equity_usd", "sharpe", "max_drawdown", "daily_trade_count"}

// CSVSink appends telemetry rows to a CSV file, writing the header exactly
// once when the file is created. Each Append opens, writes, flushes and
// closes so a crash never loses more than the in-flight row.
type CSVSink struct {
	mu   sync.Mutex
	path string
}

// NewCSVSink creates a sink writing to path, creating parent directories as
// needed.
func NewCSVSink(path string) (*CSVSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("telemetry: create dir %s: %w", dir, err)
		}
	}
	return &CSVSink{path: path}, nil
}

// Path returns the file the sink writes to.
func (s *CSVSink) Path() string { return s.path }

// Append writes one row, prefixed with the header if the file is new.
func (s *CSVSink) Append(row domain.TelemetryRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	writeHeader := os.IsNotExist(err) || (err == nil && info.Size() == 0)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("telemetry: write header: %w", err)
		}
	}
	record := []string{
		row.Timestamp.UTC().Format(time.RFC3339),
		strconv.FormatFloat(row.EquityUSD, 'f', 2, 64),
		strconv.FormatFloat(row.Sharpe, 'f', 4, 64),
		strconv.FormatFloat(row.MaxDrawdown, 'f', 4, 64),
		strconv.Itoa(row.DailyTradeCount),
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("telemetry: write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("telemetry: flush: %w", err)
	}
	return nil
}
