package telemetry

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackcatdeath-dev/recall-ai-agent/internal/domain"
)

func testRow(equity float64) domain.TelemetryRow {
	return domain.TelemetryRow{
		Timestamp:       time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		EquityUSD:       equity,
		Sharpe:          1.2345,
		MaxDrawdown:     0.0567,
		DailyTradeCount: 7,
	}
}

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVSink_HeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "equity.csv")
	sink, err := NewCSVSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.Append(testRow(1000)))
	require.NoError(t, sink.Append(testRow(1010)))

	records := readAll(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"timestamp", "equity_usd", "sharpe", "max_drawdown", "daily_trade_count"}, records[0])
	assert.Equal(t, "1000.00", records[1][1])
	assert.Equal(t, "1010.00", records[2][1])
}

func TestCSVSink_RowFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "equity.csv")
	sink, err := NewCSVSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.Append(testRow(1234.5)))

	records := readAll(t, path)
	require.Len(t, records, 2)
	row := records[1]
	assert.Equal(t, "2026-03-14T12:00:00Z", row[0])
	assert.Equal(t, "1234.50", row[1])
	assert.Equal(t, "1.2345", row[2])
	assert.Equal(t, "0.0567", row[3])
	assert.Equal(t, "7", row[4])
}

func TestCSVSink_AppendsAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "equity.csv")

	sink, err := NewCSVSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Append(testRow(1000)))

	// A new sink over an existing file must not repeat the header.
	sink2, err := NewCSVSink(path)
	require.NoError(t, err)
	require.NoError(t, sink2.Append(testRow(1020)))

	records := readAll(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, "timestamp", records[0][0])
}

func TestCSVSink_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "equity.csv")
	sink, err := NewCSVSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.Append(testRow(1000)))
	assert.FileExists(t, path)
}
