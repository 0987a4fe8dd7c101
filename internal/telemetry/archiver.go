package telemetry

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/blackcatdeath-dev/recall-ai-agent/internal/domain"
)

// Archiver periodically uploads the telemetry CSV to blob storage so a run
// survives the host. Uploads are whole-file snapshots keyed by run ID; the
// latest upload always wins under the same key.
type Archiver struct {
	sink     *CSVSink
	writer   domain.BlobWriter
	prefix   string
	runID    string
	interval time.Duration
	logger   *slog.Logger
}

// NewArchiver builds an archiver for sink. prefix is the configured object
// key prefix; runID namespaces the key so concurrent runs do not clobber
// each other.
func NewArchiver(sink *CSVSink, writer domain.BlobWriter, prefix, runID string, interval time.Duration, logger *slog.Logger) *Archiver {
	return &Archiver{
		sink:     sink,
		writer:   writer,
		prefix:   prefix,
		runID:    runID,
		interval: interval,
		logger:   logger.With(slog.String("component", "telemetry_archiver")),
	}
}

// Run uploads on every interval tick until ctx is cancelled, then makes one
// final upload so the tail of the series is not lost on shutdown.
func (a *Archiver) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uploadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := a.upload(uploadCtx); err != nil {
				a.logger.Warn("final telemetry upload failed", slog.String("error", err.Error()))
			}
			return ctx.Err()
		case <-ticker.C:
			if err := a.upload(ctx); err != nil {
				a.logger.Warn("telemetry upload failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (a *Archiver) upload(ctx context.Context) error {
	data, err := os.ReadFile(a.sink.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil // nothing written yet
		}
		return fmt.Errorf("telemetry: read %s: %w", a.sink.Path(), err)
	}

	key := path.Join(a.prefix, a.runID, "equity.csv")
	if err := a.writer.Put(ctx, key, bytes.NewReader(data), "text/csv"); err != nil {
		return fmt.Errorf("telemetry: archive %s: %w", key, err)
	}
	a.logger.Debug("telemetry archived",
		slog.String("key", key),
		slog.Int("bytes", len(data)))
	return nil
}
