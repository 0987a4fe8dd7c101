package recall

import (
	"context"
	"net/http"
	"time"
)

// RetryPolicy controls how the client retries transient failures. It
// replaces implicit per-call retry decoration with an explicit value passed
// to the client at construction time.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// BaseDelay is the wait before the second attempt; subsequent waits
	// double up to MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultRetryPolicy mirrors the venue's documented tolerance: five attempts
// with exponential backoff between one and twelve seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    12 * time.Second,
	}
}

// delay returns the backoff before attempt n (0-based; attempt 0 has no
// delay).
func (p RetryPolicy) delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	d := p.BaseDelay << (attempt - 1)
	if d > p.MaxDelay || d <= 0 {
		d = p.MaxDelay
	}
	return d
}

// retryableStatus reports whether an HTTP status is worth another attempt:
// venue-side throttling and server errors are; client errors are terminal.
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// sleep waits for d or until the context is cancelled, whichever comes
// first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
