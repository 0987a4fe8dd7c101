package recall

import (
	"context"
	"fmt"
	"time"

	"github.com/blackcatdeath-dev/recall-ai-agent/internal/domain"
)

// Limiter grants or denies request slots per endpoint. Implemented by
// ratelimit.Limiter; declared here so the wrapper depends only on what it
// uses.
type Limiter interface {
	WaitAndAcquire(ctx context.Context, endpoint string, maxWait time.Duration) bool
}

// Throttled wraps a Client so every venue call first acquires a rate-limit
// slot for its endpoint category. A call that cannot get a slot within
// maxWait fails with domain.ErrRateLimited instead of going over the wire.
// Health is deliberately unthrottled: it is the probe used to decide
// whether the venue is reachable at all.
type Throttled struct {
	client  *Client
	limiter Limiter
	maxWait time.Duration
}

// NewThrottled wraps client with limiter. maxWait bounds how long a single
// call may block waiting for a slot.
func NewThrottled(client *Client, limiter Limiter, maxWait time.Duration) *Throttled {
	return &Throttled{client: client, limiter: limiter, maxWait: maxWait}
}

func (t *Throttled) acquire(ctx context.Context, endpoint string) error {
	if t.limiter.WaitAndAcquire(ctx, endpoint, t.maxWait) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("recall: %s: %w", endpoint, domain.ErrRateLimited)
}

func (t *Throttled) GetPrice(ctx context.Context, tokenAddress, chain, specific string) (float64, error) {
	if err := t.acquire(ctx, EndpointPrice); err != nil {
		return 0, err
	}
	return t.client.GetPrice(ctx, tokenAddress, chain, specific)
}

func (t *Throttled) Balances(ctx context.Context) ([]domain.Balance, error) {
	if err := t.acquire(ctx, EndpointBalances); err != nil {
		return nil, err
	}
	return t.client.Balances(ctx)
}

func (t *Throttled) ExecuteTrade(ctx context.Context, req TradeRequest) (TradeResult, error) {
	if err := t.acquire(ctx, EndpointTrade); err != nil {
		return TradeResult{}, err
	}
	return t.client.ExecuteTrade(ctx, req)
}

func (t *Throttled) GetQuote(ctx context.Context, req QuoteRequest) (Quote, error) {
	if err := t.acquire(ctx, EndpointQuote); err != nil {
		return Quote{}, err
	}
	return t.client.GetQuote(ctx, req)
}

func (t *Throttled) GetTokens(ctx context.Context, chain, specific string, limit int) ([]domain.TokenInfo, error) {
	if err := t.acquire(ctx, EndpointTokens); err != nil {
		return nil, err
	}
	return t.client.GetTokens(ctx, chain, specific, limit)
}

func (t *Throttled) Health(ctx context.Context) error {
	return t.client.Health(ctx)
}
