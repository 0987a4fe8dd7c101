package recall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackcatdeath-dev/recall-ai-agent/internal/domain"
)

// stubLimiter records acquisitions and grants or denies them wholesale.
type stubLimiter struct {
	grant     bool
	endpoints []string
}

func (s *stubLimiter) WaitAndAcquire(_ context.Context, endpoint string, _ time.Duration) bool {
	s.endpoints = append(s.endpoints, endpoint)
	return s.grant
}

func TestThrottled_AcquiresBeforeCall(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"price": 7}`))
	}))
	defer srv.Close()

	limiter := &stubLimiter{grant: true}
	tc := NewThrottled(NewClient(srv.URL, "k", fastRetry()), limiter, time.Second)

	price, err := tc.GetPrice(context.Background(), "0xabc", "evm", "eth")
	require.NoError(t, err)
	assert.Equal(t, 7.0, price)
	assert.Equal(t, []string{EndpointPrice}, limiter.endpoints)
	assert.Equal(t, int32(1), hits.Load())
}

func TestThrottled_DeniedSlotNeverReachesVenue(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	limiter := &stubLimiter{grant: false}
	tc := NewThrottled(NewClient(srv.URL, "k", fastRetry()), limiter, time.Second)

	_, err := tc.GetPrice(context.Background(), "0xabc", "evm", "eth")
	require.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Zero(t, hits.Load(), "a denied slot must not produce a venue call")

	_, err = tc.ExecuteTrade(context.Background(), TradeRequest{})
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	_, err = tc.Balances(context.Background())
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestThrottled_EndpointClassificationKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"balances": [], "tokens": [], "transactionHash": "x", "toAmount": 1, "price": 1}`))
	}))
	defer srv.Close()

	limiter := &stubLimiter{grant: true}
	tc := NewThrottled(NewClient(srv.URL, "k", fastRetry()), limiter, time.Second)

	ctx := context.Background()
	tc.GetPrice(ctx, "0xabc", "evm", "eth")
	tc.Balances(ctx)
	tc.ExecuteTrade(ctx, TradeRequest{})
	tc.GetQuote(ctx, QuoteRequest{})
	tc.GetTokens(ctx, "evm", "eth", 1)

	assert.Equal(t, []string{
		EndpointPrice,
		EndpointBalances,
		EndpointTrade,
		EndpointQuote,
		EndpointTokens,
	}, limiter.endpoints)
}

func TestThrottled_HealthBypassesLimiter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ok"}`))
	}))
	defer srv.Close()

	limiter := &stubLimiter{grant: false}
	tc := NewThrottled(NewClient(srv.URL, "k", fastRetry()), limiter, time.Second)

	assert.NoError(t, tc.Health(context.Background()))
	assert.Empty(t, limiter.endpoints)
}

func TestThrottled_CancelledContextReturnsContextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	limiter := &stubLimiter{grant: false}
	tc := NewThrottled(NewClient(srv.URL, "k", fastRetry()), limiter, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tc.GetPrice(ctx, "0xabc", "evm", "eth")
	assert.ErrorIs(t, err, context.Canceled)
}
