// Package recall is the REST client for the Recall competition venue. It
// owns the wire formats; everything it returns to the core is normalized
// into canonical domain types.
package recall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/blackcatdeath-dev/recall-ai-agent/internal/domain"
)

// Endpoint paths. These double as the rate-limit classification keys, which
// match by substring (trade/price/balance).
const (
	EndpointPrice    = "/api/price"
	EndpointBalances = "/api/agent/balances"
	EndpointTrade    = "/api/trade/execute"
	EndpointQuote    = "/api/trade/quote"
	EndpointTokens   = "/api/tokens"
	EndpointHealth   = "/api/health"
)

// requestTimeout bounds a single HTTP attempt; the retry loop multiplies
// this for the worst case.
const requestTimeout = 30 * time.Second

// Client is the venue REST client. All calls may fail with a transport
// error; callers treat each call as "eventually returns or fails" and never
// see transport-level retries.
type Client struct {
	baseURL    string
	apiKey     string
	retry      RetryPolicy
	httpClient *http.Client
}

// NewClient creates a venue client for the given API root and bearer key.
func NewClient(baseURL, apiKey string, retry RetryPolicy) *Client {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		retry:   retry,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// doRequest performs one HTTP call with the client's retry policy. It
// returns the response body on any 2xx status. Non-retryable statuses are
// terminal immediately; retryable failures are re-attempted with
// exponential backoff until the policy is exhausted.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if err := sleep(ctx, c.retry.delay(attempt)); err != nil {
			return nil, err
		}

		var body io.Reader
		if payload != nil {
			raw, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("recall: encode %s payload: %w", path, err)
			}
			body = bytes.NewReader(raw)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
		if err != nil {
			return nil, fmt.Errorf("recall: build request %s: %w", path, err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("recall: %s %s: %w", method, path, err)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("recall: read %s response: %w", path, readErr)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return respBody, nil
		}

		statusErr := fmt.Errorf("recall: %s %s: %w: %d %s", method, path, domain.ErrVenueStatus, resp.StatusCode, truncate(respBody, 200))
		if !retryableStatus(resp.StatusCode) {
			return nil, statusErr
		}
		lastErr = statusErr
	}
	return nil, lastErr
}

// GetPrice fetches the current price for a token and normalizes the loosely
// keyed response into a single float. Non-positive or non-finite prices are
// rejected with domain.ErrBadPrice.
func (c *Client) GetPrice(ctx context.Context, tokenAddress, chain, specific string) (float64, error) {
	query := url.Values{}
	query.Set("token", tokenAddress)
	query.Set("chain", chain)
	query.Set("specificChain", specific)

	body, err := c.doRequest(ctx, http.MethodGet, EndpointPrice, query, nil)
	if err != nil {
		return 0, err
	}

	var resp priceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("recall: decode price: %w", err)
	}

	price := 0.0
	switch {
	case resp.Price != nil:
		price = *resp.Price
	case resp.Prices.ToToken != nil:
		price = *resp.Prices.ToToken
	}
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("recall: price for %s: %w", tokenAddress, domain.ErrBadPrice)
	}
	return price, nil
}

// Balances returns every holding the venue reports for the agent.
func (c *Client) Balances(ctx context.Context) ([]domain.Balance, error) {
	body, err := c.doRequest(ctx, http.MethodGet, EndpointBalances, nil, nil)
	if err != nil {
		return nil, err
	}

	var resp balancesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("recall: decode balances: %w", err)
	}

	out := make([]domain.Balance, 0, len(resp.Balances))
	for _, b := range resp.Balances {
		out = append(out, domain.Balance{
			Symbol:        b.Symbol,
			Amount:        b.Amount,
			TokenAddress:  b.TokenAddress,
			Chain:         b.Chain,
			SpecificChain: b.SpecificChain,
		})
	}
	return out, nil
}

// ExecuteTrade submits a swap and returns the venue's acknowledgement.
func (c *Client) ExecuteTrade(ctx context.Context, req TradeRequest) (TradeResult, error) {
	body, err := c.doRequest(ctx, http.MethodPost, EndpointTrade, nil, req)
	if err != nil {
		return TradeResult{}, err
	}

	var resp executeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return TradeResult{}, fmt.Errorf("recall: decode trade result: %w", err)
	}
	return TradeResult{TxHash: resp.TransactionHash}, nil
}

// GetQuote asks for an indicative quote without executing.
func (c *Client) GetQuote(ctx context.Context, req QuoteRequest) (Quote, error) {
	body, err := c.doRequest(ctx, http.MethodPost, EndpointQuote, nil, req)
	if err != nil {
		return Quote{}, err
	}

	var resp quoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Quote{}, fmt.Errorf("recall: decode quote: %w", err)
	}
	return Quote{ToAmount: resp.ToAmount, Price: resp.Price}, nil
}

// GetTokens lists venue tokens on the given chain for universe discovery.
func (c *Client) GetTokens(ctx context.Context, chain, specific string, limit int) ([]domain.TokenInfo, error) {
	query := url.Values{}
	query.Set("chain", chain)
	query.Set("specificChain", specific)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.doRequest(ctx, http.MethodGet, EndpointTokens, query, nil)
	if err != nil {
		return nil, err
	}

	var resp tokensResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("recall: decode tokens: %w", err)
	}

	out := make([]domain.TokenInfo, 0, len(resp.Tokens))
	for _, t := range resp.Tokens {
		out = append(out, domain.TokenInfo{
			Symbol:    t.Symbol,
			Address:   t.Address,
			Volume24h: t.Volume24h,
			Liquidity: t.Liquidity,
			AgeHours:  t.AgeHours,
			FDV:       t.FDV,
		})
	}
	return out, nil
}

// Health probes the venue. A 200 response or an explicit "ok" status is
// healthy; anything else is an error.
func (c *Client) Health(ctx context.Context) error {
	body, err := c.doRequest(ctx, http.MethodGet, EndpointHealth, nil, nil)
	if err != nil {
		return err
	}

	var resp healthResponse
	// A 200 with an undecodable body still counts as healthy.
	if err := json.Unmarshal(body, &resp); err == nil && resp.Status != "" && resp.Status != "ok" {
		return fmt.Errorf("recall: health status %q: %w", resp.Status, domain.ErrVenueStatus)
	}
	return nil
}

// truncate renders up to n bytes of a response body for error messages.
func truncate(body []byte, n int) string {
	if len(body) > n {
		body = body[:n]
	}
	return string(body)
}
