package recall

// TradeRequest describes one swap submitted to the venue. USD notional is
// converted to token amounts venue-side.
type TradeRequest struct {
	BaseToken            string  `json:"baseToken"`
	QuoteToken           string  `json:"quoteToken"`
	TradeAmountUSD       float64 `json:"tradeAmountUsd"`
	Reason               string  `json:"reason"`
	SlippageTolerancePct float64 `json:"slippageTolerancePct"`
	FromChain            string  `json:"fromChain"`
	FromSpecificChain    string  `json:"fromSpecificChain"`
	ToChain              string  `json:"toChain"`
	ToSpecificChain      string  `json:"toSpecificChain"`
}

// QuoteRequest asks the venue for an indicative quote without executing.
type QuoteRequest struct {
	BaseToken         string  `json:"baseToken"`
	QuoteToken        string  `json:"quoteToken"`
	TradeAmountUSD    float64 `json:"tradeAmountUsd"`
	FromChain         string  `json:"fromChain"`
	FromSpecificChain string  `json:"fromSpecificChain"`
	ToChain           string  `json:"toChain"`
	ToSpecificChain   string  `json:"toSpecificChain"`
}

// TradeResult is the venue's acknowledgement of an executed trade.
type TradeResult struct {
	TxHash string
}

// Quote is an indicative price for a prospective trade.
type Quote struct {
	ToAmount float64
	Price    float64
}

// ---------------------------------------------------------------------------
// Wire shapes. The venue's responses are loosely keyed; each is normalized
// into a single canonical type at this boundary so the core never sees the
// raw dictionaries.
// ---------------------------------------------------------------------------

// priceResponse carries the price either directly under "price" or nested
// under "prices.toToken", depending on the venue code path.
type priceResponse struct {
	Price  *float64 `json:"price"`
	Prices struct {
		ToToken *float64 `json:"toToken"`
	} `json:"prices"`
}

type balanceJSON struct {
	Symbol        string  `json:"symbol"`
	Amount        float64 `json:"amount"`
	TokenAddress  string  `json:"tokenAddress"`
	Chain         string  `json:"chain"`
	SpecificChain string  `json:"specificChain"`
}

type balancesResponse struct {
	Balances []balanceJSON `json:"balances"`
}

type executeResponse struct {
	TransactionHash string `json:"transactionHash"`
}

type quoteResponse struct {
	ToAmount float64 `json:"toAmount"`
	Price    float64 `json:"price"`
}

type tokenJSON struct {
	Symbol    string  `json:"symbol"`
	Address   string  `json:"address"`
	Volume24h float64 `json:"volume24h"`
	Liquidity float64 `json:"liquidity"`
	AgeHours  float64 `json:"ageHours"`
	FDV       float64 `json:"fdv"`
}

type tokensResponse struct {
	Tokens []tokenJSON `json:"tokens"`
}

type healthResponse struct {
	Status string `json:"status"`
}
