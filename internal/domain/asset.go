package domain

// Asset identifies one tradable token in the competition universe.
type Asset struct {
	Symbol   string
	Address  string
	Chain    string // e.g. "evm"
	Specific string // e.g. "eth", "polygon"
}

// Balance is a single holding reported by the venue.
type Balance struct {
	Symbol        string
	Amount        float64
	TokenAddress  string
	Chain         string
	SpecificChain string
}

// TokenInfo describes a token returned by the venue's discovery endpoint,
// used for eligibility filtering.
type TokenInfo struct {
	Symbol    string
	Address   string
	Volume24h float64
	Liquidity float64
	AgeHours  float64
	FDV       float64
}
