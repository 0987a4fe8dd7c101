package domain

import "time"

// OrderSide distinguishes buys (cash into a token) from sells (token back
// to cash).
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// TradeRecord describes one submitted order, as recorded after the venue
// accepted it.
type TradeRecord struct {
	ID          string // UUID assigned at submission
	Symbol      string
	Side        OrderSide
	FromToken   string
	ToToken     string
	AmountUSD   float64
	Reason      string
	TxHash      string
	SubmittedAt time.Time
}

// EquitySnapshot is the result of one mark-to-market pass: total portfolio
// value and the USD exposure held in tracked assets.
type EquitySnapshot struct {
	EquityUSD       float64
	CashUSD         float64
	TrackedUSD      float64
	IgnoredUSD      float64
	ExposureByAsset map[string]float64 // symbol -> USD value
}
