package model

import "time"

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Trade is an immutable record of one accepted simulated order.
type Trade struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"side"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// IsBuy reports whether the trade acquired the asset.
func (t Trade) IsBuy() bool { return t.Side == SideBuy }

// Notional is the USD amount exchanged by the trade.
func (t Trade) Notional() float64 { return t.Quantity * t.Price }
