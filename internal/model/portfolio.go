package model

import "time"

// DefaultStartingBalance is the cash a fresh simulated portfolio starts with.
const DefaultStartingBalance = 10000.0

// Portfolio is the single mutable aggregate of the simulation: cash plus holdings.
type Portfolio struct {
	Balance  float64            `json:"balance"`
	Holdings map[string]float64 `json:"holdings"`
}

// NewPortfolio returns an empty portfolio holding only cash.
func NewPortfolio(balance float64) Portfolio {
	return Portfolio{Balance: balance, Holdings: make(map[string]float64)}
}

// Clone returns a deep copy so callers cannot mutate ledger state.
func (p Portfolio) Clone() Portfolio {
	out := Portfolio{Balance: p.Balance, Holdings: make(map[string]float64, len(p.Holdings))}
	for k, v := range p.Holdings {
		out.Holdings[k] = v
	}
	return out
}

// Quantity returns the held quantity of symbol, zero when absent.
func (p Portfolio) Quantity(symbol string) float64 {
	return p.Holdings[symbol]
}

// Snapshot is one sample of total portfolio value.
type Snapshot struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}
