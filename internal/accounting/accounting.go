// Package accounting derives cost basis and gain/loss figures from the trade
// history and current prices. Everything here is a pure function.
//
// Realized gains match sells against buys first-in first-out, while unrealized
// gains use the simple average buy price. Both methods are intentional.
package accounting

import (
	"sort"

	"CryptoSim/internal/model"
)

// PriceSource returns the last published price of a symbol.
type PriceSource interface {
	Price(symbol string) (float64, bool)
}

// AverageBuyPrice is total USD spent on symbol divided by total quantity bought.
// It reports false when nothing was bought.
func AverageBuyPrice(trades []model.Trade, symbol string) (float64, bool) {
	var spent, qty float64
	for _, t := range trades {
		if t.Symbol != symbol || !t.IsBuy() {
			continue
		}
		spent += t.Quantity * t.Price
		qty += t.Quantity
	}
	if qty <= 0 {
		return 0, false
	}
	return spent / qty, true
}

// RealizedGainLoss sums the FIFO gain of every sell across all symbols.
func RealizedGainLoss(trades []model.Trade) float64 {
	return realized(trades, func(string) bool { return true })
}

// RealizedGainLossFor sums the FIFO gain of the sells of one symbol.
func RealizedGainLossFor(trades []model.Trade, symbol string) float64 {
	return realized(trades, func(s string) bool { return s == symbol })
}

func realized(trades []model.Trade, include func(string) bool) float64 {
	open := make(map[string]lots)
	var total float64
	for _, t := range chronological(trades) {
		if !include(t.Symbol) {
			continue
		}
		if t.IsBuy() {
			open[t.Symbol] = append(open[t.Symbol], lot{Quantity: t.Quantity, UnitCost: t.Price})
			continue
		}
		basis, remaining := open[t.Symbol].consume(t.Quantity)
		open[t.Symbol] = remaining
		total += t.Quantity*t.Price - basis
	}
	return total
}

// chronological returns a copy of trades ordered by timestamp, ties kept in input order.
func chronological(trades []model.Trade) []model.Trade {
	out := append([]model.Trade(nil), trades...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// UnrealizedGainLoss sums (price − average buy) × quantity over every held asset.
func UnrealizedGainLoss(trades []model.Trade, holdings map[string]float64, prices PriceSource) float64 {
	var total float64
	for symbol := range holdings {
		total += UnrealizedGainLossFor(trades, holdings, prices, symbol)
	}
	return total
}

// UnrealizedGainLossFor is UnrealizedGainLoss restricted to one symbol.
// Assets without a positive quantity, a price or an average buy price contribute zero.
func UnrealizedGainLossFor(trades []model.Trade, holdings map[string]float64, prices PriceSource, symbol string) float64 {
	qty := holdings[symbol]
	if qty <= 0 {
		return 0
	}
	avg, ok := AverageBuyPrice(trades, symbol)
	if !ok {
		return 0
	}
	price, ok := prices.Price(symbol)
	if !ok {
		return 0
	}
	return (price - avg) * qty
}

// HoldingsValue is Σ quantity × price over held assets with a known price.
func HoldingsValue(holdings map[string]float64, prices PriceSource) float64 {
	var total float64
	for symbol, qty := range holdings {
		if qty <= 0 {
			continue
		}
		if price, ok := prices.Price(symbol); ok {
			total += qty * price
		}
	}
	return total
}
