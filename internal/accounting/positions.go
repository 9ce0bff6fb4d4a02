package accounting

import (
	"sort"

	"CryptoSim/internal/model"
)

// Position is the valuation of one held asset.
type Position struct {
	Symbol           string
	Quantity         float64
	Price            float64
	Value            float64
	AverageBuy       float64
	HasAverage       bool
	GainLoss         float64 // (price − average buy) × quantity
	GainPercent      float64 // (price − average buy) / average buy × 100
	PortfolioPercent float64 // share of the holdings value
}

// Positions values every asset with a positive quantity, largest first.
func Positions(p model.Portfolio, trades []model.Trade, prices PriceSource) []Position {
	total := HoldingsValue(p.Holdings, prices)

	var out []Position
	for symbol, qty := range p.Holdings {
		if qty <= 0 {
			continue
		}
		pos := Position{Symbol: symbol, Quantity: qty}
		if price, ok := prices.Price(symbol); ok {
			pos.Price = price
			pos.Value = qty * price
		}
		if total > 0 {
			pos.PortfolioPercent = pos.Value / total * 100
		}
		if avg, ok := AverageBuyPrice(trades, symbol); ok {
			pos.AverageBuy = avg
			pos.HasAverage = true
			pos.GainLoss = UnrealizedGainLossFor(trades, p.Holdings, prices, symbol)
			if avg != 0 {
				pos.GainPercent = (pos.Price - avg) / avg * 100
			}
		}
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// Summary aggregates the headline portfolio figures.
type Summary struct {
	Cash          float64
	HoldingsValue float64
	NetWorth      float64
	Realized      float64
	Unrealized    float64
	TotalGain     float64
}

// Summarize computes the headline figures of a portfolio.
func Summarize(p model.Portfolio, trades []model.Trade, prices PriceSource) Summary {
	s := Summary{
		Cash:          p.Balance,
		HoldingsValue: HoldingsValue(p.Holdings, prices),
		Realized:      RealizedGainLoss(trades),
		Unrealized:    UnrealizedGainLoss(trades, p.Holdings, prices),
	}
	s.NetWorth = s.Cash + s.HoldingsValue
	s.TotalGain = s.Realized + s.Unrealized
	return s
}
