package notifier

import (
	"fmt"
	"strings"
	"time"

	"CryptoSim/internal/accounting"
	"CryptoSim/internal/calculator"
	"CryptoSim/internal/engine"
	"CryptoSim/internal/model"
)

var directionMarks = map[model.Direction]string{
	model.DirectionUp:   "▲",
	model.DirectionDown: "▼",
	model.DirectionNone: "•",
}

// FormatPortfolio renders the headline figures and every held position.
func FormatPortfolio(s accounting.Summary, positions []accounting.Position, lastUpdated string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("💼 <b>Portfolio</b> | %s\n\n", time.Now().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Net worth: %s\n", USD(s.NetWorth)))
	b.WriteString(fmt.Sprintf("Cash: %s | Holdings: %s\n", USD(s.Cash), USD(s.HoldingsValue)))

	if len(positions) > 0 {
		b.WriteString("\n📦 <b>Holdings:</b>\n")
		for _, p := range positions {
			b.WriteString(fmt.Sprintf("  %s %s = %s (%.1f%%)", Quantity(p.Quantity), p.Symbol, USD(p.Value), p.PortfolioPercent))
			if p.HasAverage {
				b.WriteString(fmt.Sprintf(" %s %s", SignedUSD(p.GainLoss), Percent(p.GainPercent)))
			}
			b.WriteString("\n")
		}
	}
	b.WriteString(fmt.Sprintf("\nMarket data: %s", lastUpdated))
	return b.String()
}

// FormatGains renders realized and unrealized totals and the lookback cards.
func FormatGains(s accounting.Summary, cards []engine.GainCard) string {
	var b strings.Builder
	b.WriteString("📈 <b>Gains</b>\n\n")
	b.WriteString(fmt.Sprintf("Realized: %s\n", SignedUSD(s.Realized)))
	b.WriteString(fmt.Sprintf("Unrealized: %s\n", SignedUSD(s.Unrealized)))
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("Total: %s\n", SignedUSD(s.TotalGain)))
	if len(cards) > 0 {
		b.WriteString("\n")
		for _, c := range cards {
			b.WriteString(c.String() + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatMarket renders the last published asset records.
func FormatMarket(assets []model.AssetRecord, lastUpdated string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Market</b> | updated %s\n", lastUpdated))
	if len(assets) == 0 {
		b.WriteString("\nNo market data yet.")
		return b.String()
	}
	for _, a := range assets {
		b.WriteString(fmt.Sprintf("\n%s <b>%s</b> %s %s", directionMarks[a.Direction()], a.Symbol, a.Name, USD(a.Price)))
		if a.PreviousPrice != nil && *a.PreviousPrice != 0 {
			b.WriteString(fmt.Sprintf(" (%s)", Percent((a.Price-*a.PreviousPrice) / *a.PreviousPrice * 100)))
		}
		var parts []string
		for _, h := range model.Horizons {
			if st, ok := calculator.Summarize(a.Chart(h)); ok && st.Points > 1 {
				parts = append(parts, fmt.Sprintf("%s %s", h, Percent(st.ChangePercent)))
			}
		}
		if st, ok := calculator.Summarize(a.Chart(model.HorizonLong)); ok {
			parts = append(parts, fmt.Sprintf("RSI %.0f", st.RSI))
		}
		if len(parts) > 0 {
			b.WriteString("\n  " + strings.Join(parts, " | "))
		}
	}
	return b.String()
}

// FormatTrades renders trades in the given order, typically newest first.
func FormatTrades(trades []model.Trade) string {
	if len(trades) == 0 {
		return "🧾 No trades yet."
	}
	var b strings.Builder
	b.WriteString("🧾 <b>Trades</b>\n")
	for _, t := range trades {
		b.WriteString("\n" + FormatTrade(t))
	}
	return b.String()
}

// FormatTrade renders one trade as a single line.
func FormatTrade(t model.Trade) string {
	return fmt.Sprintf("%s %s %s %s @ %s (%s)",
		t.Timestamp.Local().Format("01-02 15:04"),
		strings.ToUpper(string(t.Side)), Quantity(t.Quantity), t.Symbol,
		USD(t.Price), USD(t.Notional()))
}

// FormatTradeConfirmation acknowledges an executed trade.
func FormatTradeConfirmation(t model.Trade, cash float64) string {
	return fmt.Sprintf("✅ %s\nCash: %s", FormatTrade(t), USD(cash))
}
