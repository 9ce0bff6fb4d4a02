package accounting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoSim/internal/model"
)

type fixedPrices map[string]float64

func (p fixedPrices) Price(symbol string) (float64, bool) {
	v, ok := p[symbol]
	return v, ok
}

var t0 = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

func trade(minute int, symbol string, side model.Side, qty, price float64) model.Trade {
	return model.Trade{
		ID:        symbol + string(side) + time.Duration(minute).String(),
		Symbol:    symbol,
		Side:      side,
		Quantity:  qty,
		Price:     price,
		Timestamp: t0.Add(time.Duration(minute) * time.Minute),
	}
}

func TestAverageBuyPrice(t *testing.T) {
	trades := []model.Trade{
		trade(1, "BTC", model.SideBuy, 1, 10),
		trade(2, "BTC", model.SideBuy, 3, 20),
		trade(3, "BTC", model.SideSell, 2, 100),
		trade(4, "ETH", model.SideBuy, 1, 1000),
	}

	avg, ok := AverageBuyPrice(trades, "BTC")
	require.True(t, ok)
	assert.InDelta(t, 17.5, avg, 1e-12)

	_, ok = AverageBuyPrice(trades, "SOL")
	assert.False(t, ok)
}

func TestRealizedGainLoss_ConsumesOldestLotFirst(t *testing.T) {
	trades := []model.Trade{
		trade(1, "BTC", model.SideBuy, 1, 10),
		trade(2, "BTC", model.SideBuy, 1, 20),
		trade(3, "BTC", model.SideSell, 1, 15),
	}
	assert.InDelta(t, 5, RealizedGainLoss(trades), 1e-12)
}

func TestRealizedGainLoss_ReplaysChronologically(t *testing.T) {
	// same trades as above, stored out of order
	trades := []model.Trade{
		trade(3, "BTC", model.SideSell, 1, 15),
		trade(2, "BTC", model.SideBuy, 1, 20),
		trade(1, "BTC", model.SideBuy, 1, 10),
	}
	assert.InDelta(t, 5, RealizedGainLoss(trades), 1e-12)
}

func TestRealizedGainLoss_PartialLots(t *testing.T) {
	trades := []model.Trade{
		trade(1, "ETH", model.SideBuy, 2, 100),
		trade(2, "ETH", model.SideBuy, 2, 200),
		trade(3, "ETH", model.SideSell, 1, 300), // 1@100 → +200
		trade(4, "ETH", model.SideSell, 2, 300), // 1@100 + 1@200 → +300
		trade(5, "ETH", model.SideSell, 1, 100), // 1@200 → -100
	}
	assert.InDelta(t, 400, RealizedGainLoss(trades), 1e-9)
}

func TestRealizedGainLoss_PerSymbolFilter(t *testing.T) {
	trades := []model.Trade{
		trade(1, "BTC", model.SideBuy, 1, 10),
		trade(2, "ETH", model.SideBuy, 1, 50),
		trade(3, "BTC", model.SideSell, 1, 25),
		trade(4, "ETH", model.SideSell, 1, 40),
	}
	assert.InDelta(t, 15, RealizedGainLossFor(trades, "BTC"), 1e-12)
	assert.InDelta(t, -10, RealizedGainLossFor(trades, "ETH"), 1e-12)
	assert.InDelta(t, 5, RealizedGainLoss(trades), 1e-12)
	assert.Equal(t, 0.0, RealizedGainLossFor(trades, "SOL"))
}

func TestRealizedGainLoss_DoesNotMutateInput(t *testing.T) {
	trades := []model.Trade{
		trade(2, "BTC", model.SideSell, 1, 15),
		trade(1, "BTC", model.SideBuy, 2, 10),
	}
	RealizedGainLoss(trades)
	assert.Equal(t, model.SideSell, trades[0].Side)
	assert.Equal(t, 2.0, trades[1].Quantity)
}

func TestUnrealizedGainLoss_AverageCost(t *testing.T) {
	trades := []model.Trade{
		trade(1, "SOL", model.SideBuy, 1, 10),
		trade(2, "SOL", model.SideBuy, 1, 20),
	}
	holdings := map[string]float64{"SOL": 2}

	got := UnrealizedGainLossFor(trades, holdings, fixedPrices{"SOL": 20}, "SOL")
	assert.InDelta(t, 10, got, 1e-12)
	assert.InDelta(t, 10, UnrealizedGainLoss(trades, holdings, fixedPrices{"SOL": 20}), 1e-12)
}

func TestUnrealizedGainLoss_IgnoresAverageAfterFIFOSells(t *testing.T) {
	// FIFO would leave the $20 lot open; unrealized must still use the $15 average
	trades := []model.Trade{
		trade(1, "BTC", model.SideBuy, 1, 10),
		trade(2, "BTC", model.SideBuy, 1, 20),
		trade(3, "BTC", model.SideSell, 1, 15),
	}
	holdings := map[string]float64{"BTC": 1}
	got := UnrealizedGainLoss(trades, holdings, fixedPrices{"BTC": 30})
	assert.InDelta(t, 15, got, 1e-12)
}

func TestUnrealizedGainLoss_SkipsUnusable(t *testing.T) {
	trades := []model.Trade{trade(1, "BTC", model.SideBuy, 1, 10)}
	holdings := map[string]float64{"BTC": 0, "ETH": 1, "SOL": 1}
	prices := fixedPrices{"BTC": 20, "ETH": 20}

	assert.Equal(t, 0.0, UnrealizedGainLoss(trades, holdings, prices))
}

func TestHoldingsValue(t *testing.T) {
	holdings := map[string]float64{"BTC": 0.5, "ETH": 2, "DOGE": 100, "SOL": 0}
	prices := fixedPrices{"BTC": 60000, "ETH": 3000, "SOL": 150}
	assert.InDelta(t, 36000, HoldingsValue(holdings, prices), 1e-9)
}

func TestPositionsAndSummary(t *testing.T) {
	trades := []model.Trade{
		trade(1, "BTC", model.SideBuy, 0.1, 50000),
		trade(2, "ETH", model.SideBuy, 1, 2000),
		trade(3, "ETH", model.SideSell, 0.5, 3000),
	}
	p := model.Portfolio{
		Balance:  2500,
		Holdings: map[string]float64{"BTC": 0.1, "ETH": 0.5, "SOL": 0},
	}
	prices := fixedPrices{"BTC": 60000, "ETH": 4000}

	positions := Positions(p, trades, prices)
	require.Len(t, positions, 2)

	btc := positions[0]
	assert.Equal(t, "BTC", btc.Symbol)
	assert.InDelta(t, 6000, btc.Value, 1e-9)
	assert.InDelta(t, 75, btc.PortfolioPercent, 1e-9)
	assert.True(t, btc.HasAverage)
	assert.InDelta(t, 1000, btc.GainLoss, 1e-9)
	assert.InDelta(t, 20, btc.GainPercent, 1e-9)

	eth := positions[1]
	assert.InDelta(t, 2000, eth.Value, 1e-9)
	assert.InDelta(t, 100, eth.GainPercent, 1e-9)

	s := Summarize(p, trades, prices)
	assert.InDelta(t, 8000, s.HoldingsValue, 1e-9)
	assert.InDelta(t, 10500, s.NetWorth, 1e-9)
	assert.InDelta(t, 500, s.Realized, 1e-9)
	assert.InDelta(t, 2000, s.Unrealized, 1e-9)
	assert.InDelta(t, 2500, s.TotalGain, 1e-9)
}
