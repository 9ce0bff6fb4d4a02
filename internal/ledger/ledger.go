package ledger

import (
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"CryptoSim/internal/events"
	"CryptoSim/internal/model"
	"CryptoSim/internal/store"
)

// Rejection reasons. A rejected trade leaves the portfolio untouched and creates no record.
var (
	ErrInvalidAmount        = errors.New("amount must be a positive finite number")
	ErrNoPrice              = errors.New("no positive price for asset")
	ErrInsufficientCash     = errors.New("insufficient cash balance")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
)

// PriceSource returns the last published price of a symbol.
type PriceSource interface {
	Price(symbol string) (float64, bool)
}

// Ledger applies simulated trades to the portfolio with concurrency safety.
type Ledger struct {
	mu              sync.Mutex
	portfolio       model.Portfolio
	trades          []model.Trade
	startingBalance float64

	prices PriceSource
	store  store.Store
	bus    *events.Bus
	now    func() time.Time
}

// New creates a Ledger, loading previously saved trades and portfolio from st.
// A fresh portfolio starts with startingBalance in cash.
func New(st store.Store, prices PriceSource, bus *events.Bus, startingBalance float64) (*Ledger, error) {
	l := &Ledger{
		portfolio:       model.NewPortfolio(startingBalance),
		startingBalance: startingBalance,
		prices:          prices,
		store:           st,
		bus:             bus,
		now:             time.Now,
	}

	if _, err := store.LoadJSON(st, store.KeyTrades, &l.trades); err != nil {
		return nil, err
	}
	var saved model.Portfolio
	found, err := store.LoadJSON(st, store.KeyPortfolio, &saved)
	if err != nil {
		return nil, err
	}
	if found {
		if saved.Holdings == nil {
			saved.Holdings = make(map[string]float64)
		}
		l.portfolio = saved
	}
	log.Printf("[INFO] ledger loaded: cash=%.2f holdings=%d trades=%d", l.portfolio.Balance, len(l.portfolio.Holdings), len(l.trades))
	return l, nil
}

// Portfolio returns a copy of the current cash and holdings.
func (l *Ledger) Portfolio() model.Portfolio {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.portfolio.Clone()
}

// Trades returns every trade in execution order.
func (l *Ledger) Trades() []model.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Trade(nil), l.trades...)
}

// RecentTrades returns up to n trades, newest first. Trades with equal
// timestamps keep reverse execution order. n <= 0 returns all.
func (l *Ledger) RecentTrades(n int) []model.Trade {
	out := l.Trades()
	slices.Reverse(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Buy spends usd of cash on symbol at its current price.
func (l *Ledger) Buy(symbol string, usd float64) (model.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buy(symbol, usd)
}

// BuyMax spends the entire cash balance on symbol.
func (l *Ledger) BuyMax(symbol string) (model.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buy(symbol, l.portfolio.Balance)
}

// Sell sells usd worth of symbol at its current price.
func (l *Ledger) Sell(symbol string, usd float64) (model.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	price, err := l.price(symbol)
	if err != nil {
		return model.Trade{}, err
	}
	if !validAmount(usd) {
		return model.Trade{}, ErrInvalidAmount
	}
	return l.sell(symbol, usd/price, price, usd)
}

// SellMax sells the whole position in symbol, leaving its holding at exactly zero.
func (l *Ledger) SellMax(symbol string) (model.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	price, err := l.price(symbol)
	if err != nil {
		return model.Trade{}, err
	}
	held := l.portfolio.Holdings[symbol]
	return l.sell(symbol, held, price, held*price)
}

// Reset discards every trade and restores the starting cash balance.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.portfolio = model.NewPortfolio(l.startingBalance)
	l.trades = nil
	l.save()
	l.bus.Publish(events.Event{Kind: events.PortfolioChanged, At: l.now(), Value: l.portfolio.Balance})
}

func (l *Ledger) buy(symbol string, usd float64) (model.Trade, error) {
	price, err := l.price(symbol)
	if err != nil {
		return model.Trade{}, err
	}
	if !validAmount(usd) {
		return model.Trade{}, ErrInvalidAmount
	}
	if usd > l.portfolio.Balance {
		return model.Trade{}, fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientCash, usd, l.portfolio.Balance)
	}
	qty := usd / price
	if !validAmount(qty) {
		return model.Trade{}, ErrInvalidAmount
	}

	l.portfolio.Balance -= usd
	l.portfolio.Holdings[symbol] += qty
	return l.record(symbol, model.SideBuy, qty, price), nil
}

func (l *Ledger) sell(symbol string, qty, price, proceeds float64) (model.Trade, error) {
	if !validAmount(qty) {
		return model.Trade{}, ErrInvalidAmount
	}
	held := l.portfolio.Holdings[symbol]
	if qty > held {
		return model.Trade{}, fmt.Errorf("%w: need %g %s, have %g", ErrInsufficientHoldings, qty, symbol, held)
	}

	l.portfolio.Balance += proceeds
	if qty == held {
		l.portfolio.Holdings[symbol] = 0
	} else {
		l.portfolio.Holdings[symbol] = held - qty
	}
	return l.record(symbol, model.SideSell, qty, price), nil
}

func (l *Ledger) price(symbol string) (float64, error) {
	price, ok := l.prices.Price(symbol)
	if !ok || !(price > 0) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: %s", ErrNoPrice, symbol)
	}
	return price, nil
}

func (l *Ledger) record(symbol string, side model.Side, qty, price float64) model.Trade {
	trade := model.Trade{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Side:      side,
		Quantity:  qty,
		Price:     price,
		Timestamp: l.now(),
	}
	l.trades = append(l.trades, trade)
	l.save()

	log.Printf("[INFO] %s %g %s @ %.2f, cash=%.2f", side, qty, symbol, price, l.portfolio.Balance)
	l.bus.Publish(events.Event{Kind: events.PortfolioChanged, At: trade.Timestamp, Symbol: symbol, TradeID: trade.ID, Value: l.portfolio.Balance})
	return trade
}

// save is best-effort: in-memory state stays authoritative when the store fails.
func (l *Ledger) save() {
	if err := store.SaveJSON(l.store, store.KeyTrades, l.trades); err != nil {
		log.Printf("[ERROR] failed to save trades: %v", err)
	}
	if err := store.SaveJSON(l.store, store.KeyPortfolio, l.portfolio); err != nil {
		log.Printf("[ERROR] failed to save portfolio: %v", err)
	}
}

func validAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
