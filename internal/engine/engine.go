// Package engine wires the synchronizer, registry, ledger and snapshot history
// into one unit driven by RunCycle.
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"CryptoSim/internal/accounting"
	"CryptoSim/internal/events"
	"CryptoSim/internal/feed"
	"CryptoSim/internal/history"
	"CryptoSim/internal/ledger"
	"CryptoSim/internal/model"
	"CryptoSim/internal/registry"
	"CryptoSim/internal/store"
	"CryptoSim/internal/synchronizer"
)

// Options configures an Engine.
type Options struct {
	Symbols         []model.TrackedSymbol
	Sync            synchronizer.Options
	StartingBalance float64
	Clock           func() time.Time // nil for time.Now
}

// Engine owns the market and portfolio state of one simulation.
type Engine struct {
	registry *registry.Registry
	sync     *synchronizer.Synchronizer
	ledger   *ledger.Ledger
	history  *history.History
	bus      *events.Bus
	now      func() time.Time
}

// New builds an Engine on top of client and st, restoring saved ledger and history state.
func New(client feed.Client, st store.Store, opts Options) (*Engine, error) {
	if opts.StartingBalance <= 0 {
		opts.StartingBalance = model.DefaultStartingBalance
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	bus := events.NewBus()
	reg := registry.New()

	l, err := ledger.New(st, reg, bus, opts.StartingBalance)
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}
	h, err := history.New(st, bus, history.WithClock(opts.Clock))
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	return &Engine{
		registry: reg,
		sync:     synchronizer.New(client, reg, opts.Symbols, opts.Sync),
		ledger:   l,
		history:  h,
		bus:      bus,
		now:      opts.Clock,
	}, nil
}

// Registry returns the market state the cycles publish to.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Ledger returns the portfolio, priced from Registry.
func (e *Engine) Ledger() *ledger.Ledger { return e.ledger }

// History returns the daily value series fed by RunCycle.
func (e *Engine) History() *history.History { return e.history }

// Bus returns the bus carrying market, trade and snapshot events.
func (e *Engine) Bus() *events.Bus { return e.bus }

// Symbols returns the tracked symbols in configured order.
func (e *Engine) Symbols() []model.TrackedSymbol { return e.sync.Symbols() }

// RunCycle refreshes every tracked asset and, once the batch is published,
// offers the resulting holdings value to the snapshot history.
func (e *Engine) RunCycle(ctx context.Context) synchronizer.Result {
	res := e.sync.Run(ctx)
	if !res.Published {
		return res
	}
	e.bus.Publish(events.Event{Kind: events.MarketUpdated, At: res.CompletedAt, CycleID: res.CycleID})

	value := accounting.HoldingsValue(e.ledger.Portfolio().Holdings, e.registry)
	if _, ok := e.history.Record(value); !ok {
		log.Printf("[INFO] snapshot for today already stored, value=%.2f", value)
	}
	return res
}

// Summary returns the headline figures at the last published prices.
func (e *Engine) Summary() accounting.Summary {
	return accounting.Summarize(e.ledger.Portfolio(), e.ledger.Trades(), e.registry)
}

// Positions values every held asset at the last published prices.
func (e *Engine) Positions() []accounting.Position {
	return accounting.Positions(e.ledger.Portfolio(), e.ledger.Trades(), e.registry)
}
