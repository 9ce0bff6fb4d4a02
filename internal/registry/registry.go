// Package registry holds the last published market state of every tracked asset.
//
// Readers never lock: the whole state is an immutable value behind an atomic
// pointer and is replaced in a single swap when a synchronization cycle completes.
package registry

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"CryptoSim/internal/model"
)

type state struct {
	cycleID   uint64
	assets    map[string]model.AssetRecord
	order     []string
	updatedAt time.Time
}

// Registry maps symbol to its latest AssetRecord.
type Registry struct {
	mu      sync.Mutex // serialises writers only
	current atomic.Pointer[state]
}

func New() *Registry {
	r := &Registry{}
	r.current.Store(&state{assets: map[string]model.AssetRecord{}})
	return r
}

// Publish swaps in a batch produced by cycle cycleID. Batches from a cycle older
// than the last published one are discarded and Publish reports false.
//
// For every record the previous price is linked to the price currently
// published, and a nil chart series keeps the series already held.
func (r *Registry) Publish(cycleID uint64, batch []model.AssetRecord, at time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.current.Load()
	if cycleID <= old.cycleID {
		return false
	}

	next := &state{
		cycleID:   cycleID,
		assets:    make(map[string]model.AssetRecord, len(old.assets)+len(batch)),
		order:     append([]string(nil), old.order...),
		updatedAt: at,
	}
	for k, v := range old.assets {
		next.assets[k] = v
	}
	for _, rec := range batch {
		prev, existed := old.assets[rec.Symbol]
		rec.Charts = mergeCharts(prev.Charts, rec.Charts)
		if existed {
			p := prev.Price
			rec.PreviousPrice = &p
		} else {
			rec.PreviousPrice = nil
			next.order = append(next.order, rec.Symbol)
		}
		next.assets[rec.Symbol] = rec
	}

	r.current.Store(next)
	return true
}

func mergeCharts(prev, fresh map[model.Horizon][]float64) map[model.Horizon][]float64 {
	out := make(map[model.Horizon][]float64, len(model.Horizons))
	for _, h := range model.Horizons {
		if s, ok := fresh[h]; ok && s != nil {
			out[h] = s
		} else if s, ok := prev[h]; ok {
			out[h] = s
		}
	}
	return out
}

// Get returns the record for symbol.
func (r *Registry) Get(symbol string) (model.AssetRecord, bool) {
	rec, ok := r.current.Load().assets[symbol]
	return rec, ok
}

// Price implements the price lookup used by the ledger and accounting.
func (r *Registry) Price(symbol string) (float64, bool) {
	rec, ok := r.current.Load().assets[symbol]
	if !ok {
		return 0, false
	}
	return rec.Price, true
}

// Assets returns every record in first-observation order.
func (r *Registry) Assets() []model.AssetRecord {
	s := r.current.Load()
	out := make([]model.AssetRecord, 0, len(s.order))
	for _, sym := range s.order {
		out = append(out, s.assets[sym])
	}
	return out
}

// Prices returns a symbol → price copy of the published state.
func (r *Registry) Prices() map[string]float64 {
	s := r.current.Load()
	out := make(map[string]float64, len(s.assets))
	for k, v := range s.assets {
		out[k] = v.Price
	}
	return out
}

// Symbols returns the known symbols sorted alphabetically.
func (r *Registry) Symbols() []string {
	s := r.current.Load()
	out := make([]string, 0, len(s.assets))
	for k := range s.assets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CycleID is the id of the last published cycle, zero before the first.
func (r *Registry) CycleID() uint64 { return r.current.Load().cycleID }

// LastUpdated is the completion time of the last published cycle.
func (r *Registry) LastUpdated() (time.Time, bool) {
	s := r.current.Load()
	return s.updatedAt, !s.updatedAt.IsZero()
}
