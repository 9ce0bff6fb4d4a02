// Package history keeps the daily time series of portfolio value.
package history

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"CryptoSim/internal/events"
	"CryptoSim/internal/model"
	"CryptoSim/internal/store"
)

// MaxSnapshots is the retention cap. Older snapshots are dropped from the head.
const MaxSnapshots = 500

// History is an append-only, day-deduplicated series of portfolio value snapshots.
type History struct {
	mu        sync.Mutex
	snapshots []model.Snapshot

	store store.Store
	bus   *events.Bus
	loc   *time.Location
	now   func() time.Time
}

// Option customises a History.
type Option func(*History)

// WithClock replaces time.Now as the source of snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *History) { h.now = now }
}

// WithLocation sets the time zone calendar days are evaluated in. Default is time.Local.
func WithLocation(loc *time.Location) Option {
	return func(h *History) { h.loc = loc }
}

// New creates a History and loads previously saved snapshots from st.
func New(st store.Store, bus *events.Bus, opts ...Option) (*History, error) {
	h := &History{
		store: st,
		bus:   bus,
		loc:   time.Local,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if _, err := store.LoadJSON(st, store.KeyHistory, &h.snapshots); err != nil {
		return nil, err
	}
	if len(h.snapshots) > MaxSnapshots {
		h.snapshots = h.snapshots[len(h.snapshots)-MaxSnapshots:]
	}
	log.Printf("[INFO] history loaded: %d snapshots", len(h.snapshots))
	return h, nil
}

// Record offers a value sample taken now. It is rejected when the latest stored
// snapshot falls on the same calendar day or the value is not finite; the bool
// reports whether it was stored.
func (h *History) Record(value float64) (model.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if math.IsInf(value, 0) || math.IsNaN(value) {
		log.Printf("[WARN] snapshot skipped: value %v is not finite", value)
		return model.Snapshot{}, false
	}
	now := h.now()
	if n := len(h.snapshots); n > 0 && sameDay(h.snapshots[n-1].Timestamp, now, h.loc) {
		return model.Snapshot{}, false
	}

	snap := model.Snapshot{ID: uuid.NewString(), Timestamp: now, Value: value}
	h.snapshots = append(h.snapshots, snap)
	if over := len(h.snapshots) - MaxSnapshots; over > 0 {
		h.snapshots = append([]model.Snapshot(nil), h.snapshots[over:]...)
	}

	if err := store.SaveJSON(h.store, store.KeyHistory, h.snapshots); err != nil {
		log.Printf("[ERROR] failed to save history: %v", err)
	}
	log.Printf("[INFO] snapshot recorded: value=%.2f count=%d", value, len(h.snapshots))
	h.bus.Publish(events.Event{Kind: events.SnapshotRecorded, At: now, Value: value})
	return snap, true
}

// Snapshots returns a copy of the series, oldest first.
func (h *History) Snapshots() []model.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]model.Snapshot(nil), h.snapshots...)
}

// Latest returns the most recent snapshot.
func (h *History) Latest() (model.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.snapshots) == 0 {
		return model.Snapshot{}, false
	}
	return h.snapshots[len(h.snapshots)-1], true
}

// GainPercentWithAge compares current against the past snapshot closest to
// daysAgo days before now. It returns the percent change and the snapshot's
// age in whole days, or false when there is no usable past snapshot.
func (h *History) GainPercentWithAge(current float64, daysAgo int) (float64, int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	target := now.AddDate(0, 0, -daysAgo)

	best := -1
	var bestDist time.Duration
	for i, s := range h.snapshots {
		if s.Timestamp.After(now) {
			continue
		}
		dist := absDuration(s.Timestamp.Sub(target))
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return 0, 0, false
	}

	past := h.snapshots[best]
	if past.Value == 0 || math.IsNaN(past.Value) {
		return 0, 0, false
	}
	age := int(now.Sub(past.Timestamp) / (24 * time.Hour))
	return (current - past.Value) / past.Value * 100, age, true
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
