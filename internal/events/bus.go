package events

import (
	"log"
	"sync"
	"time"
)

// Kind classifies a change notification.
type Kind string

const (
	MarketUpdated    Kind = "MARKET_UPDATED"
	PortfolioChanged Kind = "PORTFOLIO_CHANGED"
	SnapshotRecorded Kind = "SNAPSHOT_RECORDED"
)

// Event is posted after an atomic state swap. Payload fields are set according to Kind.
type Event struct {
	Kind    Kind
	At      time.Time
	CycleID uint64 // MarketUpdated
	Symbol  string // PortfolioChanged
	TradeID string // PortfolioChanged
	Value   float64
}

// Bus fans events out to subscribers without ever blocking the publisher.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Event
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a buffered receiver. The returned cancel func unregisters
// and closes the channel; it is safe to call more than once.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers evt to every subscriber with room in its buffer.
func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}
	if evt.At.IsZero() {
		evt.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			log.Printf("[WARN] event subscriber %d is full, dropping %s", id, evt.Kind)
		}
	}
}
