package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversToAllSubscribers(t *testing.T) {
	b := NewBus()
	a, cancelA := b.Subscribe(1)
	defer cancelA()
	c, cancelC := b.Subscribe(1)
	defer cancelC()

	b.Publish(Event{Kind: MarketUpdated, CycleID: 7})

	evt := <-a
	assert.Equal(t, MarketUpdated, evt.Kind)
	assert.Equal(t, uint64(7), evt.CycleID)
	assert.False(t, evt.At.IsZero())
	assert.Equal(t, uint64(7), (<-c).CycleID)
}

func TestBus_FullSubscriberDoesNotBlock(t *testing.T) {
	b := NewBus()
	ch, cancel := b.Subscribe(1)
	defer cancel()

	b.Publish(Event{Kind: PortfolioChanged, Symbol: "BTC"})
	b.Publish(Event{Kind: PortfolioChanged, Symbol: "ETH"})

	require.Len(t, ch, 1)
	assert.Equal(t, "BTC", (<-ch).Symbol)
}

func TestBus_CancelClosesChannel(t *testing.T) {
	b := NewBus()
	ch, cancel := b.Subscribe(1)
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	b.Publish(Event{Kind: SnapshotRecorded})
}

func TestBus_NilIsNoop(t *testing.T) {
	var b *Bus
	assert.NotPanics(t, func() { b.Publish(Event{Kind: MarketUpdated}) })
}
