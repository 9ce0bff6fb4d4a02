package feed

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockClient returns scripted data for development and testing.
type MockClient struct {
	mu sync.Mutex

	Prices map[string]float64
	Closes map[int][]float64 // by granularity, shared by every symbol

	// SpotFailures makes the first N spot requests of a symbol fail.
	SpotFailures map[string]int
	// HistoryFailures makes every request for symbol+granularity fail.
	HistoryFailures map[string]map[int]bool
	// Delay is applied to every call and honours ctx cancellation.
	Delay time.Duration

	spotCalls    map[string]int
	spotTimes    map[string][]time.Time
	historyCalls map[string]int
}

func NewMockClient(prices map[string]float64) *MockClient {
	return &MockClient{
		Prices:          prices,
		Closes:          make(map[int][]float64),
		SpotFailures:    make(map[string]int),
		HistoryFailures: make(map[string]map[int]bool),
		spotCalls:       make(map[string]int),
		spotTimes:       make(map[string][]time.Time),
		historyCalls:    make(map[string]int),
	}
}

func (m *MockClient) Name() string { return "mock" }

// SetPrice changes the price returned for symbol.
func (m *MockClient) SetPrice(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prices[symbol] = price
}

// SpotCalls reports how many spot requests were made for symbol.
func (m *MockClient) SpotCalls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.spotCalls[symbol]
}

// SpotCallTimes returns when each spot request for symbol was issued, in order.
func (m *MockClient) SpotCallTimes(symbol string) []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Time(nil), m.spotTimes[symbol]...)
}

// HistoryCalls reports how many historical requests were made for symbol.
func (m *MockClient) HistoryCalls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.historyCalls[symbol]
}

func (m *MockClient) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.Delay):
		return nil
	}
}

func (m *MockClient) SpotPrice(ctx context.Context, symbol string) (float64, error) {
	m.mu.Lock()
	m.spotTimes[symbol] = append(m.spotTimes[symbol], time.Now())
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.spotCalls[symbol]++
	if m.spotCalls[symbol] <= m.SpotFailures[symbol] {
		return 0, fmt.Errorf("mock spot %s: %w", symbol, ErrNoData)
	}
	price, ok := m.Prices[symbol]
	if !ok {
		return 0, fmt.Errorf("mock spot %s: %w", symbol, ErrNoData)
	}
	return price, nil
}

func (m *MockClient) HistoricalCloses(ctx context.Context, symbol string, granularity int) ([]float64, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.historyCalls[symbol]++
	if m.HistoryFailures[symbol][granularity] {
		return nil, fmt.Errorf("mock candles %s/%d: %w", symbol, granularity, ErrNoData)
	}
	series, ok := m.Closes[granularity]
	if !ok {
		return nil, fmt.Errorf("mock candles %s/%d: %w", symbol, granularity, ErrNoData)
	}
	return append([]float64(nil), series...), nil
}
