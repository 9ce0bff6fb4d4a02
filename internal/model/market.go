package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Horizon identifies one of the three chart granularities tracked per asset.
type Horizon string

const (
	HorizonShort  Horizon = "short"
	HorizonMedium Horizon = "medium"
	HorizonLong   Horizon = "long"
)

// Horizons lists every horizon in display order.
var Horizons = []Horizon{HorizonShort, HorizonMedium, HorizonLong}

// Direction reports how the price moved since the previous observation.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionUp
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "none"
	}
}

// TrackedSymbol is an asset the synchronizer keeps up to date, with its display metadata.
type TrackedSymbol struct {
	Symbol  string `yaml:"symbol" json:"symbol"`
	Name    string `yaml:"name" json:"name"`
	LogoURL string `yaml:"logo" json:"logo,omitempty"`
}

// AssetRecord is the latest known market state of one asset.
type AssetRecord struct {
	Symbol        string
	Name          string
	LogoURL       string
	Price         float64
	PreviousPrice *float64 // nil until the second observation
	Charts        map[Horizon][]float64
	Flash         string // regenerated on every update
	UpdatedAt     time.Time
}

// Direction compares the current price with the previous one.
func (a AssetRecord) Direction() Direction {
	if a.PreviousPrice == nil {
		return DirectionNone
	}
	switch {
	case a.Price > *a.PreviousPrice:
		return DirectionUp
	case a.Price < *a.PreviousPrice:
		return DirectionDown
	default:
		return DirectionNone
	}
}

// Chart returns the series for a horizon, or nil if none has been fetched.
func (a AssetRecord) Chart(h Horizon) []float64 {
	return a.Charts[h]
}
