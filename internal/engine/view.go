package engine

import (
	"fmt"
	"time"

	"CryptoSim/internal/accounting"
)

// GainWindows are the lookbacks shown as gain cards.
var GainWindows = []GainWindow{
	{Label: "24h", Days: 1},
	{Label: "7d", Days: 7},
	{Label: "30d", Days: 30},
}

type GainWindow struct {
	Label string
	Days  int
}

// GainCard is the holdings value change over one lookback window.
// Available is false when the history has no usable snapshot for it.
type GainCard struct {
	Label     string
	Percent   float64
	AgeDays   int
	Available bool
}

// String renders the card as "7d: +3.20% (~6d)".
func (c GainCard) String() string {
	if !c.Available {
		return c.Label + ": n/a"
	}
	s := fmt.Sprintf("%s: %+.2f%%", c.Label, c.Percent)
	if c.AgeDays > 0 {
		s += fmt.Sprintf(" (~%dd)", c.AgeDays)
	}
	return s
}

// GainCards compares the current holdings value against the snapshot history.
func (e *Engine) GainCards() []GainCard {
	current := accounting.HoldingsValue(e.ledger.Portfolio().Holdings, e.registry)
	cards := make([]GainCard, 0, len(GainWindows))
	for _, w := range GainWindows {
		pct, age, ok := e.history.GainPercentWithAge(current, w.Days)
		cards = append(cards, GainCard{Label: w.Label, Percent: pct, AgeDays: age, Available: ok})
	}
	return cards
}

// LastUpdated describes when market data was last published, e.g. "12 seconds ago".
func (e *Engine) LastUpdated() string {
	at, ok := e.registry.LastUpdated()
	if !ok {
		return "never"
	}
	return RelativeTime(at, e.now())
}

// RelativeTime formats the distance from t to now.
func RelativeTime(t, now time.Time) string {
	seconds := int(now.Sub(t) / time.Second)
	switch {
	case seconds < 5:
		return "just now"
	case seconds < 60:
		return fmt.Sprintf("%d seconds ago", seconds)
	case seconds < 120:
		return "1 minute ago"
	default:
		return fmt.Sprintf("%d minutes ago", seconds/60)
	}
}
