package calculator

// RSIPeriod and SMAPeriod are the windows used by Summarize.
const (
	RSIPeriod = 14
	SMAPeriod = 20
)

// Stats condenses one chart series for reports.
type Stats struct {
	Points        int
	Last          float64
	High          float64
	Low           float64
	Position      float64 // last within [Low, High]
	ChangePercent float64
	SMA           float64
	HasSMA        bool
	RSI           float64
}

// Summarize computes Stats for series. It reports false for an empty series.
func Summarize(series []float64) (Stats, bool) {
	if len(series) == 0 {
		return Stats{}, false
	}
	s := Stats{Points: len(series), Last: series[len(series)-1]}
	s.High, s.Low, _ = CalculateRange(series, 0)
	s.Position, _ = CalculatePosition(s.Last, s.High, s.Low)
	s.ChangePercent, _ = CalculateChangePercent(series)
	if sma, err := CalculateSMA(series, SMAPeriod); err == nil {
		s.SMA, s.HasSMA = sma, true
	}
	s.RSI, _ = CalculateRSI(series, RSIPeriod)
	return s, true
}
