package calculator

import "errors"

// CalculateSMA computes the simple moving average of the last period points of series.
func CalculateSMA(series []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(series) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(series) - period; i < len(series); i++ {
		sum += series[i]
	}
	return sum / float64(period), nil
}

// CalculateChangePercent is the percent move from the first to the last point of series.
func CalculateChangePercent(series []float64) (float64, error) {
	if len(series) < 2 {
		return 0, errors.New("need at least two points")
	}
	first := series[0]
	if first == 0 {
		return 0, errors.New("series starts at zero")
	}
	return (series[len(series)-1] - first) / first * 100, nil
}
