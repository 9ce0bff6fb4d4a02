package calculator

import (
	"errors"
	"math"
)

// CalculateRange returns the high and low of the last window points of series.
// A window <= 0 scans the whole series.
func CalculateRange(series []float64, window int) (high, low float64, err error) {
	if len(series) == 0 {
		return 0, 0, errors.New("empty series")
	}
	n := len(series)
	start := 0
	if window > 0 && n > window {
		start = n - window
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, v := range series[start:] {
		if v > high {
			high = v
		}
		if v < low {
			low = v
		}
	}
	return high, low, nil
}

// CalculatePosition returns where current sits within [low, high], clamped to 0.0~1.0.
func CalculatePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
