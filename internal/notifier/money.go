package notifier

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const currency = "USD"

// unavailable stands in for amounts that are not finite numbers.
const unavailable = "n/a"

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// USD formats an amount as "$1,234.56", rounded half away from zero to cents.
func USD(v float64) string {
	if !finite(v) {
		return unavailable
	}
	cur := money.GetCurrency(currency)
	cents := decimal.NewFromFloat(math.Abs(v)).Round(int32(cur.Fraction)).Shift(int32(cur.Fraction)).IntPart()
	s := money.New(cents, currency).Display()
	if v < 0 && cents != 0 {
		return "-" + s
	}
	return s
}

// SignedUSD is USD with an explicit "+" for gains.
func SignedUSD(v float64) string {
	s := USD(v)
	if v > 0 && finite(v) && s != USD(0) {
		return "+" + s
	}
	return s
}

// Quantity formats an asset amount with up to eight decimals and no trailing zeros.
func Quantity(q float64) string {
	if !finite(q) {
		return unavailable
	}
	return decimal.NewFromFloat(q).Round(8).String()
}

// Percent formats a signed percentage with two decimals.
func Percent(p float64) string {
	return fmt.Sprintf("%+.2f%%", p)
}
