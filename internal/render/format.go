package render

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

func formatQuantity(q int64) string {
	return humanize.Comma(q)
}

func formatPrice(p float64) string {
	return "$" + strconv.FormatFloat(p, 'f', -1, 64)
}

// notional is quantity × price in exact decimal arithmetic, shown with
// thousands separators and at most two decimals.
func notional(q int64, p float64) string {
	n := decimal.NewFromInt(q).Mul(decimal.NewFromFloat(p)).Round(2)
	return "$" + humanize.CommafWithDigits(n.InexactFloat64(), 2)
}

// roundHalfUp rounds to the nearest integer, halves toward +Inf.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
