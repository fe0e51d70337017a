package report

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// percent formats num/den*100 with the given number of decimal places.
// A non-positive denominator yields zero.
func percent(num, den int, places int32) string {
	if den <= 0 {
		return decimal.Zero.StringFixed(places)
	}
	return decimal.NewFromInt(int64(num)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(den))).
		StringFixed(places)
}

func roundSeconds(avg float64) int {
	if avg <= 0 {
		return 0
	}
	return int(decimal.NewFromFloat(avg).Round(0).IntPart())
}
