package client

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Percent returns round(100 * part / total), rounding halves up. A zero
// total yields 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	ratio := decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(total)))
	return int(ratio.Round(0).IntPart())
}

// RoundedMean returns the mean of values rounded to the nearest integer,
// or fallback when values is empty.
func RoundedMean(values []int, fallback int) int {
	if len(values) == 0 {
		return fallback
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromInt(int64(v)))
	}
	return int(sum.Div(decimal.NewFromInt(int64(len(values)))).Round(0).IntPart())
}
