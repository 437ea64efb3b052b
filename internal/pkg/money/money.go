// Package money does quantity and price arithmetic in decimal so rollups
// do not drift when the same totals are recomputed many times.
package money

import "github.com/shopspring/decimal"

// Total returns quantity × price.
func Total(quantity, price float64) float64 {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(price)).InexactFloat64()
}

// Sum adds the values in decimal and returns the nearest float64.
func Sum(values ...float64) float64 {
	acc := decimal.Zero
	for _, v := range values {
		acc = acc.Add(decimal.NewFromFloat(v))
	}
	return acc.InexactFloat64()
}

// Accumulator collects a running decimal sum.
type Accumulator struct {
	acc decimal.Decimal
}

func (a *Accumulator) Add(v float64) {
	a.acc = a.acc.Add(decimal.NewFromFloat(v))
}

func (a *Accumulator) Float64() float64 {
	return a.acc.InexactFloat64()
}
