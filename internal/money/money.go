// Package money keeps price arithmetic exact. Amounts travel as float64 in
// documents and JSON but every product and sum is computed in decimal.
// Rounding to cents only happens for amounts shown to the guest.
package money

import (
	"github.com/shopspring/decimal"
)

const cents = 2

// Line returns the exact product unitPrice * quantity.
func Line(unitPrice, quantity float64) float64 {
	f, _ := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromFloat(quantity)).Float64()
	return f
}

// Sum folds amounts without rounding.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	f, _ := total.Float64()
	return f
}

// Round returns amount rounded half up to cents.
func Round(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(cents).Float64()
	return f
}

// Equal compares two amounts as decimals.
func Equal(a, b float64) bool {
	return decimal.NewFromFloat(a).Equal(decimal.NewFromFloat(b))
}
