// Package currency formats monetary amounts for alerts, interpretations and CLI output.
package currency

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Code is the currency every deduction pool is denominated in.
const Code = money.EUR

// Round rounds an amount to the currency's minor unit.
func Round(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return amount
	}
	fraction := int32(money.GetCurrency(Code).Fraction)
	return decimal.NewFromFloat(amount).Round(fraction).InexactFloat64()
}

// Format renders an amount with the currency grapheme and grouping, e.g. "€10,721.00".
// Unbounded amounts render as "unlimited".
func Format(amount float64) string {
	if math.IsInf(amount, 1) {
		return "unlimited"
	}
	if math.IsNaN(amount) || math.IsInf(amount, -1) {
		return "n/a"
	}

	cur := money.GetCurrency(Code)
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	minor := decimal.NewFromFloat(amount).Mul(factor).Round(0)
	return money.New(minor.IntPart(), Code).Display()
}
