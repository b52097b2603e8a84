package services

import "github.com/shopspring/decimal"

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// roundCents rounds to the currency minor unit. Every published figure
// (line totals, document totals, invoice amounts) passes through here;
// intermediate products stay exact decimals.
func roundCents(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// percentOf returns v * percent / 100, unrounded.
func percentOf(v, percent decimal.Decimal) decimal.Decimal {
	return v.Mul(percent).Div(hundred)
}
