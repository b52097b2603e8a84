package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatEUR formats an amount using German conventions: dot-separated
// thousands, comma decimal separator, trailing euro sign.
// Example: 1234567.89 → "1.234.567,89 €".
func FormatEUR(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	if negative {
		amount = amount.Neg()
	}

	raw := amount.StringFixed(2)
	parts := strings.SplitN(raw, ".", 2)
	intPart := parts[0]
	decPart := parts[1]

	result := groupThousands(intPart) + "," + decPart + " €"
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts dots into an integer string, grouping digits in
// threes from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]
	for len(remaining) > 3 {
		result = remaining[len(remaining)-3:] + "." + result
		remaining = remaining[:len(remaining)-3]
	}
	return remaining + "." + result
}

// FormatPercent renders a percentage with a comma decimal separator,
// e.g. "5 %" or "12,5 %".
func FormatPercent(p decimal.Decimal) string {
	return fmt.Sprintf("%s %%", strings.ReplaceAll(p.String(), ".", ","))
}
