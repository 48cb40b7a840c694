package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	thousand = decimal.NewFromInt(1_000)
	tenK     = decimal.NewFromInt(10_000)
	million  = decimal.NewFromInt(1_000_000)
)

// FormatShortAmount formats an amount using short notation (e.g., 50k instead of 50000)
func FormatShortAmount(value decimal.Decimal) string {
	sign := ""
	abs := value.Abs()
	if value.IsNegative() {
		sign = "-"
	}

	switch {
	case abs.GreaterThanOrEqual(million):
		return fmt.Sprintf("%s%sM", sign, abs.Div(million).StringFixed(2))
	case abs.GreaterThanOrEqual(tenK):
		// No decimal places between 10k and 1M
		return fmt.Sprintf("%s%sk", sign, abs.Div(thousand).Truncate(0).String())
	case abs.GreaterThanOrEqual(thousand):
		// One decimal place under 10k
		return fmt.Sprintf("%s%sk", sign, abs.Div(thousand).Truncate(1).StringFixed(1))
	default:
		return sign + abs.Round(2).String()
	}
}

// FormatAmount formats an amount with thousands separators, keeping at most two decimals
func FormatAmount(value decimal.Decimal) string {
	sign := ""
	if value.IsNegative() {
		sign = "-"
		value = value.Abs()
	}

	text := value.Round(2).String()
	whole, frac, hasFrac := strings.Cut(text, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}

// FormatPrizeAmount formats a prize in NT dollars, e.g. "NT$ 200,000"
func FormatPrizeAmount(amount int64) string {
	return "NT$ " + FormatAmount(decimal.NewFromInt(amount))
}
