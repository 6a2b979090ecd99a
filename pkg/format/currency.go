// Package format renders amounts for display: rupee amounts with Indian
// digit grouping, crore figures, percentages and volumes.
package format

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iwvelando/poha-forecast/pkg/constants"
)

var rupeesPerCrore = decimal.NewFromFloat(constants.RupeesPerCrore)

// Currency returns a rupee string with Indian digit grouping (e.g., "-₹12,34,567.89").
func Currency(amount float64) string {
	return CurrencyDecimal(decimal.NewFromFloat(amount))
}

// CurrencyDecimal is Currency for an exact decimal amount.
func CurrencyDecimal(amount decimal.Decimal) string {
	formatted := formatIndian(amount.Abs())
	if amount.Round(2).IsNegative() {
		return "-" + constants.CurrencySymbol + formatted
	}
	return constants.CurrencySymbol + formatted
}

// NumericCurrency returns an amount without a currency symbol but with Indian grouping (e.g., "-12,34,567.89").
func NumericCurrency(amount float64) string {
	d := decimal.NewFromFloat(amount)
	formatted := formatIndian(d.Abs())
	if d.Round(2).IsNegative() {
		return "-" + formatted
	}
	return formatted
}

// Deduction renders an amount that is subtracted in a statement, e.g. "(₹6,33,60,000.00)".
// A negative amount keeps its sign inside the parentheses.
func Deduction(amount decimal.Decimal) string {
	return "(" + CurrencyDecimal(amount) + ")"
}

// Crore renders an amount in crores with two decimals (e.g., "₹9.07 Cr").
func Crore(amount float64) string {
	crores := decimal.NewFromFloat(amount).Div(rupeesPerCrore)
	formatted := groupThousands(crores.Abs().StringFixed(2))
	if crores.Round(2).IsNegative() {
		return "-" + constants.CurrencySymbol + formatted + " Cr"
	}
	return constants.CurrencySymbol + formatted + " Cr"
}

// formatIndian groups the last three integer digits, then pairs of digits
// (lakh, crore, ...).
func formatIndian(value decimal.Decimal) string {
	intPart, decPart := splitFixed(value.StringFixed(2))
	if len(intPart) <= 3 {
		return intPart + "." + decPart
	}

	lastThree := intPart[len(intPart)-3:]
	remaining := intPart[:len(intPart)-3]
	var groups []string
	for len(remaining) > 2 {
		groups = append([]string{remaining[len(remaining)-2:]}, groups...)
		remaining = remaining[:len(remaining)-2]
	}
	groups = append([]string{remaining}, groups...)
	return strings.Join(groups, ",") + "," + lastThree + "." + decPart
}

// groupThousands applies western three-digit grouping to a fixed-point string.
func groupThousands(fixed string) string {
	intPart, decPart := splitFixed(fixed)
	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}
	if decPart == "" {
		return intPart
	}
	return intPart + "." + decPart
}

func splitFixed(fixed string) (string, string) {
	parts := strings.SplitN(fixed, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}
