package format

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/iwvelando/poha-forecast/pkg/financials"
)

// Unbounded is shown for figures with no finite value.
const Unbounded = "∞"

// Percent renders a percentage with one decimal (e.g., "30.1%").
func Percent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// FigurePercent renders a ratio as Percent, or Unbounded.
func FigurePercent(f financials.Figure) string {
	if v, ok := f.Value(); ok {
		return Percent(v)
	}
	return Unbounded
}

// Kg renders a whole-kilogram volume with thousands separators (e.g., "28,80,000 kg").
// Grouping follows the Indian convention used for currency.
func Kg(value float64) string {
	return Quantity(value) + " kg"
}

// Quantity renders a whole number with Indian grouping and no decimals.
func Quantity(value float64) string {
	d := decimal.NewFromFloat(math.Round(value))
	intPart, _ := splitFixed(formatIndian(d.Abs()))
	if d.IsNegative() {
		return "-" + intPart
	}
	return intPart
}

// FigureKg renders a volume as Kg, or Unbounded.
func FigureKg(f financials.Figure) string {
	if v, ok := f.Value(); ok {
		return Kg(v)
	}
	return Unbounded
}
