package financials

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/poha-forecast/pkg/constants"
	"github.com/iwvelando/poha-forecast/pkg/mathutil"
)

// BreakevenBasis selects the profit line that breakeven drives to zero.
type BreakevenBasis string

const (
	// BreakevenEBITDA covers fixed operating costs only.
	BreakevenEBITDA BreakevenBasis = "ebitda"
	// BreakevenNetProfit also covers depreciation and interest.
	BreakevenNetProfit BreakevenBasis = "netProfit"
)

// ParseBreakevenBasis accepts "ebitda" or "netProfit" in any case, with
// "net_profit", "pat" and an empty string (EBITDA) as aliases.
func ParseBreakevenBasis(s string) (BreakevenBasis, error) {
	switch normalizeFieldName(s) {
	case "", "ebitda":
		return BreakevenEBITDA, nil
	case "netprofit", "pat":
		return BreakevenNetProfit, nil
	default:
		return "", fmt.Errorf("unknown breakeven basis %q (expected ebitda or netProfit)", s)
	}
}

// Label returns the display name of the basis.
func (b BreakevenBasis) Label() string {
	if b == BreakevenNetProfit {
		return "Net Profit (PAT)"
	}
	return "EBITDA"
}

// Breakeven is the paddy volume at which the chosen profit line is zero.
// Per-kg figures are per kg of paddy input.
type Breakeven struct {
	Basis             BreakevenBasis `json:"basis"`
	RevenuePerKg      float64        `json:"revenuePerKg"`
	VariableCostPerKg float64        `json:"variableCostPerKg"`
	ContributionPerKg float64        `json:"contributionPerKg"`
	FixedCostBase     float64        `json:"fixedCostBase"`

	// Volume is unbounded when each kg loses money before fixed costs.
	Volume Figure `json:"volume"`
	// Revenue is zero when Volume is unbounded.
	Revenue float64 `json:"revenue"`
	// Utilization is Volume as a percentage of annual paddy capacity.
	Utilization Figure `json:"utilization"`
}

// ComputeBreakeven derives breakeven figures from evaluated results.
// Raw material and variable operating costs are both charged per kg of
// paddy, matching the engine's cost basis.
func ComputeBreakeven(r Results, basis BreakevenBasis) Breakeven {
	if basis != BreakevenNetProfit {
		basis = BreakevenEBITDA
	}
	b := Breakeven{
		Basis:             basis,
		VariableCostPerKg: r.Assumptions.PaddyCostPerKg + r.Costs.VariableCostPerKg,
		FixedCostBase:     r.Costs.AnnualFixedCost,
	}
	if r.Production.AnnualPaddy > 0 {
		b.RevenuePerKg = r.Revenue.Annual / r.Production.AnnualPaddy
	}
	b.ContributionPerKg = b.RevenuePerKg - b.VariableCostPerKg
	if basis == BreakevenNetProfit {
		b.FixedCostBase += r.Costs.AnnualDepreciation + r.Financing.TotalInterest
	}

	if b.ContributionPerKg <= 0 {
		b.Volume = Unbounded()
		b.Utilization = Unbounded()
		return b
	}
	volume := b.FixedCostBase / b.ContributionPerKg
	b.Volume = Finite(volume)
	b.Revenue = volume * b.RevenuePerKg
	if r.Production.AnnualPaddy > 0 {
		b.Utilization = Finite(mathutil.Percent(volume, r.Production.AnnualPaddy))
	} else {
		b.Utilization = Unbounded()
	}
	return b
}

// CurvePoint is one sample of the breakeven chart.
type CurvePoint struct {
	Volume    float64 `json:"volume"`
	Revenue   float64 `json:"revenue"`
	TotalCost float64 `json:"totalCost"`
}

// Curve samples revenue and total cost over paddy volume from zero to
// 1.5× the larger of annual capacity and the breakeven volume (1.5×
// capacity when breakeven is unbounded). Non-positive points selects the
// default sample count.
func (b Breakeven) Curve(r Results, points int) []CurvePoint {
	if points <= 0 {
		points = constants.BreakevenCurvePoints
	}
	maxVolume := r.Production.AnnualPaddy
	if v, ok := b.Volume.Value(); ok {
		maxVolume = math.Max(maxVolume, v)
	}
	maxVolume *= constants.BreakevenCurveHeadroom

	volumes := mathutil.Linspace(0, maxVolume, points)
	curve := make([]CurvePoint, len(volumes))
	for i, v := range volumes {
		curve[i] = CurvePoint{
			Volume:    v,
			Revenue:   v * b.RevenuePerKg,
			TotalCost: b.FixedCostBase + v*b.VariableCostPerKg,
		}
	}
	return curve
}

// String summarises the breakeven for logs and plain output.
func (b Breakeven) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "breakeven (%s): ", b.Basis.Label())
	if b.Volume.IsUnbounded() {
		sb.WriteString("not reachable at any volume")
		return sb.String()
	}
	fmt.Fprintf(&sb, "%.0f kg paddy", b.Volume.Float64())
	return sb.String()
}
