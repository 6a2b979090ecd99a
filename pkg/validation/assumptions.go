package validation

import (
	"fmt"
	"strconv"

	"github.com/iwvelando/poha-forecast/pkg/financials"
)

// Range is the accepted interval for one assumption. Max is ignored when
// NoMax is set; ExclusiveMin rejects a value equal to Min.
type Range struct {
	Min          float64
	Max          float64
	NoMax        bool
	ExclusiveMin bool
}

func between(lo, hi float64) Range { return Range{Min: lo, Max: hi} }
func atLeast(lo float64) Range     { return Range{Min: lo, NoMax: true} }
func positive() Range              { return Range{NoMax: true, ExclusiveMin: true} }

// Ranges are the bounds an input form offers for each assumption. Values
// outside them still evaluate; they only produce warnings.
var Ranges = map[financials.Field]Range{
	financials.FieldHoursPerDay:               between(1, 24),
	financials.FieldDaysPerMonth:              between(1, 31),
	financials.FieldPaddyThroughputKgPerHr:    positive(),
	financials.FieldYieldPct:                  between(0, 100),
	financials.FieldByproductSalePct:          between(0, 100),
	financials.FieldPaddyCostPerKg:            atLeast(0),
	financials.FieldProductPricePerKg:         atLeast(0),
	financials.FieldByproductPricePerKg:       atLeast(0),
	financials.FieldLandCost:                  atLeast(0),
	financials.FieldCivilCost:                 atLeast(0),
	financials.FieldMachineryCost:             atLeast(0),
	financials.FieldMachineryLifeYears:        positive(),
	financials.FieldPackagingCostPerKg:        atLeast(0),
	financials.FieldFuelCostPerKg:             atLeast(0),
	financials.FieldOtherVariableCostPerKg:    atLeast(0),
	financials.FieldRentPerMonth:              atLeast(0),
	financials.FieldLaborPerMonth:             atLeast(0),
	financials.FieldElectricityPerMonth:       atLeast(0),
	financials.FieldSecurityInsurancePerMonth: atLeast(0),
	financials.FieldMiscPerMonth:              atLeast(0),
	financials.FieldEquityPct:                 between(0, 100),
	financials.FieldInterestRatePct:           atLeast(0),
	financials.FieldTaxRatePct:                between(0, 100),
	financials.FieldRMInventoryDays:           atLeast(0),
	financials.FieldFGInventoryDays:           atLeast(0),
	financials.FieldDebtorDays:                atLeast(0),
	financials.FieldCreditorDays:              atLeast(0),
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	if r.ExclusiveMin {
		if v <= r.Min {
			return false
		}
	} else if v < r.Min {
		return false
	}
	return r.NoMax || v <= r.Max
}

func (r Range) String() string {
	switch {
	case r.NoMax && r.ExclusiveMin:
		return "greater than " + formatNumber(r.Min)
	case r.NoMax:
		return "at least " + formatNumber(r.Min)
	default:
		return formatNumber(r.Min) + " to " + formatNumber(r.Max)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ValidateAssumptions returns a warning for every assumption outside its
// range, in field order.
func ValidateAssumptions(a financials.Assumptions) []string {
	var warnings []string
	for _, field := range financials.Fields() {
		r, ok := Ranges[field]
		if !ok {
			continue
		}
		v, err := a.Get(field)
		if err != nil {
			continue
		}
		if !r.Contains(v) {
			warnings = append(warnings, fmt.Sprintf("%s %s is outside the expected range (%s)",
				field.Label(), formatNumber(v), r))
		}
	}
	return warnings
}
