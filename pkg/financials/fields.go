package financials

import (
	"fmt"
	"math"
	"strings"
)

// Field names one numeric assumption. The value is the camelCase key used in
// configuration files and API payloads.
type Field string

// Assumption fields, in display order.
const (
	FieldHoursPerDay               Field = "hoursPerDay"
	FieldDaysPerMonth              Field = "daysPerMonth"
	FieldPaddyThroughputKgPerHr    Field = "paddyThroughputKgPerHr"
	FieldYieldPct                  Field = "yieldPct"
	FieldByproductSalePct          Field = "byproductSalePct"
	FieldPaddyCostPerKg            Field = "paddyCostPerKg"
	FieldProductPricePerKg         Field = "productPricePerKg"
	FieldByproductPricePerKg       Field = "byproductPricePerKg"
	FieldLandCost                  Field = "landCost"
	FieldCivilCost                 Field = "civilCost"
	FieldMachineryCost             Field = "machineryCost"
	FieldMachineryLifeYears        Field = "machineryLifeYears"
	FieldPackagingCostPerKg        Field = "packagingCostPerKg"
	FieldFuelCostPerKg             Field = "fuelCostPerKg"
	FieldOtherVariableCostPerKg    Field = "otherVariableCostPerKg"
	FieldRentPerMonth              Field = "rentPerMonth"
	FieldLaborPerMonth             Field = "laborPerMonth"
	FieldElectricityPerMonth       Field = "electricityPerMonth"
	FieldSecurityInsurancePerMonth Field = "securityInsurancePerMonth"
	FieldMiscPerMonth              Field = "miscPerMonth"
	FieldEquityPct                 Field = "equityPct"
	FieldInterestRatePct           Field = "interestRatePct"
	FieldTaxRatePct                Field = "taxRatePct"
	FieldRMInventoryDays           Field = "rmInventoryDays"
	FieldFGInventoryDays           Field = "fgInventoryDays"
	FieldDebtorDays                Field = "debtorDays"
	FieldCreditorDays              Field = "creditorDays"
)

type fieldSpec struct {
	label    string
	integer  bool
	floatPtr func(a *Assumptions) *float64
	intPtr   func(a *Assumptions) *int
}

var fieldOrder = []Field{
	FieldHoursPerDay, FieldDaysPerMonth,
	FieldPaddyThroughputKgPerHr, FieldYieldPct, FieldByproductSalePct,
	FieldPaddyCostPerKg, FieldProductPricePerKg, FieldByproductPricePerKg,
	FieldLandCost, FieldCivilCost, FieldMachineryCost, FieldMachineryLifeYears,
	FieldPackagingCostPerKg, FieldFuelCostPerKg, FieldOtherVariableCostPerKg,
	FieldRentPerMonth, FieldLaborPerMonth, FieldElectricityPerMonth, FieldSecurityInsurancePerMonth, FieldMiscPerMonth,
	FieldEquityPct, FieldInterestRatePct, FieldTaxRatePct,
	FieldRMInventoryDays, FieldFGInventoryDays, FieldDebtorDays, FieldCreditorDays,
}

func floatField(label string, get func(a *Assumptions) *float64) fieldSpec {
	return fieldSpec{label: label, floatPtr: get}
}

func intField(label string, get func(a *Assumptions) *int) fieldSpec {
	return fieldSpec{label: label, integer: true, intPtr: get}
}

var fieldSpecs = map[Field]fieldSpec{
	FieldHoursPerDay:               intField("Production Hours/Day", func(a *Assumptions) *int { return &a.HoursPerDay }),
	FieldDaysPerMonth:              intField("Operational Days/Month", func(a *Assumptions) *int { return &a.DaysPerMonth }),
	FieldPaddyThroughputKgPerHr:    floatField("Paddy Rate (kg/hr)", func(a *Assumptions) *float64 { return &a.PaddyThroughputKgPerHr }),
	FieldYieldPct:                  floatField("Poha Yield (%)", func(a *Assumptions) *float64 { return &a.YieldPct }),
	FieldByproductSalePct:          floatField("Byproduct Sale (%)", func(a *Assumptions) *float64 { return &a.ByproductSalePct }),
	FieldPaddyCostPerKg:            floatField("Paddy Rate", func(a *Assumptions) *float64 { return &a.PaddyCostPerKg }),
	FieldProductPricePerKg:         floatField("Poha Price", func(a *Assumptions) *float64 { return &a.ProductPricePerKg }),
	FieldByproductPricePerKg:       floatField("Byproduct Rate", func(a *Assumptions) *float64 { return &a.ByproductPricePerKg }),
	FieldLandCost:                  floatField("Land Cost", func(a *Assumptions) *float64 { return &a.LandCost }),
	FieldCivilCost:                 floatField("Civil Work", func(a *Assumptions) *float64 { return &a.CivilCost }),
	FieldMachineryCost:             floatField("Machinery", func(a *Assumptions) *float64 { return &a.MachineryCost }),
	FieldMachineryLifeYears:        floatField("Useful Life (Years)", func(a *Assumptions) *float64 { return &a.MachineryLifeYears }),
	FieldPackagingCostPerKg:        floatField("Packaging", func(a *Assumptions) *float64 { return &a.PackagingCostPerKg }),
	FieldFuelCostPerKg:             floatField("Fuel/Power", func(a *Assumptions) *float64 { return &a.FuelCostPerKg }),
	FieldOtherVariableCostPerKg:    floatField("Other Variable", func(a *Assumptions) *float64 { return &a.OtherVariableCostPerKg }),
	FieldRentPerMonth:              floatField("Rent", func(a *Assumptions) *float64 { return &a.RentPerMonth }),
	FieldLaborPerMonth:             floatField("Labor & Salaries", func(a *Assumptions) *float64 { return &a.LaborPerMonth }),
	FieldElectricityPerMonth:       floatField("Electricity", func(a *Assumptions) *float64 { return &a.ElectricityPerMonth }),
	FieldSecurityInsurancePerMonth: floatField("Security & Insurance", func(a *Assumptions) *float64 { return &a.SecurityInsurancePerMonth }),
	FieldMiscPerMonth:              floatField("Misc Overheads", func(a *Assumptions) *float64 { return &a.MiscPerMonth }),
	FieldEquityPct:                 floatField("Equity Contribution", func(a *Assumptions) *float64 { return &a.EquityPct }),
	FieldInterestRatePct:           floatField("Interest Rate", func(a *Assumptions) *float64 { return &a.InterestRatePct }),
	FieldTaxRatePct:                floatField("Corporate Tax Rate", func(a *Assumptions) *float64 { return &a.TaxRatePct }),
	FieldRMInventoryDays:           intField("Raw Material Inventory", func(a *Assumptions) *int { return &a.RMInventoryDays }),
	FieldFGInventoryDays:           intField("Finished Goods Inventory", func(a *Assumptions) *int { return &a.FGInventoryDays }),
	FieldDebtorDays:                intField("Debtors (Receivables)", func(a *Assumptions) *int { return &a.DebtorDays }),
	FieldCreditorDays:              intField("Creditors (Payables)", func(a *Assumptions) *int { return &a.CreditorDays }),
}

// Fields returns every assumption field in display order.
func Fields() []Field {
	out := make([]Field, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// ParseField resolves a field name. Matching ignores case, underscores and
// hyphens, so "product_price_per_kg" and "ProductPricePerKg" both resolve.
func ParseField(name string) (Field, error) {
	key := normalizeFieldName(name)
	for _, f := range fieldOrder {
		if normalizeFieldName(string(f)) == key {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown assumption field %q", name)
}

func normalizeFieldName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(name)
}

// Label returns the human readable name of the field.
func (f Field) Label() string {
	if spec, ok := fieldSpecs[f]; ok {
		return spec.label
	}
	return string(f)
}

// IsInteger reports whether the field holds a whole number.
func (f Field) IsInteger() bool {
	return fieldSpecs[f].integer
}

// Valid reports whether f names a known field.
func (f Field) Valid() bool {
	_, ok := fieldSpecs[f]
	return ok
}

// Get returns the value of a field.
func (a Assumptions) Get(f Field) (float64, error) {
	spec, ok := fieldSpecs[f]
	if !ok {
		return 0, fmt.Errorf("unknown assumption field %q", f)
	}
	if spec.integer {
		return float64(*spec.intPtr(&a)), nil
	}
	return *spec.floatPtr(&a), nil
}

// With returns a copy of a with one field replaced. Integer fields are
// rounded to the nearest whole number.
func (a Assumptions) With(f Field, v float64) (Assumptions, error) {
	spec, ok := fieldSpecs[f]
	if !ok {
		return a, fmt.Errorf("unknown assumption field %q", f)
	}
	if spec.integer {
		*spec.intPtr(&a) = int(math.Round(v))
	} else {
		*spec.floatPtr(&a) = v
	}
	return a, nil
}
