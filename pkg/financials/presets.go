package financials

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/poha-forecast/pkg/constants"
)

// DefaultAssumptions returns the worksheet defaults: a 1 t/hr line running
// ten hours a day, 24 days a month, financed 30% by equity.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		HoursPerDay:  10,
		DaysPerMonth: 24,

		PaddyThroughputKgPerHr: 1000,
		YieldPct:               65,
		ByproductSalePct:       32,

		PaddyCostPerKg:      22,
		ProductPricePerKg:   45,
		ByproductPricePerKg: 7,

		LandCost:           0,
		CivilCost:          0,
		MachineryCost:      7000000,
		MachineryLifeYears: 15,

		PackagingCostPerKg:     0.5,
		FuelCostPerKg:          0,
		OtherVariableCostPerKg: 0,

		RentPerMonth:              300000,
		LaborPerMonth:             400000,
		ElectricityPerMonth:       150000,
		SecurityInsurancePerMonth: 300000,
		MiscPerMonth:              300000,

		EquityPct:       30,
		InterestRatePct: 9,
		TaxRatePct:      25,

		RMInventoryDays: 72,
		FGInventoryDays: 20,
		DebtorDays:      45,
		CreditorDays:    5,
	}
}

var presets = map[string]func() Assumptions{
	constants.DefaultPreset: DefaultAssumptions,
	"conservative": func() Assumptions {
		a := DefaultAssumptions()
		a.HoursPerDay = 8
		a.DaysPerMonth = 22
		a.YieldPct = 62
		a.ByproductSalePct = 30
		a.PaddyCostPerKg = 24
		a.ProductPricePerKg = 43
		a.ByproductPricePerKg = 6
		a.FuelCostPerKg = 0.3
		a.InterestRatePct = 10.5
		a.DebtorDays = 60
		return a
	},
	"optimistic": func() Assumptions {
		a := DefaultAssumptions()
		a.HoursPerDay = 16
		a.DaysPerMonth = 26
		a.YieldPct = 68
		a.ByproductSalePct = 30
		a.PaddyCostPerKg = 21
		a.ProductPricePerKg = 47
		a.ByproductPricePerKg = 8
		a.InterestRatePct = 8.5
		a.DebtorDays = 30
		a.CreditorDays = 15
		return a
	},
}

// Preset returns a named scenario template. Names are case-insensitive; an
// empty name selects the defaults.
func Preset(name string) (Assumptions, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = constants.DefaultPreset
	}
	build, ok := presets[key]
	if !ok {
		return Assumptions{}, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return build(), nil
}

// PresetNames lists the available presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
