// Package financials implements the plant's steady-state financial model: a
// pure evaluation of a fixed set of assumptions into annualised production,
// profit, working-capital and return figures, plus the sensitivity sweep and
// breakeven helpers built on top of it.
package financials

// Assumptions holds every user-editable input of the model. Values are taken
// as given; only the load-bearing fields are checked by Validate.
type Assumptions struct {
	// Operations
	HoursPerDay  int `json:"hoursPerDay" yaml:"hoursPerDay" mapstructure:"hoursPerDay"`
	DaysPerMonth int `json:"daysPerMonth" yaml:"daysPerMonth" mapstructure:"daysPerMonth"`

	// Production
	PaddyThroughputKgPerHr float64 `json:"paddyThroughputKgPerHr" yaml:"paddyThroughputKgPerHr" mapstructure:"paddyThroughputKgPerHr"`
	YieldPct               float64 `json:"yieldPct" yaml:"yieldPct" mapstructure:"yieldPct"`
	ByproductSalePct       float64 `json:"byproductSalePct" yaml:"byproductSalePct" mapstructure:"byproductSalePct"`

	// Pricing, currency per kg
	PaddyCostPerKg      float64 `json:"paddyCostPerKg" yaml:"paddyCostPerKg" mapstructure:"paddyCostPerKg"`
	ProductPricePerKg   float64 `json:"productPricePerKg" yaml:"productPricePerKg" mapstructure:"productPricePerKg"`
	ByproductPricePerKg float64 `json:"byproductPricePerKg" yaml:"byproductPricePerKg" mapstructure:"byproductPricePerKg"`

	// Capital
	LandCost           float64 `json:"landCost" yaml:"landCost" mapstructure:"landCost"`
	CivilCost          float64 `json:"civilCost" yaml:"civilCost" mapstructure:"civilCost"`
	MachineryCost      float64 `json:"machineryCost" yaml:"machineryCost" mapstructure:"machineryCost"`
	MachineryLifeYears float64 `json:"machineryLifeYears" yaml:"machineryLifeYears" mapstructure:"machineryLifeYears"`

	// Variable unit costs, currency per kg of paddy
	PackagingCostPerKg     float64 `json:"packagingCostPerKg" yaml:"packagingCostPerKg" mapstructure:"packagingCostPerKg"`
	FuelCostPerKg          float64 `json:"fuelCostPerKg" yaml:"fuelCostPerKg" mapstructure:"fuelCostPerKg"`
	OtherVariableCostPerKg float64 `json:"otherVariableCostPerKg" yaml:"otherVariableCostPerKg" mapstructure:"otherVariableCostPerKg"`

	// Fixed monthly costs
	RentPerMonth              float64 `json:"rentPerMonth" yaml:"rentPerMonth" mapstructure:"rentPerMonth"`
	LaborPerMonth             float64 `json:"laborPerMonth" yaml:"laborPerMonth" mapstructure:"laborPerMonth"`
	ElectricityPerMonth       float64 `json:"electricityPerMonth" yaml:"electricityPerMonth" mapstructure:"electricityPerMonth"`
	SecurityInsurancePerMonth float64 `json:"securityInsurancePerMonth" yaml:"securityInsurancePerMonth" mapstructure:"securityInsurancePerMonth"`
	MiscPerMonth              float64 `json:"miscPerMonth" yaml:"miscPerMonth" mapstructure:"miscPerMonth"`

	// Finance, percentages
	EquityPct       float64 `json:"equityPct" yaml:"equityPct" mapstructure:"equityPct"`
	InterestRatePct float64 `json:"interestRatePct" yaml:"interestRatePct" mapstructure:"interestRatePct"`
	TaxRatePct      float64 `json:"taxRatePct" yaml:"taxRatePct" mapstructure:"taxRatePct"`

	// Working capital, days
	RMInventoryDays int `json:"rmInventoryDays" yaml:"rmInventoryDays" mapstructure:"rmInventoryDays"`
	FGInventoryDays int `json:"fgInventoryDays" yaml:"fgInventoryDays" mapstructure:"fgInventoryDays"`
	DebtorDays      int `json:"debtorDays" yaml:"debtorDays" mapstructure:"debtorDays"`
	CreditorDays    int `json:"creditorDays" yaml:"creditorDays" mapstructure:"creditorDays"`
}

// TotalCapex is land plus civil works plus machinery.
func (a Assumptions) TotalCapex() float64 {
	return a.LandCost + a.CivilCost + a.MachineryCost
}

// VariableCostPerKg sums the per-kg variable costs.
func (a Assumptions) VariableCostPerKg() float64 {
	return a.PackagingCostPerKg + a.FuelCostPerKg + a.OtherVariableCostPerKg
}

// MonthlyFixedCost sums the five fixed monthly cost items.
func (a Assumptions) MonthlyFixedCost() float64 {
	return a.RentPerMonth + a.LaborPerMonth + a.ElectricityPerMonth + a.SecurityInsurancePerMonth + a.MiscPerMonth
}

// Validate reports an *ValidationError when a load-bearing input is not
// positive. Every other field is accepted as given.
func (a Assumptions) Validate() error {
	var reasons []string
	if a.YieldPct <= 0 {
		reasons = append(reasons, "yield must be greater than 0")
	}
	if a.ProductPricePerKg <= 0 {
		reasons = append(reasons, "product price must be greater than 0")
	}
	if a.TotalCapex() <= 0 {
		reasons = append(reasons, "total capex must be greater than 0")
	}
	if a.MachineryLifeYears <= 0 {
		reasons = append(reasons, "machinery life must be greater than 0")
	}
	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}
