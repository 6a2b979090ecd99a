// Package config defines the data structures related to configuration and
// includes functions for loading the config and merging scenario assumptions.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"

	"github.com/iwvelando/poha-forecast/pkg/constants"
	"github.com/iwvelando/poha-forecast/pkg/financials"
	"github.com/iwvelando/poha-forecast/pkg/validation"
)

// Configuration holds all configuration for poha-forecast.
type Configuration struct {
	Common    Common        `yaml:"common" mapstructure:"common"`
	Scenarios []Scenario    `yaml:"scenarios" mapstructure:"scenarios"`
	Logging   LoggingConfig `yaml:"logging,omitempty" mapstructure:"logging"`
	Output    OutputConfig  `yaml:"output,omitempty" mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// Common holds the template, overrides and analysis settings shared by all
// scenarios.
type Common struct {
	Preset          string              `yaml:"preset,omitempty" mapstructure:"preset"`
	Assumptions     AssumptionOverrides `yaml:"assumptions,omitempty" mapstructure:"assumptions"`
	Sensitivity     *SensitivityConfig  `yaml:"sensitivity,omitempty" mapstructure:"sensitivity"`
	Breakeven       BreakevenConfig     `yaml:"breakeven,omitempty" mapstructure:"breakeven"`
	LoanTenureYears float64             `yaml:"loanTenureYears,omitempty" mapstructure:"loanTenureYears"`
}

// Scenario is one named assumption set. Preset replaces Common.Preset and
// Assumptions are applied after the common overrides.
type Scenario struct {
	Name        string              `yaml:"name" mapstructure:"name"`
	Active      bool                `yaml:"active" mapstructure:"active"`
	Preset      string              `yaml:"preset,omitempty" mapstructure:"preset"`
	Assumptions AssumptionOverrides `yaml:"assumptions,omitempty" mapstructure:"assumptions"`
	Seek        []SeekConfig        `yaml:"seek,omitempty" mapstructure:"seek"`
}

// SensitivityConfig requests a sweep of one field from Low to High percent
// of its value.
type SensitivityConfig struct {
	Field   string   `yaml:"field" mapstructure:"field"`
	Low     *float64 `yaml:"low,omitempty" mapstructure:"low"`
	High    *float64 `yaml:"high,omitempty" mapstructure:"high"`
	Workers int      `yaml:"workers,omitempty" mapstructure:"workers"`
}

// Range returns the sweep bounds with the defaults filled in.
func (s SensitivityConfig) Range() (float64, float64) {
	low, high := constants.DefaultSweepLow, constants.DefaultSweepHigh
	if s.Low != nil {
		low = *s.Low
	}
	if s.High != nil {
		high = *s.High
	}
	return low, high
}

// Validate checks the field name and bounds.
func (s SensitivityConfig) Validate() error {
	if _, err := financials.ParseField(s.Field); err != nil {
		return fmt.Errorf("sensitivity: %w", err)
	}
	low, high := s.Range()
	if low > high {
		return fmt.Errorf("sensitivity: low %.2f must not exceed high %.2f", low, high)
	}
	return nil
}

// BreakevenConfig selects the profit line breakeven is computed against.
type BreakevenConfig struct {
	Basis string `yaml:"basis,omitempty" mapstructure:"basis"`
}

// AssumptionOverrides holds optional values for each assumption. A nil
// field leaves the underlying value unchanged.
type AssumptionOverrides struct {
	HoursPerDay               *float64 `yaml:"hoursPerDay,omitempty" json:"hoursPerDay,omitempty" mapstructure:"hoursPerDay"`
	DaysPerMonth              *float64 `yaml:"daysPerMonth,omitempty" json:"daysPerMonth,omitempty" mapstructure:"daysPerMonth"`
	PaddyThroughputKgPerHr    *float64 `yaml:"paddyThroughputKgPerHr,omitempty" json:"paddyThroughputKgPerHr,omitempty" mapstructure:"paddyThroughputKgPerHr"`
	YieldPct                  *float64 `yaml:"yieldPct,omitempty" json:"yieldPct,omitempty" mapstructure:"yieldPct"`
	ByproductSalePct          *float64 `yaml:"byproductSalePct,omitempty" json:"byproductSalePct,omitempty" mapstructure:"byproductSalePct"`
	PaddyCostPerKg            *float64 `yaml:"paddyCostPerKg,omitempty" json:"paddyCostPerKg,omitempty" mapstructure:"paddyCostPerKg"`
	ProductPricePerKg         *float64 `yaml:"productPricePerKg,omitempty" json:"productPricePerKg,omitempty" mapstructure:"productPricePerKg"`
	ByproductPricePerKg       *float64 `yaml:"byproductPricePerKg,omitempty" json:"byproductPricePerKg,omitempty" mapstructure:"byproductPricePerKg"`
	LandCost                  *float64 `yaml:"landCost,omitempty" json:"landCost,omitempty" mapstructure:"landCost"`
	CivilCost                 *float64 `yaml:"civilCost,omitempty" json:"civilCost,omitempty" mapstructure:"civilCost"`
	MachineryCost             *float64 `yaml:"machineryCost,omitempty" json:"machineryCost,omitempty" mapstructure:"machineryCost"`
	MachineryLifeYears        *float64 `yaml:"machineryLifeYears,omitempty" json:"machineryLifeYears,omitempty" mapstructure:"machineryLifeYears"`
	PackagingCostPerKg        *float64 `yaml:"packagingCostPerKg,omitempty" json:"packagingCostPerKg,omitempty" mapstructure:"packagingCostPerKg"`
	FuelCostPerKg             *float64 `yaml:"fuelCostPerKg,omitempty" json:"fuelCostPerKg,omitempty" mapstructure:"fuelCostPerKg"`
	OtherVariableCostPerKg    *float64 `yaml:"otherVariableCostPerKg,omitempty" json:"otherVariableCostPerKg,omitempty" mapstructure:"otherVariableCostPerKg"`
	RentPerMonth              *float64 `yaml:"rentPerMonth,omitempty" json:"rentPerMonth,omitempty" mapstructure:"rentPerMonth"`
	LaborPerMonth             *float64 `yaml:"laborPerMonth,omitempty" json:"laborPerMonth,omitempty" mapstructure:"laborPerMonth"`
	ElectricityPerMonth       *float64 `yaml:"electricityPerMonth,omitempty" json:"electricityPerMonth,omitempty" mapstructure:"electricityPerMonth"`
	SecurityInsurancePerMonth *float64 `yaml:"securityInsurancePerMonth,omitempty" json:"securityInsurancePerMonth,omitempty" mapstructure:"securityInsurancePerMonth"`
	MiscPerMonth              *float64 `yaml:"miscPerMonth,omitempty" json:"miscPerMonth,omitempty" mapstructure:"miscPerMonth"`
	EquityPct                 *float64 `yaml:"equityPct,omitempty" json:"equityPct,omitempty" mapstructure:"equityPct"`
	InterestRatePct           *float64 `yaml:"interestRatePct,omitempty" json:"interestRatePct,omitempty" mapstructure:"interestRatePct"`
	TaxRatePct                *float64 `yaml:"taxRatePct,omitempty" json:"taxRatePct,omitempty" mapstructure:"taxRatePct"`
	RMInventoryDays           *float64 `yaml:"rmInventoryDays,omitempty" json:"rmInventoryDays,omitempty" mapstructure:"rmInventoryDays"`
	FGInventoryDays           *float64 `yaml:"fgInventoryDays,omitempty" json:"fgInventoryDays,omitempty" mapstructure:"fgInventoryDays"`
	DebtorDays                *float64 `yaml:"debtorDays,omitempty" json:"debtorDays,omitempty" mapstructure:"debtorDays"`
	CreditorDays              *float64 `yaml:"creditorDays,omitempty" json:"creditorDays,omitempty" mapstructure:"creditorDays"`
}

func (o *AssumptionOverrides) slots() map[financials.Field]**float64 {
	return map[financials.Field]**float64{
		financials.FieldHoursPerDay:               &o.HoursPerDay,
		financials.FieldDaysPerMonth:              &o.DaysPerMonth,
		financials.FieldPaddyThroughputKgPerHr:    &o.PaddyThroughputKgPerHr,
		financials.FieldYieldPct:                  &o.YieldPct,
		financials.FieldByproductSalePct:          &o.ByproductSalePct,
		financials.FieldPaddyCostPerKg:            &o.PaddyCostPerKg,
		financials.FieldProductPricePerKg:         &o.ProductPricePerKg,
		financials.FieldByproductPricePerKg:       &o.ByproductPricePerKg,
		financials.FieldLandCost:                  &o.LandCost,
		financials.FieldCivilCost:                 &o.CivilCost,
		financials.FieldMachineryCost:             &o.MachineryCost,
		financials.FieldMachineryLifeYears:        &o.MachineryLifeYears,
		financials.FieldPackagingCostPerKg:        &o.PackagingCostPerKg,
		financials.FieldFuelCostPerKg:             &o.FuelCostPerKg,
		financials.FieldOtherVariableCostPerKg:    &o.OtherVariableCostPerKg,
		financials.FieldRentPerMonth:              &o.RentPerMonth,
		financials.FieldLaborPerMonth:             &o.LaborPerMonth,
		financials.FieldElectricityPerMonth:       &o.ElectricityPerMonth,
		financials.FieldSecurityInsurancePerMonth: &o.SecurityInsurancePerMonth,
		financials.FieldMiscPerMonth:              &o.MiscPerMonth,
		financials.FieldEquityPct:                 &o.EquityPct,
		financials.FieldInterestRatePct:           &o.InterestRatePct,
		financials.FieldTaxRatePct:                &o.TaxRatePct,
		financials.FieldRMInventoryDays:           &o.RMInventoryDays,
		financials.FieldFGInventoryDays:           &o.FGInventoryDays,
		financials.FieldDebtorDays:                &o.DebtorDays,
		financials.FieldCreditorDays:              &o.CreditorDays,
	}
}

// Get returns the override for a field and whether one is set.
func (o AssumptionOverrides) Get(field financials.Field) (float64, bool) {
	slot, ok := o.slots()[field]
	if !ok || *slot == nil {
		return 0, false
	}
	return **slot, true
}

// Set stores an override for a field.
func (o *AssumptionOverrides) Set(field financials.Field, value float64) error {
	slot, ok := o.slots()[field]
	if !ok {
		return fmt.Errorf("unknown assumption field %q", field)
	}
	v := value
	*slot = &v
	return nil
}

// Len returns the number of fields that are overridden.
func (o AssumptionOverrides) Len() int {
	n := 0
	for _, slot := range o.slots() {
		if *slot != nil {
			n++
		}
	}
	return n
}

// Apply returns a copy of base with every set override written over it.
func (o AssumptionOverrides) Apply(base financials.Assumptions) (financials.Assumptions, error) {
	out := base
	slots := o.slots()
	for _, field := range financials.Fields() {
		slot := slots[field]
		if *slot == nil {
			continue
		}
		var err error
		out, err = out.With(field, **slot)
		if err != nil {
			return base, err
		}
	}
	return out, nil
}

// OverridesFrom returns overrides that set every field to the value in a.
func OverridesFrom(a financials.Assumptions) AssumptionOverrides {
	var o AssumptionOverrides
	for _, field := range financials.Fields() {
		if v, err := a.Get(field); err == nil {
			_ = o.Set(field, v)
		}
	}
	return o
}

// PresetName returns the preset a scenario starts from.
func (c *Configuration) PresetName(s Scenario) string {
	if strings.TrimSpace(s.Preset) != "" {
		return s.Preset
	}
	if strings.TrimSpace(c.Common.Preset) != "" {
		return c.Common.Preset
	}
	return constants.DefaultPreset
}

// ScenarioAssumptions merges the preset, the common overrides and the
// scenario overrides, in that order.
func (c *Configuration) ScenarioAssumptions(s Scenario) (financials.Assumptions, error) {
	base, err := financials.Preset(c.PresetName(s))
	if err != nil {
		return financials.Assumptions{}, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	merged, err := c.Common.Assumptions.Apply(base)
	if err != nil {
		return financials.Assumptions{}, fmt.Errorf("scenario %s common assumptions: %w", s.Name, err)
	}
	merged, err = s.Assumptions.Apply(merged)
	if err != nil {
		return financials.Assumptions{}, fmt.Errorf("scenario %s assumptions: %w", s.Name, err)
	}
	return merged, nil
}

// BreakevenBasis returns the configured basis, falling back to EBITDA.
func (c *Configuration) BreakevenBasis() (financials.BreakevenBasis, error) {
	return financials.ParseBreakevenBasis(c.Common.Breakeven.Basis)
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Keys present in the file can be overridden from the
// environment, e.g. POHA_OUTPUT_FORMAT for output.format.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// ActiveScenarios returns the scenarios marked active, in file order.
func (c *Configuration) ActiveScenarios() []Scenario {
	var active []Scenario
	for _, s := range c.Scenarios {
		if s.Active {
			active = append(active, s)
		}
	}
	return active
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if len(c.Scenarios) == 0 {
		return append(warnings, "No scenarios are defined")
	}
	if len(c.ActiveScenarios()) == 0 {
		warnings = append(warnings, "No scenarios are active")
	}

	if _, err := financials.Preset(c.Common.Preset); err != nil {
		warnings = append(warnings, fmt.Sprintf("Common preset: %v", err))
	}
	if c.Common.Sensitivity != nil {
		if err := c.Common.Sensitivity.Validate(); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	if _, err := c.BreakevenBasis(); err != nil {
		warnings = append(warnings, err.Error())
	}
	if c.Common.LoanTenureYears < 0 {
		warnings = append(warnings, fmt.Sprintf("Loan tenure %.2f years is negative; debt service is skipped", c.Common.LoanTenureYears))
	}

	seen := make(map[string]bool)
	for _, scenario := range c.Scenarios {
		if seen[scenario.Name] {
			warnings = append(warnings, fmt.Sprintf("Scenario name '%s' is used more than once", scenario.Name))
		}
		seen[scenario.Name] = true

		if !scenario.Active {
			continue
		}

		assumptions, err := c.ScenarioAssumptions(scenario)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		for _, w := range validation.ValidateAssumptions(assumptions) {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s': %s", scenario.Name, w))
		}
		for i := range scenario.Seek {
			seek := scenario.Seek[i]
			if err := seek.Validate(); err != nil {
				warnings = append(warnings, fmt.Sprintf("Scenario '%s' seek %d: %v", scenario.Name, i+1, err))
			}
		}
	}

	return warnings
}
