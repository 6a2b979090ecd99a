package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/poha-forecast/pkg/financials"
)

const sampleConfig = `
logging:
  level: debug
output:
  format: csv
common:
  preset: default
  assumptions:
    productPricePerKg: 46
    fuelCostPerKg: 0
  sensitivity:
    field: paddy_cost_per_kg
    low: -10
  breakeven:
    basis: netProfit
  loanTenureYears: 7
scenarios:
  - name: Base
    active: true
  - name: Night Shift
    active: true
    preset: conservative
    assumptions:
      hoursPerDay: 20
      productPricePerKg: 44
    seek:
      - field: productPricePerKg
        target: ebitda
        min: 30
        max: 60
  - name: Parked
    active: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Sample config file",
			configPath: writeConfig(t, sampleConfig),
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationEnvOverride(t *testing.T) {
	t.Setenv("POHA_OUTPUT_FORMAT", "json")
	t.Setenv("POHA_LOGGING_LEVEL", "warn")

	conf, err := LoadConfiguration(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Output.Format != "json" {
		t.Errorf("output format = %q, expected the environment override", conf.Output.Format)
	}
	if conf.Logging.Level != "warn" {
		t.Errorf("logging level = %q, expected the environment override", conf.Logging.Level)
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	if conf.Logging.Level != "debug" || conf.Output.Format != "csv" {
		t.Errorf("logging/output = %+v/%+v", conf.Logging, conf.Output)
	}
	if len(conf.Scenarios) != 3 {
		t.Fatalf("expected 3 scenarios, got %d", len(conf.Scenarios))
	}
	if conf.Common.LoanTenureYears != 7 {
		t.Errorf("loanTenureYears = %v, expected 7", conf.Common.LoanTenureYears)
	}
	if conf.Common.Sensitivity == nil || conf.Common.Sensitivity.Field != "paddy_cost_per_kg" {
		t.Fatalf("sensitivity = %+v", conf.Common.Sensitivity)
	}
	low, high := conf.Common.Sensitivity.Range()
	if low != -10 || high != 20 {
		t.Errorf("sensitivity range = [%v, %v], expected [-10, 20]", low, high)
	}

	price, ok := conf.Common.Assumptions.Get(financials.FieldProductPricePerKg)
	if !ok || price != 46 {
		t.Errorf("common price override = %v (%v), expected 46", price, ok)
	}
	fuel, ok := conf.Common.Assumptions.Get(financials.FieldFuelCostPerKg)
	if !ok || fuel != 0 {
		t.Errorf("explicit zero override should be kept, got %v (%v)", fuel, ok)
	}
	if _, ok := conf.Common.Assumptions.Get(financials.FieldYieldPct); ok {
		t.Error("yield should not be overridden")
	}

	night := conf.Scenarios[1]
	if night.Preset != "conservative" || len(night.Seek) != 1 {
		t.Fatalf("night shift scenario = %+v", night)
	}
	if night.Seek[0].Min == nil || *night.Seek[0].Min != 30 {
		t.Errorf("seek min = %v, expected 30", night.Seek[0].Min)
	}
	if conf.Scenarios[2].Active {
		t.Error("parked scenario should be inactive")
	}
}

func TestLoadConfigurationFromReaderInvalid(t *testing.T) {
	if _, err := LoadConfigurationFromReader(strings.NewReader("common: [unclosed")); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestScenarioAssumptionsMergeOrder(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	base, err := conf.ScenarioAssumptions(conf.Scenarios[0])
	if err != nil {
		t.Fatalf("ScenarioAssumptions(base) error = %v", err)
	}
	expected := financials.DefaultAssumptions()
	expected.ProductPricePerKg = 46
	if base != expected {
		t.Errorf("base assumptions = %+v, expected %+v", base, expected)
	}

	night, err := conf.ScenarioAssumptions(conf.Scenarios[1])
	if err != nil {
		t.Fatalf("ScenarioAssumptions(night) error = %v", err)
	}
	conservative, _ := financials.Preset("conservative")
	if night.YieldPct != conservative.YieldPct {
		t.Errorf("yield = %v, expected the conservative preset's %v", night.YieldPct, conservative.YieldPct)
	}
	if night.HoursPerDay != 20 {
		t.Errorf("hours = %d, expected the scenario override 20", night.HoursPerDay)
	}
	if night.ProductPricePerKg != 44 {
		t.Errorf("price = %v, scenario override should win over common", night.ProductPricePerKg)
	}
	if night.FuelCostPerKg != 0 {
		t.Errorf("fuel = %v, common override should apply over the preset", night.FuelCostPerKg)
	}
}

func TestScenarioAssumptionsUnknownPreset(t *testing.T) {
	conf := &Configuration{Scenarios: []Scenario{{Name: "x", Active: true, Preset: "aggressive"}}}
	if _, err := conf.ScenarioAssumptions(conf.Scenarios[0]); err == nil {
		t.Error("expected an error for an unknown preset")
	}
}

func TestAssumptionOverrides(t *testing.T) {
	var o AssumptionOverrides
	if o.Len() != 0 {
		t.Fatalf("zero overrides should be empty, got %d", o.Len())
	}
	if err := o.Set(financials.FieldHoursPerDay, 11.6); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := o.Set(financials.Field("bogus"), 1); err == nil {
		t.Error("Set() should reject an unknown field")
	}

	applied, err := o.Apply(financials.DefaultAssumptions())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if applied.HoursPerDay != 12 {
		t.Errorf("hours = %d, expected the override rounded to 12", applied.HoursPerDay)
	}

	all := OverridesFrom(financials.DefaultAssumptions())
	if all.Len() != len(financials.Fields()) {
		t.Errorf("OverridesFrom set %d fields, expected %d", all.Len(), len(financials.Fields()))
	}
	roundTrip, err := all.Apply(financials.Assumptions{})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if roundTrip != financials.DefaultAssumptions() {
		t.Errorf("round trip = %+v", roundTrip)
	}
}

func TestSensitivityConfigValidate(t *testing.T) {
	low, high := -5.0, 5.0
	inverted := 10.0

	tests := []struct {
		name    string
		config  SensitivityConfig
		wantErr bool
	}{
		{"Defaults", SensitivityConfig{Field: "yieldPct"}, false},
		{"Explicit range", SensitivityConfig{Field: "paddyCostPerKg", Low: &low, High: &high}, false},
		{"Unknown field", SensitivityConfig{Field: "colour"}, true},
		{"Inverted range", SensitivityConfig{Field: "yieldPct", Low: &inverted, High: &high}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateConfiguration(t *testing.T) {
	t.Run("clean sample", func(t *testing.T) {
		conf, err := LoadConfigurationFromReader(strings.NewReader(sampleConfig))
		if err != nil {
			t.Fatalf("LoadConfigurationFromReader() error = %v", err)
		}
		if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
			t.Errorf("expected no warnings, got %v", warnings)
		}
	})

	t.Run("no scenarios", func(t *testing.T) {
		conf := &Configuration{}
		warnings := conf.ValidateConfiguration()
		if len(warnings) != 1 || !strings.Contains(warnings[0], "No scenarios") {
			t.Errorf("warnings = %v", warnings)
		}
	})

	t.Run("problems are reported", func(t *testing.T) {
		yield := 140.0
		lo, hi := 10.0, 5.0
		conf := &Configuration{
			Common: Common{
				Preset:          "unknown",
				Sensitivity:     &SensitivityConfig{Field: "nope"},
				Breakeven:       BreakevenConfig{Basis: "ebit"},
				LoanTenureYears: -1,
			},
			Scenarios: []Scenario{
				{Name: "A", Active: true, Preset: "default", Assumptions: AssumptionOverrides{YieldPct: &yield},
					Seek: []SeekConfig{{Field: "yieldPct", Min: &lo, Max: &hi}}},
				{Name: "A", Active: false},
				{Name: "B", Active: true},
			},
		}
		warnings := conf.ValidateConfiguration()
		joined := strings.Join(warnings, "\n")
		for _, fragment := range []string{
			"Common preset",
			"sensitivity",
			"breakeven basis",
			"Loan tenure",
			"used more than once",
			"Scenario 'A': Poha Yield (%) 140",
			"Scenario 'A' seek 1",
			"scenario B",
		} {
			if !strings.Contains(joined, fragment) {
				t.Errorf("warnings missing %q:\n%s", fragment, joined)
			}
		}
	})
}
