package forecast_test

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/iwvelando/poha-forecast/internal/config"
	"github.com/iwvelando/poha-forecast/internal/forecast"
	"github.com/iwvelando/poha-forecast/internal/optimizer"
	"github.com/iwvelando/poha-forecast/pkg/constants"
	"github.com/iwvelando/poha-forecast/pkg/output"
	"github.com/iwvelando/poha-forecast/pkg/testutil"
)

func loadExampleConfig(t *testing.T) *config.Configuration {
	t.Helper()
	conf, err := config.LoadConfiguration(filepath.Join("..", "..", constants.ExampleConfigFile))
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}
	return conf
}

func TestExampleConfigEndToEnd(t *testing.T) {
	logger := zap.NewNop()
	conf := loadExampleConfig(t)

	if warnings := conf.ValidateConfiguration(); len(warnings) > 0 {
		t.Fatalf("example configuration should validate cleanly, got %v", warnings)
	}

	runner, err := optimizer.NewRunner(logger, conf)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	seekResult, err := runner.Run()
	if err != nil {
		t.Fatalf("optimizer Run failed: %v", err)
	}

	results, err := forecast.GetForecast(logger, *conf)
	if err != nil {
		t.Fatalf("GetForecast failed: %v", err)
	}
	seekResult.Apply(results)

	if len(results) != 4 {
		t.Fatalf("expected 4 active scenarios, got %d", len(results))
	}
	for _, result := range results {
		if !result.OK() {
			t.Fatalf("scenario %s failed: %s", result.Name, result.Error)
		}
		if result.Sensitivity == nil || len(result.Sensitivity.Points) != constants.SweepPoints {
			t.Errorf("scenario %s should carry an %d point sweep", result.Name, constants.SweepPoints)
		}
		if result.DebtService == nil {
			t.Errorf("scenario %s should carry debt service figures", result.Name)
		}
		if result.Breakeven == nil {
			t.Errorf("scenario %s should carry a breakeven", result.Name)
		}
	}

	base := testutil.MustFindScenario(t, results, "Base Case")
	testutil.AssertClose(t, "base net profit", base.Results.Profit.NetProfit, 3908197.616438356, 0.01)

	double := testutil.MustFindScenario(t, results, "Double Shift")
	if double.Assumptions.HoursPerDay != 16 {
		t.Errorf("double shift hours = %d, expected 16", double.Assumptions.HoursPerDay)
	}
	if double.Results.Production.AnnualPaddy <= base.Results.Production.AnnualPaddy {
		t.Errorf("double shift should process more paddy than the base case")
	}

	lean := testutil.MustFindScenario(t, results, "Lean Year")
	if lean.Preset != "conservative" {
		t.Errorf("lean year preset = %q, expected conservative", lean.Preset)
	}

	floor := testutil.MustFindScenario(t, results, "Price Floor")
	if len(floor.Metrics.Optimizations) != 1 || !floor.Metrics.Optimizations[0].Converged {
		t.Fatalf("expected one converged seek on the price floor, got %+v", floor.Metrics.Optimizations)
	}
	testutil.AssertClose(t, "price floor", floor.Assumptions.ProductPricePerKg, 42.18515, 0.001)
	if math.Abs(floor.Results.Profit.NetProfit) > 0.02 {
		t.Errorf("price floor net profit = %.4f, expected about zero", floor.Results.Profit.NetProfit)
	}

	for _, format := range []string{constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON} {
		var buf bytes.Buffer
		if err := output.Write(&buf, format, results); err != nil {
			t.Errorf("Write(%s) failed: %v", format, err)
		}
		if !strings.Contains(buf.String(), "Price Floor") {
			t.Errorf("%s output should name every scenario", format)
		}
	}
}

func TestManyScenarios(t *testing.T) {
	conf := config.Configuration{
		Common: config.Common{
			Sensitivity:     &config.SensitivityConfig{Field: "paddyCostPerKg", Workers: 8},
			LoanTenureYears: 5,
		},
	}
	for i := 0; i < 200; i++ {
		price := 35 + float64(i)*0.1
		conf.Scenarios = append(conf.Scenarios, config.Scenario{
			Name:        fmt.Sprintf("Price %.1f", price),
			Active:      true,
			Assumptions: config.AssumptionOverrides{ProductPricePerKg: testutil.FloatPtr(price)},
		})
	}

	start := time.Now()
	results, err := forecast.GetForecast(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("GetForecast failed: %v", err)
	}
	elapsed := time.Since(start)
	t.Logf("evaluated %d scenarios in %v", len(results), elapsed)

	if len(results) != 200 {
		t.Fatalf("expected 200 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Results.Profit.NetProfit <= results[i-1].Results.Profit.NetProfit {
			t.Fatalf("net profit should rise with price: %s <= %s", results[i].Name, results[i-1].Name)
		}
		if results[i].RunID != results[0].RunID {
			t.Fatalf("scenarios of one run should share a run ID")
		}
	}
	if elapsed > 10*time.Second {
		t.Errorf("evaluating 200 scenarios took %v", elapsed)
	}
}

func BenchmarkGetForecast(b *testing.B) {
	conf := config.Configuration{
		Common: config.Common{
			Sensitivity:     &config.SensitivityConfig{Field: "productPricePerKg"},
			LoanTenureYears: 7,
		},
		Scenarios: []config.Scenario{{Name: "Base", Active: true}},
	}
	logger := zap.NewNop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := forecast.GetForecast(logger, conf); err != nil {
			b.Fatal(err)
		}
	}
}
