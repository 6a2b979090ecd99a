package optimizer

import (
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/iwvelando/poha-forecast/internal/config"
	"github.com/iwvelando/poha-forecast/internal/forecast"
	"github.com/iwvelando/poha-forecast/pkg/financials"
	"github.com/iwvelando/poha-forecast/pkg/optimization"
	"github.com/iwvelando/poha-forecast/pkg/testutil"
)

func runSeek(t *testing.T, seek config.SeekConfig) (*config.Configuration, *Result) {
	t.Helper()
	conf := &config.Configuration{
		Scenarios: []config.Scenario{
			{Name: "Base", Active: true, Seek: []config.SeekConfig{seek}},
		},
	}
	runner, err := NewRunner(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	result, err := runner.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Summaries["Base"]) != 1 {
		t.Fatalf("expected one summary, got %+v", result.Summaries)
	}
	return conf, result
}

func TestNewRunnerRequiresConfiguration(t *testing.T) {
	if _, err := NewRunner(zap.NewNop(), nil); err == nil {
		t.Error("expected an error for a nil configuration")
	}
}

func TestRunnerSeeksNetProfitBreakevenPrice(t *testing.T) {
	conf, result := runSeek(t, config.SeekConfig{
		Field: "product_price_per_kg",
		Min:   testutil.FloatPtr(30),
		Max:   testutil.FloatPtr(60),
	})

	summary := result.Summaries["Base"][0]
	if !summary.Converged {
		t.Fatalf("expected convergence, got %+v", summary)
	}
	if summary.Field != string(financials.FieldProductPricePerKg) || summary.Target != config.SeekTargetNetProfit {
		t.Errorf("summary field/target = %s/%s", summary.Field, summary.Target)
	}
	testutil.AssertClose(t, "value", summary.Value, 42.1852, 0.001)
	if math.Abs(summary.Achieved) > 0.01 || math.Abs(summary.Gap) > 0.01 {
		t.Errorf("achieved = %.4f, gap = %.4f, expected within tolerance of 0", summary.Achieved, summary.Gap)
	}
	if summary.Iterations == 0 || summary.Iterations > 50 {
		t.Errorf("iterations = %d", summary.Iterations)
	}
	if summary.Original != 45 || summary.OriginalDisplay != "₹45.00" {
		t.Errorf("original = %v (%s)", summary.Original, summary.OriginalDisplay)
	}

	applied, ok := conf.Scenarios[0].Assumptions.Get(financials.FieldProductPricePerKg)
	if !ok || applied != summary.Value {
		t.Fatalf("seek result should be written back to the scenario, got %v (%v)", applied, ok)
	}

	forecasts, err := forecast.GetForecast(zap.NewNop(), *conf)
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}
	if np := forecasts[0].Results.Profit.NetProfit; math.Abs(np) > 0.01 {
		t.Errorf("forecast after seek has net profit %.4f, expected about 0", np)
	}

	result.Apply(forecasts)
	if len(forecasts[0].Metrics.Optimizations) != 1 {
		t.Errorf("expected the summary attached to the forecast, got %+v", forecasts[0].Metrics)
	}
}

func TestRunnerSeeksEBITDA(t *testing.T) {
	_, result := runSeek(t, config.SeekConfig{
		Field:  "productPricePerKg",
		Target: "ebitda",
		Min:    testutil.FloatPtr(30),
		Max:    testutil.FloatPtr(60),
	})

	summary := result.Summaries["Base"][0]
	if !summary.Converged || math.Abs(summary.Value-40.4641) > 0.001 {
		t.Errorf("summary = %+v, expected about 40.4641", summary)
	}
}

func TestRunnerWholeValuedField(t *testing.T) {
	_, result := runSeek(t, config.SeekConfig{
		Field:       "hoursPerDay",
		TargetValue: 5000000,
		Min:         testutil.FloatPtr(1),
		Max:         testutil.FloatPtr(24),
	})

	summary := result.Summaries["Base"][0]
	if summary.Value != 11 {
		t.Errorf("value = %v, expected 11 hours", summary.Value)
	}
	if !summary.Converged || summary.Gap < 0 {
		t.Errorf("summary = %+v, expected the target reached", summary)
	}
	if len(summary.Notes) != 1 || !strings.Contains(summary.Notes[0], "whole-valued") {
		t.Errorf("notes = %v", summary.Notes)
	}
	if summary.ValueDisplay != "11" {
		t.Errorf("value display = %q", summary.ValueDisplay)
	}
}

func TestRunnerDecreasingField(t *testing.T) {
	_, result := runSeek(t, config.SeekConfig{
		Field: "paddyCostPerKg",
		Min:   testutil.FloatPtr(10),
		Max:   testutil.FloatPtr(40),
	})

	summary := result.Summaries["Base"][0]
	if !summary.Converged {
		t.Fatalf("expected convergence, got %+v", summary)
	}
	if summary.Value <= 22 || summary.Value >= 40 {
		t.Errorf("breakeven paddy cost %.4f should lie above the default 22", summary.Value)
	}
}

func TestRunnerTargetNotBracketed(t *testing.T) {
	_, result := runSeek(t, config.SeekConfig{
		Field: "productPricePerKg",
		Min:   testutil.FloatPtr(50),
		Max:   testutil.FloatPtr(60),
	})

	summary := result.Summaries["Base"][0]
	if summary.Converged {
		t.Fatal("target outside the bounds should not converge")
	}
	if summary.Value != 50 {
		t.Errorf("value = %v, expected the bound closest to the target", summary.Value)
	}
	expected := "unable to reach net profit of ₹0.00 within bounds ₹50.00 to ₹60.00"
	if len(summary.Notes) != 1 || summary.Notes[0] != expected {
		t.Errorf("notes = %v, expected %q", summary.Notes, expected)
	}
}

func TestRunnerInvalidBound(t *testing.T) {
	_, result := runSeek(t, config.SeekConfig{
		Field: "yieldPct",
		Min:   testutil.FloatPtr(0),
		Max:   testutil.FloatPtr(80),
	})

	summary := result.Summaries["Base"][0]
	if summary.Converged || summary.Value != 65 {
		t.Errorf("summary = %+v, expected the original yield kept", summary)
	}
	if len(summary.Notes) != 1 || !strings.Contains(summary.Notes[0], "invalid at 0.0%") {
		t.Errorf("notes = %v", summary.Notes)
	}
}

func TestRunnerRejectsInvalidDirective(t *testing.T) {
	conf := &config.Configuration{
		Scenarios: []config.Scenario{
			{Name: "Base", Active: true, Seek: []config.SeekConfig{{Field: "yieldPct", Max: testutil.FloatPtr(80)}}},
		},
	}
	runner, err := NewRunner(nil, conf)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	if _, err := runner.Run(); err == nil || !strings.Contains(err.Error(), "scenario Base seek 1") {
		t.Errorf("Run() error = %v, expected a directive error", err)
	}
}

func TestRunnerSkipsInactiveScenarios(t *testing.T) {
	conf := &config.Configuration{
		Scenarios: []config.Scenario{
			{Name: "Parked", Active: false, Seek: []config.SeekConfig{{Field: "yieldPct"}}},
		},
	}
	runner, err := NewRunner(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	result, err := runner.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Empty() {
		t.Errorf("expected no summaries, got %+v", result.Summaries)
	}
}

func TestResultApply(t *testing.T) {
	forecasts := []forecast.Forecast{{Name: "A"}, {Name: "B"}}
	Result{}.Apply(forecasts)
	if len(forecasts[0].Metrics.Optimizations) != 0 {
		t.Fatal("empty result should not attach anything")
	}

	result := Result{Summaries: map[string][]optimization.Summary{"B": {{Field: "yieldPct"}}}}
	result.Apply(forecasts)
	if len(forecasts[0].Metrics.Optimizations) != 0 || len(forecasts[1].Metrics.Optimizations) != 1 {
		t.Errorf("apply attached to the wrong scenario: %+v", forecasts)
	}
}

func TestFormatFieldDisplay(t *testing.T) {
	tests := []struct {
		field    financials.Field
		value    float64
		expected string
	}{
		{financials.FieldHoursPerDay, 10.4, "10"},
		{financials.FieldYieldPct, 65, "65.0%"},
		{financials.FieldPaddyThroughputKgPerHr, 1000, "1,000 kg/hr"},
		{financials.FieldMachineryLifeYears, 15, "15.0 years"},
		{financials.FieldRentPerMonth, 300000, "₹3,00,000.00"},
	}

	for _, tt := range tests {
		if got := formatFieldDisplay(tt.field, tt.value); got != tt.expected {
			t.Errorf("formatFieldDisplay(%s, %v) = %q, expected %q", tt.field, tt.value, got, tt.expected)
		}
	}
}
