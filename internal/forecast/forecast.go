// Package forecast defines the data structures related to a given forecast and
// includes functions for computing the forecasts.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iwvelando/poha-forecast/internal/config"
	"github.com/iwvelando/poha-forecast/pkg/constants"
	"github.com/iwvelando/poha-forecast/pkg/financials"
	"github.com/iwvelando/poha-forecast/pkg/format"
	"github.com/iwvelando/poha-forecast/pkg/loans"
	"github.com/iwvelando/poha-forecast/pkg/optimization"
	"github.com/iwvelando/poha-forecast/pkg/validation"
)

// Forecast holds all information related to a specific scenario evaluation.
// Results and the analyses built on it are nil when the scenario's
// assumptions cannot be evaluated; Error then says why.
type Forecast struct {
	Name        string                 `json:"name"`
	RunID       string                 `json:"runId"`
	Preset      string                 `json:"preset"`
	Assumptions financials.Assumptions `json:"assumptions"`
	Results     *financials.Results    `json:"results,omitempty"`
	Breakeven   *financials.Breakeven  `json:"breakeven,omitempty"`
	Sensitivity *financials.Sweep      `json:"sensitivity,omitempty"`
	DebtService *DebtService           `json:"debtService,omitempty"`
	Warnings    []string               `json:"warnings,omitempty"`
	Notes       []string               `json:"notes,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Metrics     Metrics                `json:"metrics"`
}

// Metrics holds figures attached after the forecast ran.
type Metrics struct {
	Optimizations []optimization.Summary `json:"optimizations,omitempty"`
}

// DebtService is the first-year term-loan position with its coverage ratio.
type DebtService struct {
	loans.DebtService
	// DSCR is cash available for debt service over the year's instalments.
	DSCR financials.Figure `json:"dscr"`
}

// OK reports whether the scenario evaluated.
func (f Forecast) OK() bool {
	return f.Results != nil
}

// GetForecast evaluates every active scenario.
func GetForecast(logger *zap.Logger, conf config.Configuration) ([]Forecast, error) {
	return GetForecastContext(context.Background(), logger, conf)
}

// GetForecastContext is GetForecast with a context bounding the sensitivity sweeps.
func GetForecastContext(ctx context.Context, logger *zap.Logger, conf config.Configuration) ([]Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	basis, err := conf.BreakevenBasis()
	if err != nil {
		return nil, err
	}
	if conf.Common.Sensitivity != nil {
		if err := conf.Common.Sensitivity.Validate(); err != nil {
			return nil, err
		}
	}

	runID := uuid.NewString()
	var results []Forecast
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "forecast.GetForecast"),
			)
			continue
		}

		result, err := evaluateScenario(ctx, logger, &conf, scenario, basis)
		if err != nil {
			return results, err
		}
		result.RunID = runID
		results = append(results, result)
	}

	logger.Debug(fmt.Sprintf("evaluated %d scenarios", len(results)),
		zap.String("op", "forecast.GetForecast"),
		zap.String("run_id", runID),
	)
	return results, nil
}

func evaluateScenario(ctx context.Context, logger *zap.Logger, conf *config.Configuration, scenario config.Scenario, basis financials.BreakevenBasis) (Forecast, error) {
	result := Forecast{Name: scenario.Name, Preset: conf.PresetName(scenario)}

	assumptions, err := conf.ScenarioAssumptions(scenario)
	if err != nil {
		return result, err
	}
	result.Assumptions = assumptions
	result.Warnings = validation.ValidateAssumptions(assumptions)

	evaluated, err := financials.Evaluate(assumptions)
	if err != nil {
		if !errors.Is(err, financials.ErrInvalidAssumptions) {
			return result, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		logger.Warn(fmt.Sprintf("scenario %s has invalid assumptions", scenario.Name),
			zap.String("op", "forecast.GetForecast"),
			zap.Error(err),
		)
		result.Error = err.Error()
		return result, nil
	}
	result.Results = &evaluated

	if evaluated.ByproductCapacityExceeded {
		p := evaluated.Production
		result.Notes = append(result.Notes, fmt.Sprintf(
			"Byproduct sales target %s/day exceeds generation %s/day; sales capped at generation",
			format.Kg(p.DailyByproductTarget), format.Kg(p.DailyByproductGenerated)))
	}

	breakeven := financials.ComputeBreakeven(evaluated, basis)
	result.Breakeven = &breakeven
	if breakeven.Volume.IsUnbounded() {
		result.Notes = append(result.Notes, fmt.Sprintf(
			"No %s breakeven: contribution per kg of paddy is %s", basis.Label(), format.Currency(breakeven.ContributionPerKg)))
	}

	if sc := conf.Common.Sensitivity; sc != nil {
		field, err := financials.ParseField(sc.Field)
		if err != nil {
			return result, err
		}
		low, high := sc.Range()
		sweep, err := financials.NewSweeper(logger, sc.Workers).Run(ctx, assumptions, field, low, high)
		if err != nil {
			return result, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		result.Sensitivity = &sweep
	}

	if conf.Common.LoanTenureYears > 0 {
		ds, err := debtService(logger, scenario.Name, evaluated, conf.Common.LoanTenureYears)
		if err != nil {
			result.Notes = append(result.Notes, fmt.Sprintf("Debt service skipped: %v", err))
		} else {
			result.DebtService = &ds
		}
	}

	return result, nil
}

// debtService amortizes the debt share of capex over the tenure at the
// model interest rate.
func debtService(logger *zap.Logger, name string, r financials.Results, tenureYears float64) (DebtService, error) {
	loan := loans.LoanConfig{
		Name:         name,
		Principal:    r.Financing.Debt,
		InterestRate: r.Assumptions.InterestRatePct,
		Term:         int(math.Round(tenureYears * constants.MonthsPerYear)),
	}
	first, err := loans.NewAmortizationScheduleGenerator(logger).FirstYear(loan)
	if err != nil {
		return DebtService{}, err
	}

	ds := DebtService{DebtService: first, DSCR: financials.Unbounded()}
	if first.AnnualDebtService > 0 {
		available := r.Profit.NetProfit + r.Costs.AnnualDepreciation + r.Financing.InterestOnDebt
		ds.DSCR = financials.Finite(available / first.AnnualDebtService)
	}
	return ds, nil
}
