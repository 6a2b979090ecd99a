// Package loans provides term-loan amortization and debt-service figures.
package loans

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/iwvelando/poha-forecast/pkg/constants"
	"github.com/iwvelando/poha-forecast/pkg/mathutil"
)

// Payment holds the values for a given monthly instalment.
type Payment struct {
	Month              int     `json:"month"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
func CalculateMonthlyPayment(principal, downPayment, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	if annualInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return (principal - downPayment) / float64(termMonths)
	}

	periodicInterestRate := annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
	power := math.Pow((1.00 + periodicInterestRate), float64(termMonths))
	discountFactor := (power - 1.00) / power
	return (principal - downPayment) * periodicInterestRate / discountFactor
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// LoanConfig represents term-loan parameters.
type LoanConfig struct {
	Name         string
	Principal    float64
	InterestRate float64 // annual, percent
	Term         int     // months
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule creates a complete amortization schedule for a loan, one
// entry per month starting at month 1.
func (g *AmortizationScheduleGenerator) GenerateSchedule(loan LoanConfig) ([]Payment, error) {
	if loan.Term <= 0 {
		return nil, fmt.Errorf("loan %s: term must be positive, got %d months", loan.Name, loan.Term)
	}
	if loan.Principal < 0 {
		return nil, fmt.Errorf("loan %s: principal must not be negative, got %.2f", loan.Name, loan.Principal)
	}

	monthlyPayment := CalculateMonthlyPayment(loan.Principal, 0, loan.InterestRate, loan.Term)
	schedule := make([]Payment, 0, loan.Term)
	remaining := loan.Principal

	for month := 1; month <= loan.Term; month++ {
		current := Payment{Month: month, Payment: monthlyPayment}
		current.Interest = CalculateInterestPayment(remaining, loan.InterestRate)
		current.Principal = monthlyPayment - current.Interest

		if month == loan.Term || mathutil.Round(remaining-current.Principal) == 0 {
			// We will get machine error otherwise so just set to 0.
			current.RemainingPrincipal = 0.00
			schedule = append(schedule, current)
			if month < loan.Term {
				g.logger.Debug(fmt.Sprintf("loan %s repaid early at month %d", loan.Name, month),
					zap.String("op", "loans.GenerateSchedule"),
				)
			}
			break
		}
		current.RemainingPrincipal = remaining - current.Principal
		remaining = current.RemainingPrincipal
		schedule = append(schedule, current)
	}

	g.logger.Debug(fmt.Sprintf("generated %d month schedule for loan %s", len(schedule), loan.Name),
		zap.String("op", "loans.GenerateSchedule"),
		zap.Float64("monthly_payment", monthlyPayment),
	)
	return schedule, nil
}

// DebtService summarises the first year of a term loan.
type DebtService struct {
	Principal          float64 `json:"principal"`
	InterestRatePct    float64 `json:"interestRatePct"`
	TenureYears        float64 `json:"tenureYears"`
	MonthlyInstalment  float64 `json:"monthlyInstalment"`
	AnnualDebtService  float64 `json:"annualDebtService"`
	FirstYearInterest  float64 `json:"firstYearInterest"`
	FirstYearPrincipal float64 `json:"firstYearPrincipal"`
	ClosingBalance     float64 `json:"closingBalance"`
}

// FirstYear amortizes the loan and totals the first twelve instalments (or
// all of them when the tenure is shorter).
func (g *AmortizationScheduleGenerator) FirstYear(loan LoanConfig) (DebtService, error) {
	schedule, err := g.GenerateSchedule(loan)
	if err != nil {
		return DebtService{}, err
	}

	ds := DebtService{
		Principal:       loan.Principal,
		InterestRatePct: loan.InterestRate,
		TenureYears:     float64(loan.Term) / constants.MonthsPerYear,
		ClosingBalance:  loan.Principal,
	}
	if len(schedule) > 0 {
		ds.MonthlyInstalment = schedule[0].Payment
	}
	for _, p := range schedule {
		if p.Month > constants.MonthsPerYear {
			break
		}
		ds.AnnualDebtService += p.Payment
		ds.FirstYearInterest += p.Interest
		ds.FirstYearPrincipal += p.Principal
		ds.ClosingBalance = p.RemainingPrincipal
	}
	return ds, nil
}
