package loans

import (
	"fmt"
	"math"
	"testing"

	"go.uber.org/zap"
)

// referenceInstalment is one row of a published term-loan schedule.
type referenceInstalment struct {
	Month     int
	EMI       float64
	Principal float64
	Interest  float64
	Balance   float64
}

// referenceSchedule is the closed-form schedule of a ₹49,00,000 term loan at
// 9% over 84 months, the debt share of the default plant.
func referenceSchedule() []referenceInstalment {
	return []referenceInstalment{
		{1, 78836.48, 42086.48, 36750.00, 4857913.52},
		{2, 78836.48, 42402.13, 36434.35, 4815511.38},
		{3, 78836.48, 42720.15, 36116.34, 4772791.24},
		{6, 78836.48, 43688.58, 35147.91, 4642698.76},
		{12, 78836.48, 45691.80, 33144.69, 4373599.67},
		{24, 78836.48, 49978.00, 28858.48, 3797819.37},
		{36, 78836.48, 54666.28, 24170.20, 3168026.89},
		{48, 78836.48, 59794.36, 19042.12, 2479155.54},
		{60, 78836.48, 65403.48, 13433.00, 1725663.31},
		{72, 78836.48, 71538.78, 7297.70, 901488.30},
		{83, 78836.48, 77667.11, 1169.38, 78249.61},
		{84, 78836.48, 78249.61, 586.87, 0.00},
	}
}

func referenceLoan() LoanConfig {
	return LoanConfig{
		Name:         "Plant Term Loan",
		Principal:    4900000,
		InterestRate: 9,
		Term:         84,
	}
}

func TestScheduleAgainstReference(t *testing.T) {
	schedule, err := NewAmortizationScheduleGenerator(zap.NewNop()).GenerateSchedule(referenceLoan())
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}
	if len(schedule) != 84 {
		t.Fatalf("expected 84 instalments, got %d", len(schedule))
	}

	const tolerance = 0.01
	for _, ref := range referenceSchedule() {
		payment := schedule[ref.Month-1]
		t.Run(fmt.Sprintf("Month_%d", ref.Month), func(t *testing.T) {
			if payment.Month != ref.Month {
				t.Errorf("month = %d, expected %d", payment.Month, ref.Month)
			}
			checks := []struct {
				name          string
				got, expected float64
			}{
				{"EMI", payment.Payment, ref.EMI},
				{"principal", payment.Principal, ref.Principal},
				{"interest", payment.Interest, ref.Interest},
				{"balance", payment.RemainingPrincipal, ref.Balance},
			}
			for _, c := range checks {
				if math.Abs(c.got-c.expected) > tolerance {
					t.Errorf("%s = %.2f, expected %.2f", c.name, c.got, c.expected)
				}
			}
			if math.Abs(payment.Principal+payment.Interest-payment.Payment) > 1e-6 {
				t.Errorf("principal %.2f + interest %.2f != EMI %.2f", payment.Principal, payment.Interest, payment.Payment)
			}
		})
	}
}

func TestFirstYearAgainstReference(t *testing.T) {
	ds, err := NewAmortizationScheduleGenerator(nil).FirstYear(referenceLoan())
	if err != nil {
		t.Fatalf("FirstYear() error = %v", err)
	}

	checks := []struct {
		name          string
		got, expected float64
	}{
		{"monthly instalment", ds.MonthlyInstalment, 78836.48},
		{"annual debt service", ds.AnnualDebtService, 946037.80},
		{"first-year interest", ds.FirstYearInterest, 419637.48},
		{"first-year principal", ds.FirstYearPrincipal, 526400.33},
		{"closing balance", ds.ClosingBalance, 4373599.67},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.expected) > 0.02 {
			t.Errorf("%s = %.2f, expected %.2f", c.name, c.got, c.expected)
		}
	}
	if ds.TenureYears != 7 {
		t.Errorf("tenure = %v years, expected 7", ds.TenureYears)
	}
}

func TestReferenceScheduleIntegrity(t *testing.T) {
	ref := referenceSchedule()
	for i, row := range ref {
		if math.Abs(row.Principal+row.Interest-row.EMI) > 0.015 {
			t.Errorf("month %d: principal %.2f + interest %.2f != EMI %.2f", row.Month, row.Principal, row.Interest, row.EMI)
		}
		if i > 0 && row.Balance >= ref[i-1].Balance {
			t.Errorf("month %d balance %.2f does not fall below month %d balance %.2f",
				row.Month, row.Balance, ref[i-1].Month, ref[i-1].Balance)
		}
	}
}
