package financials

import (
	"math"

	"github.com/iwvelando/poha-forecast/pkg/constants"
	"github.com/iwvelando/poha-forecast/pkg/mathutil"
)

// Evaluate computes Results from a set of assumptions. It has no side
// effects: equal inputs always give identical results. When Validate fails,
// the *ValidationError is returned together with zero Results.
//
// Cost basis: variable operating costs (packaging, fuel, other) are charged
// per kg of paddy input, the same driver as COGS. Byproduct revenue is
// charged on the quantity sold, never more than is generated. Interest on
// working capital is charged before tax and only on a positive requirement.
func Evaluate(a Assumptions) (Results, error) {
	if err := a.Validate(); err != nil {
		return Results{}, err
	}

	r := Results{Assumptions: a}
	days := float64(a.DaysPerMonth)
	scale := func(daily float64) (monthly, annual float64) {
		monthly = daily * days
		return monthly, monthly * constants.MonthsPerYear
	}

	// Throughput and yield.
	p := &r.Production
	p.DailyPaddy = a.PaddyThroughputKgPerHr * float64(a.HoursPerDay)
	p.MonthlyPaddy, p.AnnualPaddy = scale(p.DailyPaddy)
	p.DailyProduct = mathutil.ApplyPercentage(p.DailyPaddy, a.YieldPct)
	p.MonthlyProduct, p.AnnualProduct = scale(p.DailyProduct)

	// Byproduct: whatever is not product, sold up to the target share of input.
	p.DailyByproductGenerated = p.DailyPaddy - p.DailyProduct
	p.MonthlyByproductGenerated, p.AnnualByproductGenerated = scale(p.DailyByproductGenerated)
	p.DailyByproductTarget = mathutil.ApplyPercentage(p.DailyPaddy, a.ByproductSalePct)
	p.DailyByproductSold = math.Min(p.DailyByproductTarget, p.DailyByproductGenerated)
	p.MonthlyByproductSold, p.AnnualByproductSold = scale(p.DailyByproductSold)
	r.ByproductCapacityExceeded = p.DailyByproductTarget > p.DailyByproductGenerated

	// Revenue.
	rev := &r.Revenue
	rev.DailyProductSales = p.DailyProduct * a.ProductPricePerKg
	rev.MonthlyProductSales, rev.AnnualProductSales = scale(rev.DailyProductSales)
	rev.DailyByproductSales = p.DailyByproductSold * a.ByproductPricePerKg
	rev.MonthlyByproductSales, rev.AnnualByproductSales = scale(rev.DailyByproductSales)
	rev.Daily = rev.DailyProductSales + rev.DailyByproductSales
	rev.Monthly, rev.Annual = scale(rev.Daily)

	// Costs.
	c := &r.Costs
	c.DailyCOGS = p.DailyPaddy * a.PaddyCostPerKg
	c.MonthlyCOGS, c.AnnualCOGS = scale(c.DailyCOGS)
	c.VariableCostPerKg = a.VariableCostPerKg()
	c.MonthlyVariableCost = p.MonthlyPaddy * c.VariableCostPerKg
	c.AnnualVariableCost = p.AnnualPaddy * c.VariableCostPerKg
	c.MonthlyFixedCost = a.MonthlyFixedCost()
	c.AnnualFixedCost = c.MonthlyFixedCost * constants.MonthsPerYear
	c.AnnualOperatingCost = c.AnnualFixedCost + c.AnnualVariableCost
	// Land is never depreciated.
	c.AnnualDepreciation = (a.MachineryCost + a.CivilCost) / a.MachineryLifeYears

	// Operating profit.
	pr := &r.Profit
	pr.GrossProfit = rev.Annual - c.AnnualCOGS
	pr.ContributionMargin = pr.GrossProfit - c.AnnualVariableCost
	pr.EBITDA = pr.GrossProfit - c.AnnualOperatingCost
	pr.EBIT = pr.EBITDA - c.AnnualDepreciation

	// Working capital.
	wc := &r.WorkingCapital
	wc.DailyCOGSRunRate = c.AnnualCOGS / constants.RunRateDaysPerYear
	wc.DailyVariableCostRunRate = c.AnnualVariableCost / constants.RunRateDaysPerYear
	wc.DailyRevenueRunRate = rev.Annual / constants.RunRateDaysPerYear
	if p.AnnualProduct > 0 {
		wc.UnitCostOfProduction = (c.AnnualCOGS + c.AnnualVariableCost) / p.AnnualProduct
	}
	wc.RawMaterialInventory = wc.DailyCOGSRunRate * float64(a.RMInventoryDays)
	// unit cost x (annual product / 365) x days, written so that a plant with
	// no output holds no finished goods instead of dividing by zero.
	wc.FinishedGoodsInventory = (wc.DailyCOGSRunRate + wc.DailyVariableCostRunRate) * float64(a.FGInventoryDays)
	wc.Receivables = wc.DailyRevenueRunRate * float64(a.DebtorDays)
	wc.Payables = wc.DailyCOGSRunRate * float64(a.CreditorDays)
	wc.CurrentAssets = wc.RawMaterialInventory + wc.FinishedGoodsInventory + wc.Receivables
	wc.CurrentLiabilities = wc.Payables
	wc.NetWorkingCapital = wc.CurrentAssets - wc.CurrentLiabilities

	// Financing, tax and net profit.
	f := &r.Financing
	f.TotalCapex = a.TotalCapex()
	f.Equity = mathutil.ApplyPercentage(f.TotalCapex, a.EquityPct)
	f.Debt = f.TotalCapex - f.Equity
	f.InterestOnDebt = mathutil.ApplyPercentage(f.Debt, a.InterestRatePct)
	f.InterestOnWorkingCapital = mathutil.ApplyPercentage(math.Max(0, wc.NetWorkingCapital), a.InterestRatePct)
	f.TotalInterest = f.InterestOnDebt + f.InterestOnWorkingCapital
	f.TotalAssets = f.TotalCapex + wc.CurrentAssets
	f.CapitalEmployed = f.TotalAssets - wc.CurrentLiabilities

	pr.EBT = pr.EBIT - f.TotalInterest
	// Losses carry no tax credit.
	pr.Tax = mathutil.ApplyPercentage(math.Max(0, pr.EBT), a.TaxRatePct)
	pr.NetProfit = pr.EBT - pr.Tax

	// Ratios.
	rt := &r.Ratios
	rt.GrossMarginPct = mathutil.Percent(pr.GrossProfit, rev.Annual)
	rt.ContributionMarginPct = mathutil.Percent(pr.ContributionMargin, rev.Annual)
	rt.EBITDAMarginPct = mathutil.Percent(pr.EBITDA, rev.Annual)
	rt.OperatingMarginPct = mathutil.Percent(pr.EBIT, rev.Annual)
	rt.NetProfitMarginPct = mathutil.Percent(pr.NetProfit, rev.Annual)
	if f.CapitalEmployed == 0 {
		rt.ROCE = Unbounded()
	} else {
		rt.ROCE = Finite(pr.EBIT / f.CapitalEmployed * constants.PercentageMultiplier)
	}
	if f.Equity <= 0 {
		rt.ROE = Unbounded()
	} else {
		rt.ROE = Finite(pr.NetProfit / f.Equity * constants.PercentageMultiplier)
	}

	return r, nil
}
