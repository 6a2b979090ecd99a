// Package report arranges evaluated results into the tables a dashboard or
// export shows: headline KPIs, the production summary, the profit and loss
// statement and the balance sheet. Amounts are rounded to paise.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/iwvelando/poha-forecast/pkg/constants"
	"github.com/iwvelando/poha-forecast/pkg/financials"
)

// Amount converts a model value to a decimal rounded to two places.
func Amount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// KPI is one headline figure. Either or both of Amount and Percent are set.
type KPI struct {
	Label   string             `json:"label"`
	Amount  *decimal.Decimal   `json:"amount,omitempty"`
	Percent *financials.Figure `json:"percent,omitempty"`
}

func amountKPI(label string, v float64) KPI {
	a := Amount(v)
	return KPI{Label: label, Amount: &a}
}

func percentKPI(label string, f financials.Figure) KPI {
	return KPI{Label: label, Percent: &f}
}

func marginKPI(label string, amount, pct float64) KPI {
	k := amountKPI(label, amount)
	f := financials.Finite(pct)
	k.Percent = &f
	return k
}

// KPIs returns the annual headline figures in display order.
func KPIs(r financials.Results) []KPI {
	return []KPI{
		amountKPI("Revenue", r.Revenue.Annual),
		amountKPI("COGS", r.Costs.AnnualCOGS),
		marginKPI("Gross Margin", r.Profit.GrossProfit, r.Ratios.GrossMarginPct),
		marginKPI("Contribution Margin", r.Profit.ContributionMargin, r.Ratios.ContributionMarginPct),
		marginKPI("Net Profit", r.Profit.NetProfit, r.Ratios.NetProfitMarginPct),
		marginKPI("EBITDA", r.Profit.EBITDA, r.Ratios.EBITDAMarginPct),
		percentKPI("ROCE", r.Ratios.ROCE),
		percentKPI("ROE", r.Ratios.ROE),
	}
}

// Unit tells how a summary row is measured.
type Unit string

const (
	UnitKg       Unit = "kg"
	UnitCurrency Unit = "currency"
)

// SummaryRow is one line of the daily/monthly/annual summary.
type SummaryRow struct {
	Metric  string          `json:"metric"`
	Unit    Unit            `json:"unit"`
	Daily   decimal.Decimal `json:"daily"`
	Monthly decimal.Decimal `json:"monthly"`
	Annual  decimal.Decimal `json:"annual"`
}

// Summary returns the production and financial summary. Volumes and revenue
// are per operating day and month; COGS and gross profit are spread over
// the calendar (annual/365 and annual/12).
func Summary(r financials.Results) []SummaryRow {
	p := r.Production
	calendar := func(metric string, annual float64) SummaryRow {
		return SummaryRow{
			Metric:  metric,
			Unit:    UnitCurrency,
			Daily:   Amount(annual / constants.RunRateDaysPerYear),
			Monthly: Amount(annual / constants.MonthsPerYear),
			Annual:  Amount(annual),
		}
	}
	row := func(metric string, unit Unit, daily, monthly, annual float64) SummaryRow {
		return SummaryRow{Metric: metric, Unit: unit, Daily: Amount(daily), Monthly: Amount(monthly), Annual: Amount(annual)}
	}
	return []SummaryRow{
		row("Paddy Consumption", UnitKg, p.DailyPaddy, p.MonthlyPaddy, p.AnnualPaddy),
		row("Poha Production", UnitKg, p.DailyProduct, p.MonthlyProduct, p.AnnualProduct),
		row("Byproduct Generated", UnitKg, p.DailyByproductGenerated, p.MonthlyByproductGenerated, p.AnnualByproductGenerated),
		row("Byproduct Sold", UnitKg, p.DailyByproductSold, p.MonthlyByproductSold, p.AnnualByproductSold),
		row("Total Revenue", UnitCurrency, r.Revenue.Daily, r.Revenue.Monthly, r.Revenue.Annual),
		calendar("COGS", r.Costs.AnnualCOGS),
		calendar("Gross Profit", r.Profit.GrossProfit),
	}
}

// Line is one row of a statement. Deductions are stored as positive
// amounts and flagged so renderers can parenthesise them. A negative cost
// becomes an unflagged line carrying its positive amount.
type Line struct {
	Metric    string          `json:"metric"`
	Amount    decimal.Decimal `json:"amount"`
	Deduction bool            `json:"deduction,omitempty"`
	Total     bool            `json:"total,omitempty"`
}

// Statement is a titled list of lines.
type Statement struct {
	Title string `json:"title"`
	Lines []Line `json:"lines"`
}

// Signed returns the line amount with deductions negated.
func (l Line) Signed() decimal.Decimal {
	if l.Deduction {
		return l.Amount.Neg()
	}
	return l.Amount
}

func item(metric string, v float64) Line {
	return Line{Metric: metric, Amount: Amount(v)}
}

func less(metric string, v float64) Line {
	amount := Amount(v)
	if amount.IsNegative() {
		return Line{Metric: metric, Amount: amount.Neg()}
	}
	return Line{Metric: metric, Amount: amount, Deduction: true}
}

func total(metric string, v float64) Line {
	return Line{Metric: metric, Amount: Amount(v), Total: true}
}

// ProfitAndLoss returns the annual profit and loss statement.
func ProfitAndLoss(r financials.Results) Statement {
	return Statement{
		Title: "Profit & Loss Statement (Annual)",
		Lines: []Line{
			item("Poha Sales", r.Revenue.AnnualProductSales),
			item("Byproduct Sales", r.Revenue.AnnualByproductSales),
			total("Total Revenue", r.Revenue.Annual),
			less("Cost of Goods Sold (Paddy)", r.Costs.AnnualCOGS),
			total("Gross Profit", r.Profit.GrossProfit),
			less("Variable Operating Costs", r.Costs.AnnualVariableCost),
			total("Contribution Margin", r.Profit.ContributionMargin),
			less("Fixed Operating Costs", r.Costs.AnnualFixedCost),
			total("EBITDA", r.Profit.EBITDA),
			less("Depreciation", r.Costs.AnnualDepreciation),
			total("EBIT", r.Profit.EBIT),
			less("Interest on Term Debt", r.Financing.InterestOnDebt),
			less("Interest on Working Capital", r.Financing.InterestOnWorkingCapital),
			total("Profit Before Tax", r.Profit.EBT),
			less("Tax", r.Profit.Tax),
			total("Net Profit (PAT)", r.Profit.NetProfit),
		},
	}
}

// BalanceSheet returns the capital and working-capital position.
func BalanceSheet(r financials.Results) Statement {
	a := r.Assumptions
	wc := r.WorkingCapital
	f := r.Financing
	return Statement{
		Title: "Balance Sheet & Working Capital",
		Lines: []Line{
			item("Land", a.LandCost),
			item("Civil Work", a.CivilCost),
			item("Machinery", a.MachineryCost),
			total("Total Fixed Assets", f.TotalCapex),
			item("Raw Material Inventory", wc.RawMaterialInventory),
			item("Finished Goods Inventory", wc.FinishedGoodsInventory),
			item("Receivables", wc.Receivables),
			total("Total Current Assets", wc.CurrentAssets),
			total("Total Assets", f.TotalAssets),
			less("Payables", wc.Payables),
			total("Net Working Capital", wc.NetWorkingCapital),
			total("Capital Employed", f.CapitalEmployed),
			item("Equity", f.Equity),
			item("Term Debt", f.Debt),
		},
	}
}
