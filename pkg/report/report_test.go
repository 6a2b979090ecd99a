package report

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iwvelando/poha-forecast/pkg/financials"
)

func defaultResults(t *testing.T) financials.Results {
	t.Helper()
	r, err := financials.Evaluate(financials.DefaultAssumptions())
	if err != nil {
		t.Fatalf("Evaluate() unexpected error: %v", err)
	}
	return r
}

func assertAmount(t *testing.T, name string, got decimal.Decimal, expected string) {
	t.Helper()
	want := decimal.RequireFromString(expected)
	if !got.Equal(want) {
		t.Errorf("%s = %s, expected %s", name, got.StringFixed(2), want.StringFixed(2))
	}
}

func TestAmount(t *testing.T) {
	assertAmount(t, "rounds up", Amount(3908197.616438356), "3908197.62")
	assertAmount(t, "rounds down", Amount(867945.2054794522), "867945.21")
	assertAmount(t, "negative", Amount(-12967028.6283), "-12967028.63")
}

func TestKPIs(t *testing.T) {
	kpis := KPIs(defaultResults(t))

	expected := []string{"Revenue", "COGS", "Gross Margin", "Contribution Margin", "Net Profit", "EBITDA", "ROCE", "ROE"}
	if len(kpis) != len(expected) {
		t.Fatalf("expected %d KPIs, got %d", len(expected), len(kpis))
	}
	for i, label := range expected {
		if kpis[i].Label != label {
			t.Errorf("KPI %d label = %q, expected %q", i, kpis[i].Label, label)
		}
	}

	assertAmount(t, "revenue", *kpis[0].Amount, "90691200")
	if kpis[0].Percent != nil {
		t.Error("revenue should not carry a percentage")
	}
	if kpis[2].Amount == nil || kpis[2].Percent == nil {
		t.Fatal("gross margin should carry both amount and percentage")
	}
	assertAmount(t, "gross profit", *kpis[2].Amount, "27331200")
	if kpis[6].Amount != nil || kpis[6].Percent == nil {
		t.Error("ROCE should carry only a percentage")
	}
	if v, _ := kpis[6].Percent.Value(); v < 24.05 || v > 24.06 {
		t.Errorf("ROCE = %v, expected about 24.05", v)
	}
}

func TestKPIsUnboundedROE(t *testing.T) {
	a := financials.DefaultAssumptions()
	a.EquityPct = 0
	r, err := financials.Evaluate(a)
	if err != nil {
		t.Fatalf("Evaluate() unexpected error: %v", err)
	}
	kpis := KPIs(r)
	if !kpis[7].Percent.IsUnbounded() {
		t.Errorf("ROE = %v, expected unbounded", kpis[7].Percent)
	}
}

func TestSummary(t *testing.T) {
	rows := Summary(defaultResults(t))
	if len(rows) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(rows))
	}

	tests := []struct {
		index   int
		metric  string
		unit    Unit
		daily   string
		monthly string
		annual  string
	}{
		{0, "Paddy Consumption", UnitKg, "10000", "240000", "2880000"},
		{1, "Poha Production", UnitKg, "6500", "156000", "1872000"},
		{2, "Byproduct Generated", UnitKg, "3500", "84000", "1008000"},
		{3, "Byproduct Sold", UnitKg, "3200", "76800", "921600"},
		{4, "Total Revenue", UnitCurrency, "314900", "7557600", "90691200"},
		{5, "COGS", UnitCurrency, "173589.04", "5280000", "63360000"},
		{6, "Gross Profit", UnitCurrency, "74880", "2277600", "27331200"},
	}

	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			row := rows[tt.index]
			if row.Metric != tt.metric || row.Unit != tt.unit {
				t.Fatalf("row %d = %q (%s), expected %q (%s)", tt.index, row.Metric, row.Unit, tt.metric, tt.unit)
			}
			assertAmount(t, "daily", row.Daily, tt.daily)
			assertAmount(t, "monthly", row.Monthly, tt.monthly)
			assertAmount(t, "annual", row.Annual, tt.annual)
		})
	}
}

func TestProfitAndLoss(t *testing.T) {
	statement := ProfitAndLoss(defaultResults(t))
	if len(statement.Lines) != 16 {
		t.Fatalf("expected 16 lines, got %d", len(statement.Lines))
	}

	// Every subtotal equals the previous subtotal plus the signed lines in between.
	running := decimal.Zero
	tolerance := decimal.RequireFromString("0.03")
	for _, line := range statement.Lines {
		if line.Total {
			if line.Amount.Sub(running).Abs().GreaterThan(tolerance) {
				t.Errorf("%s = %s, lines above add up to %s", line.Metric, line.Amount, running)
			}
			running = line.Amount
			continue
		}
		running = running.Add(line.Signed())
	}

	last := statement.Lines[len(statement.Lines)-1]
	if last.Metric != "Net Profit (PAT)" {
		t.Errorf("last line = %q, expected net profit", last.Metric)
	}
	assertAmount(t, "net profit", last.Amount, "3908197.62")

	cogs := statement.Lines[3]
	if !cogs.Deduction || !cogs.Amount.IsPositive() {
		t.Errorf("COGS line should be a positive deduction, got %+v", cogs)
	}
	assertAmount(t, "signed cogs", cogs.Signed(), "-63360000")
}

func TestProfitAndLossNegativeCost(t *testing.T) {
	a := financials.DefaultAssumptions()
	a.PackagingCostPerKg = -1
	r, err := financials.Evaluate(a)
	if err != nil {
		t.Fatalf("Evaluate() unexpected error: %v", err)
	}

	statement := ProfitAndLoss(r)
	variable := statement.Lines[5]
	if variable.Deduction {
		t.Errorf("a negative variable cost should not be a deduction, got %+v", variable)
	}
	assertAmount(t, "variable cost line", variable.Amount, "2880000")
	assertAmount(t, "signed variable cost", variable.Signed(), "2880000")

	gross := statement.Lines[4].Amount
	contribution := statement.Lines[6].Amount
	assertAmount(t, "contribution margin", contribution, gross.Add(variable.Signed()).String())
	assertAmount(t, "contribution margin", contribution, "30211200")
}

func TestBalanceSheet(t *testing.T) {
	statement := BalanceSheet(defaultResults(t))

	amounts := map[string]string{
		"Machinery":                "7000000",
		"Total Fixed Assets":       "7000000",
		"Raw Material Inventory":   "12498410.96",
		"Finished Goods Inventory": "3550684.93",
		"Receivables":              "11181106.85",
		"Payables":                 "867945.21",
		"Net Working Capital":      "26362257.53",
		"Capital Employed":         "33362257.53",
		"Equity":                   "2100000",
		"Term Debt":                "4900000",
	}
	found := 0
	for _, line := range statement.Lines {
		expected, ok := amounts[line.Metric]
		if !ok {
			continue
		}
		found++
		assertAmount(t, line.Metric, line.Amount, expected)
	}
	if found != len(amounts) {
		t.Errorf("found %d of %d expected lines", found, len(amounts))
	}
}
