// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iwvelando/poha-forecast/internal/forecast"
	"github.com/iwvelando/poha-forecast/pkg/constants"
	"github.com/iwvelando/poha-forecast/pkg/financials"
	"github.com/iwvelando/poha-forecast/pkg/format"
	"github.com/iwvelando/poha-forecast/pkg/report"
)

// Write renders results in the named format.
func Write(w io.Writer, outputFormat string, results []forecast.Forecast) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		PrettyFormat(w, results)
		return nil
	case constants.OutputFormatCSV:
		return CsvFormat(w, results)
	case constants.OutputFormatJSON:
		return JSONFormat(w, results)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, results []forecast.Forecast) {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		_, _ = p.Fprintf(w, "--- Results for scenario %s (preset %s) ---\n", result.Name, result.Preset)
		if !result.OK() {
			_, _ = p.Fprintf(w, "Error: %s\n", result.Error)
			writeLines(p, w, "Warning", result.Warnings)
			if i < len(results)-1 {
				_, _ = p.Fprintf(w, "\n")
			}
			continue
		}
		r := *result.Results

		_, _ = p.Fprintf(w, "\nKey figures\n")
		for _, kpi := range report.KPIs(r) {
			_, _ = p.Fprintf(w, "%-20s | %s\n", kpi.Label, kpiValue(kpi))
		}

		_, _ = p.Fprintf(w, "\nProduction & financial summary\n")
		_, _ = p.Fprintf(w, "%-20s | %-18s | %-20s | %s\n", "Metric", "Daily", "Monthly", "Annual")
		for _, row := range report.Summary(r) {
			_, _ = p.Fprintf(w, "%-20s | %-18s | %-20s | %s\n", row.Metric,
				summaryValue(row.Unit, row.Daily), summaryValue(row.Unit, row.Monthly), summaryValue(row.Unit, row.Annual))
		}

		writeStatement(p, w, report.ProfitAndLoss(r))
		writeStatement(p, w, report.BalanceSheet(r))

		if b := result.Breakeven; b != nil {
			_, _ = p.Fprintf(w, "\nBreakeven (%s)\n", b.Basis.Label())
			_, _ = p.Fprintf(w, "Contribution per kg paddy | %s\n", format.Currency(b.ContributionPerKg))
			_, _ = p.Fprintf(w, "Fixed cost base           | %s\n", format.Currency(b.FixedCostBase))
			_, _ = p.Fprintf(w, "Breakeven volume          | %s\n", format.FigureKg(b.Volume))
			_, _ = p.Fprintf(w, "Breakeven revenue         | %s\n", format.Currency(b.Revenue))
			_, _ = p.Fprintf(w, "Capacity utilisation      | %s\n", format.FigurePercent(b.Utilization))
		}

		if s := result.Sensitivity; s != nil {
			_, _ = p.Fprintf(w, "\n")
			writeSweep(p, w, *s)
		}

		if ds := result.DebtService; ds != nil {
			_, _ = p.Fprintf(w, "\nDebt service (%s years at %.2f%%)\n", strconv.FormatFloat(ds.TenureYears, 'f', -1, 64), ds.InterestRatePct)
			_, _ = p.Fprintf(w, "Monthly instalment   | %s\n", format.Currency(ds.MonthlyInstalment))
			_, _ = p.Fprintf(w, "Annual debt service  | %s\n", format.Currency(ds.AnnualDebtService))
			_, _ = p.Fprintf(w, "First-year interest  | %s\n", format.Currency(ds.FirstYearInterest))
			_, _ = p.Fprintf(w, "First-year principal | %s\n", format.Currency(ds.FirstYearPrincipal))
			_, _ = p.Fprintf(w, "DSCR                 | %s\n", dscr(ds.DSCR))
		}

		for _, summary := range result.Metrics.Optimizations {
			status := "converged"
			if !summary.Converged {
				status = "not converged"
			}
			_, _ = p.Fprintf(w, "\nSeek %s for %s %s: %s -> %s (%s after %d iterations)\n",
				summary.Label, summary.Target, format.Currency(summary.TargetValue),
				summary.OriginalDisplay, summary.ValueDisplay, status, summary.Iterations)
			writeLines(p, w, "Note", summary.Notes)
		}

		if len(result.Notes) > 0 || len(result.Warnings) > 0 {
			_, _ = p.Fprintf(w, "\n")
		}
		writeLines(p, w, "Note", result.Notes)
		writeLines(p, w, "Warning", result.Warnings)

		if i < len(results)-1 {
			_, _ = p.Fprintf(w, "\n")
		}
	}
}

func writeSweep(p *message.Printer, w io.Writer, s financials.Sweep) {
	_, _ = p.Fprintf(w, "Sensitivity of net profit to %s (base %.2f)\n", s.Label, s.BaseValue)
	_, _ = p.Fprintf(w, "Change | Value        | Net Profit\n")
	for _, point := range s.Points {
		_, _ = p.Fprintf(w, "%+5.1f%% | %12.2f | %s\n", point.ChangePct, point.Value, sweepOutcome(point))
	}
}

func sweepOutcome(point financials.SweepPoint) string {
	if point.Error != "" {
		return point.Error
	}
	return format.Currency(point.NetProfit)
}

func writeStatement(p *message.Printer, w io.Writer, s report.Statement) {
	_, _ = p.Fprintf(w, "\n%s\n", s.Title)
	for _, line := range s.Lines {
		_, _ = p.Fprintf(w, "%-30s | %s\n", line.Metric, lineAmount(line))
	}
}

func writeLines(p *message.Printer, w io.Writer, prefix string, lines []string) {
	for _, line := range lines {
		_, _ = p.Fprintf(w, "%s: %s\n", prefix, line)
	}
}

func kpiValue(k report.KPI) string {
	var parts []string
	if k.Amount != nil {
		parts = append(parts, format.CurrencyDecimal(*k.Amount))
	}
	if k.Percent != nil {
		parts = append(parts, format.FigurePercent(*k.Percent))
	}
	return strings.Join(parts, " | ")
}

func summaryValue(unit report.Unit, v decimal.Decimal) string {
	if unit == report.UnitKg {
		return format.Kg(v.InexactFloat64())
	}
	return format.CurrencyDecimal(v)
}

func lineAmount(l report.Line) string {
	if l.Deduction {
		return format.Deduction(l.Amount)
	}
	return format.CurrencyDecimal(l.Amount)
}

func dscr(f financials.Figure) string {
	if v, ok := f.Value(); ok {
		return fmt.Sprintf("%.2fx", v)
	}
	return format.Unbounded
}

// SensitivityFormat outputs only the sensitivity sweep of each scenario in
// the named format. Scenarios without a sweep are reported in pretty output
// and skipped otherwise.
func SensitivityFormat(w io.Writer, outputFormat string, results []forecast.Forecast) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		p := message.NewPrinter(language.English)
		for i, result := range results {
			if i > 0 {
				_, _ = p.Fprintf(w, "\n")
			}
			_, _ = p.Fprintf(w, "--- Sensitivity for scenario %s ---\n", result.Name)
			switch {
			case result.Sensitivity != nil:
				writeSweep(p, w, *result.Sensitivity)
			case result.Error != "":
				_, _ = p.Fprintf(w, "Error: %s\n", result.Error)
			default:
				_, _ = p.Fprintf(w, "No sensitivity sweep configured\n")
			}
		}
		return nil
	case constants.OutputFormatCSV:
		records := [][]string{{"Scenario", "Field", "Change %", "Value", "Net Profit"}}
		for _, result := range results {
			if result.Sensitivity == nil {
				continue
			}
			s := result.Sensitivity
			for _, point := range s.Points {
				records = append(records, []string{
					result.Name,
					string(s.Field),
					fmt.Sprintf("%.1f", point.ChangePct),
					fmt.Sprintf("%.2f", point.Value),
					sweepOutcome(point),
				})
			}
		}
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(records); err != nil {
			return fmt.Errorf("writing sensitivity CSV: %w", err)
		}
		return nil
	case constants.OutputFormatJSON:
		type scenarioSweep struct {
			Scenario string           `json:"scenario"`
			Sweep    financials.Sweep `json:"sweep"`
		}
		sweeps := make([]scenarioSweep, 0, len(results))
		for _, result := range results {
			if result.Sensitivity != nil {
				sweeps = append(sweeps, scenarioSweep{Scenario: result.Name, Sweep: *result.Sensitivity})
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sweeps); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// PnLRecords returns the CSV rows of a profit and loss export: a
// Metric,Amount header and one row per line, deductions parenthesised.
func PnLRecords(s report.Statement) [][]string {
	records := [][]string{{"Metric", "Amount"}}
	for _, line := range s.Lines {
		records = append(records, []string{line.Metric, lineAmount(line)})
	}
	return records
}

// PnLCSV writes the profit and loss export of one statement.
func PnLCSV(w io.Writer, s report.Statement) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(PnLRecords(s)); err != nil {
		return fmt.Errorf("writing P&L CSV: %w", err)
	}
	return nil
}

// CsvFormat outputs the profit and loss statement of every scenario in
// comma-separated value format. A single scenario uses the plain
// Metric,Amount layout; several scenarios get one Amount column each.
// Scenarios that failed to evaluate leave their column empty.
func CsvFormat(w io.Writer, results []forecast.Forecast) error {
	var template report.Statement
	for _, result := range results {
		if result.OK() {
			template = report.ProfitAndLoss(*result.Results)
			break
		}
	}
	if len(template.Lines) == 0 {
		return fmt.Errorf("no scenario produced results to export")
	}

	if len(results) == 1 {
		return PnLCSV(w, template)
	}

	header := []string{"Metric"}
	columns := make([][]report.Line, len(results))
	for i, result := range results {
		header = append(header, fmt.Sprintf("Amount (%s)", result.Name))
		if result.OK() {
			columns[i] = report.ProfitAndLoss(*result.Results).Lines
		}
	}

	records := [][]string{header}
	for row, line := range template.Lines {
		record := []string{line.Metric}
		for _, column := range columns {
			if column == nil {
				record = append(record, "")
				continue
			}
			record = append(record, lineAmount(column[row]))
		}
		records = append(records, record)
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}

// CsvString renders CsvFormat into a string.
func CsvString(results []forecast.Forecast) (string, error) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, results); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// JSONFormat outputs the full forecast records as indented JSON.
func JSONFormat(w io.Writer, results []forecast.Forecast) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
