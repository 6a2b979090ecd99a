package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iwvelando/poha-forecast/internal/config"
	"github.com/iwvelando/poha-forecast/internal/forecast"
	"github.com/iwvelando/poha-forecast/internal/optimizer"
	"github.com/iwvelando/poha-forecast/pkg/constants"
	"github.com/iwvelando/poha-forecast/pkg/financials"
	"github.com/iwvelando/poha-forecast/pkg/optimization"
	"github.com/iwvelando/poha-forecast/pkg/output"
	"github.com/iwvelando/poha-forecast/pkg/report"
)

const evaluateScenarioName = "evaluate"

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
}

type forecastOptions struct {
	Optimize bool
}

// NewHandler constructs the HTTP handler that serves the forecast API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}

	mux := http.NewServeMux()

	// Single evaluation from a preset plus overrides
	mux.HandleFunc("/api/evaluate", h.handleEvaluate)

	// P&L download for a single evaluation
	mux.HandleFunc("/api/export/pnl", h.handleExportPnL)

	// Forecast API endpoint (file upload)
	mux.HandleFunc("/api/forecast", h.handleForecast)

	// Forecast API endpoint for editor-driven updates
	mux.HandleFunc("/api/editor/forecast", h.handleForecastEditor)

	// Config serialization endpoint for editor downloads
	mux.HandleFunc("/api/editor/export", h.handleConfigExport)

	mux.HandleFunc("/api/presets", h.handlePresets)
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

// evaluateRequest selects a preset and overrides any subset of its fields.
type evaluateRequest struct {
	Preset          string                     `json:"preset"`
	Assumptions     config.AssumptionOverrides `json:"assumptions"`
	Basis           string                     `json:"basis"`
	LoanTenureYears float64                    `json:"loanTenureYears"`
	CurvePoints     int                        `json:"curvePoints"`
}

type evaluateResponse struct {
	RunID         string                  `json:"runId"`
	Preset        string                  `json:"preset"`
	Assumptions   financials.Assumptions  `json:"assumptions"`
	Results       financials.Results      `json:"results"`
	KPIs          []report.KPI            `json:"kpis"`
	Summary       []report.SummaryRow     `json:"summary"`
	ProfitAndLoss report.Statement        `json:"profitAndLoss"`
	BalanceSheet  report.Statement        `json:"balanceSheet"`
	Breakeven     *financials.Breakeven   `json:"breakeven,omitempty"`
	Curve         []financials.CurvePoint `json:"curve,omitempty"`
	DebtService   *forecast.DebtService   `json:"debtService,omitempty"`
	Warnings      []string                `json:"warnings,omitempty"`
	Notes         []string                `json:"notes,omitempty"`
	Duration      string                  `json:"duration"`
}

type forecastResponse struct {
	RunID      string                 `json:"runId"`
	Scenarios  []string               `json:"scenarios"`
	Rows       []statementRow         `json:"rows"`
	CSV        string                 `json:"csv"`
	Forecasts  []forecast.Forecast    `json:"forecasts"`
	Metrics    []scenarioMetrics      `json:"metrics,omitempty"`
	Warnings   []string               `json:"warnings,omitempty"`
	Duration   string                 `json:"duration"`
	Config     map[string]interface{} `json:"config,omitempty"`
	ConfigYAML string                 `json:"configYaml,omitempty"`
}

// statementRow is one P&L line across scenarios. A scenario that failed to
// evaluate has a null value.
type statementRow struct {
	Metric    string             `json:"metric"`
	Deduction bool               `json:"deduction,omitempty"`
	Total     bool               `json:"total,omitempty"`
	Values    []*decimal.Decimal `json:"values"`
}

type scenarioMetrics struct {
	Error         string                 `json:"error,omitempty"`
	Notes         []string               `json:"notes,omitempty"`
	Optimizations []optimization.Summary `json:"optimizations,omitempty"`
}

type presetResponse struct {
	Name        string                 `json:"name"`
	Assumptions financials.Assumptions `json:"assumptions"`
}

func (h *handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEvaluate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	req, ok := h.decodeEvaluateRequest(w, r, op)
	if !ok {
		return
	}

	result, status, err := h.evaluate(r, req)
	if err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	res := *result.Results
	response := evaluateResponse{
		RunID:         result.RunID,
		Preset:        result.Preset,
		Assumptions:   result.Assumptions,
		Results:       res,
		KPIs:          report.KPIs(res),
		Summary:       report.Summary(res),
		ProfitAndLoss: report.ProfitAndLoss(res),
		BalanceSheet:  report.BalanceSheet(res),
		Breakeven:     result.Breakeven,
		DebtService:   result.DebtService,
		Warnings:      result.Warnings,
		Notes:         normalizeNotes(result.Notes),
		Duration:      time.Since(start).String(),
	}
	if result.Breakeven != nil {
		response.Curve = result.Breakeven.Curve(res, req.CurvePoints)
	}

	h.logger.Info("evaluation computed",
		zap.String("op", op),
		zap.String("run_id", response.RunID),
		zap.String("preset", response.Preset),
		zap.Int("overrides", req.Assumptions.Len()),
		zap.Float64("net_profit", res.Profit.NetProfit),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleExportPnL(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportPnL"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	req, ok := h.decodeEvaluateRequest(w, r, op)
	if !ok {
		return
	}

	result, status, err := h.evaluate(r, req)
	if err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	var buf bytes.Buffer
	if err := output.PnLCSV(&buf, report.ProfitAndLoss(*result.Results)); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="poha-pnl.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write CSV response", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) decodeEvaluateRequest(w http.ResponseWriter, r *http.Request, op string) (evaluateRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var req evaluateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return req, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return req, false
	}
	return req, true
}

// evaluate runs one request through the forecast pipeline as a single
// scenario. Assumptions the engine rejects map to 422.
func (h *handler) evaluate(r *http.Request, req evaluateRequest) (forecast.Forecast, int, error) {
	cfg := config.Configuration{
		Common: config.Common{
			Preset:          req.Preset,
			Breakeven:       config.BreakevenConfig{Basis: req.Basis},
			LoanTenureYears: req.LoanTenureYears,
		},
		Scenarios: []config.Scenario{{
			Name:        evaluateScenarioName,
			Active:      true,
			Assumptions: req.Assumptions,
		}},
	}

	results, err := forecast.GetForecastContext(r.Context(), h.logger, cfg)
	if err != nil {
		return forecast.Forecast{}, http.StatusBadRequest, err
	}
	if len(results) != 1 {
		return forecast.Forecast{}, http.StatusInternalServerError, fmt.Errorf("expected one evaluation, got %d", len(results))
	}
	result := results[0]
	if !result.OK() {
		return result, http.StatusUnprocessableEntity, fmt.Errorf("%s", result.Error)
	}
	return result, http.StatusOK, nil
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleForecast"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			h.logger.Warn("failed to close uploaded file", zap.String("op", op), zap.Error(cerr))
		}
	}()

	configBytes, err := io.ReadAll(file)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse configuration: %v", err), op)
		return
	}

	opts := forecastOptions{Optimize: coerceBool(r.FormValue("optimize"))}
	h.runForecast(w, r, configBytes, configMap, start, op, opts)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *handler) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	names := financials.PresetNames()
	presets := make([]presetResponse, 0, len(names))
	for _, name := range names {
		a, err := financials.Preset(name)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), "server.handlePresets")
			return
		}
		presets = append(presets, presetResponse{Name: name, Assumptions: a})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"default": constants.DefaultPreset,
		"presets": presets,
	})
}

func (h *handler) handleForecastEditor(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleForecastEditor"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configPayload := payload
	if rawConfig, ok := payload["config"]; ok {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid config payload: expected object", op)
			return
		}
		configPayload = cfgMap
	}

	options := forecastOptions{}
	if rawOptions, ok := payload["options"]; ok {
		optsMap, ok := rawOptions.(map[string]interface{})
		if !ok {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid options payload: expected object", op)
			return
		}
		if optimizeVal, ok := optsMap["optimize"]; ok {
			options.Optimize = coerceBool(optimizeVal)
		}
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse configuration: %v", err), op)
		return
	}

	h.runForecast(w, r, configBytes, configMap, start, op, options)
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

// marshalOrderedConfigYAML writes logging and output first, then common,
// then any remaining keys alphabetically.
func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"logging", "output", "common", "scenarios"} {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	return yaml.Marshal(orderedConfig{items: items})
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) runForecast(w http.ResponseWriter, r *http.Request, configBytes []byte, configMap map[string]interface{}, start time.Time, op string, opts forecastOptions) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	warnings := cfg.ValidateConfiguration()

	var optimizationResult *optimizer.Result
	if opts.Optimize {
		runner, err := optimizer.NewRunner(h.logger, cfg)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to initialize optimizer: %v", err), op)
			return
		}

		optimizationResult, err = runner.Run()
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("optimizer execution failed: %v", err), op)
			return
		}
	}

	results, err := forecast.GetForecastContext(r.Context(), h.logger, *cfg)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to compute forecast: %v", err), op)
		return
	}

	if optimizationResult != nil && !optimizationResult.Empty() {
		optimizationResult.Apply(results)
	}

	if opts.Optimize {
		updatedBytes, err := yaml.Marshal(cfg)
		if err != nil {
			h.logger.Warn("failed to marshal optimized configuration",
				zap.String("op", op),
				zap.Error(err),
			)
		} else {
			configBytes = updatedBytes
			if updatedMap, mapErr := decodeYAMLToMap(updatedBytes); mapErr == nil {
				configMap = updatedMap
			} else {
				h.logger.Warn("failed to decode optimized configuration map",
					zap.String("op", op),
					zap.Error(mapErr),
				)
			}
		}
	}

	csvData, err := output.CsvString(results)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("CSV export unavailable: %v", err))
	}

	elapsed := time.Since(start)

	if configMap == nil {
		configMap = make(map[string]interface{})
	}

	runID := uuid.NewString()
	if len(results) > 0 {
		runID = results[0].RunID
	}

	response := forecastResponse{
		RunID:      runID,
		Scenarios:  extractScenarioNames(results),
		Rows:       buildRows(results),
		CSV:        csvData,
		Forecasts:  results,
		Metrics:    buildMetrics(results),
		Warnings:   warnings,
		Duration:   elapsed.String(),
		Config:     configMap,
		ConfigYAML: string(configBytes),
	}

	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.String("run_id", runID),
		zap.Int("scenarios", len(response.Scenarios)),
		zap.Int("rows", len(response.Rows)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.String("op", "server.writeJSON"), zap.Error(err))
	}
}

func extractScenarioNames(results []forecast.Forecast) []string {
	names := make([]string, 0, len(results))
	for _, scenario := range results {
		names = append(names, scenario.Name)
	}
	return names
}

// buildRows lays the P&L of every scenario side by side, using the first
// evaluated scenario for the line labels.
func buildRows(results []forecast.Forecast) []statementRow {
	statements := make([]*report.Statement, len(results))
	var template *report.Statement
	for i, scenario := range results {
		if !scenario.OK() {
			continue
		}
		s := report.ProfitAndLoss(*scenario.Results)
		statements[i] = &s
		if template == nil {
			template = &s
		}
	}
	if template == nil {
		return nil
	}

	rows := make([]statementRow, 0, len(template.Lines))
	for i, line := range template.Lines {
		row := statementRow{
			Metric:    line.Metric,
			Deduction: line.Deduction,
			Total:     line.Total,
			Values:    make([]*decimal.Decimal, len(results)),
		}
		for j, s := range statements {
			if s == nil {
				continue
			}
			amount := s.Lines[i].Amount
			row.Values[j] = &amount
		}
		rows = append(rows, row)
	}
	return rows
}

func buildMetrics(results []forecast.Forecast) []scenarioMetrics {
	if len(results) == 0 {
		return nil
	}

	metrics := make([]scenarioMetrics, 0, len(results))
	for _, scenario := range results {
		metric := scenarioMetrics{
			Error: scenario.Error,
			Notes: normalizeNotes(scenario.Notes),
		}
		if len(scenario.Metrics.Optimizations) > 0 {
			metric.Optimizations = append([]optimization.Summary(nil), scenario.Metrics.Optimizations...)
		}
		metrics = append(metrics, metric)
	}

	return metrics
}

func normalizeNotes(notes []string) []string {
	if len(notes) == 0 {
		return nil
	}

	filtered := make([]string, 0, len(notes))
	for _, note := range notes {
		if trimmed := strings.TrimSpace(note); trimmed != "" {
			filtered = append(filtered, trimmed)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}

func coerceBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false
		}
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed
		}
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case json.Number:
		if parsed, err := strconv.ParseFloat(v.String(), 64); err == nil {
			return parsed != 0
		}
	}
	return false
}
