package optimizer

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/iwvelando/poha-forecast/internal/config"
	"github.com/iwvelando/poha-forecast/internal/forecast"
	"github.com/iwvelando/poha-forecast/pkg/financials"
	"github.com/iwvelando/poha-forecast/pkg/format"
	"github.com/iwvelando/poha-forecast/pkg/optimization"
)

type Runner struct {
	logger *zap.Logger
	conf   *config.Configuration
}

type seekTarget struct {
	scenarioIndex int
	scenarioName  string
	seek          *config.SeekConfig
	field         financials.Field
	base          financials.Assumptions
	minValue      float64
	maxValue      float64
	original      float64
}

type evaluation struct {
	value       float64
	achieved    float64
	targetValue float64
	err         error
}

func (e evaluation) valid() bool {
	return e.err == nil
}

func (e evaluation) gap() float64 {
	return e.achieved - e.targetValue
}

// Result summarizes seek adjustments keyed by scenario name.
type Result struct {
	Summaries map[string][]optimization.Summary
}

// Empty indicates whether any seek adjustments were produced.
func (r Result) Empty() bool {
	return len(r.Summaries) == 0
}

// Apply attaches seek summaries to the provided forecast results.
func (r Result) Apply(forecasts []forecast.Forecast) {
	if len(r.Summaries) == 0 {
		return
	}
	for i := range forecasts {
		summaries, ok := r.Summaries[forecasts[i].Name]
		if !ok {
			continue
		}
		metrics := forecasts[i].Metrics
		metrics.Optimizations = append(metrics.Optimizations, summaries...)
		forecasts[i].Metrics = metrics
	}
}

// NewRunner constructs a Runner for the provided configuration.
func NewRunner(logger *zap.Logger, conf *config.Configuration) (*Runner, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, conf: conf}, nil
}

// Run executes all seek directives and writes each result into the
// scenario's assumption overrides, so a forecast run afterwards uses it.
// Directives in one scenario run in order and see earlier results.
func (r *Runner) Run() (*Result, error) {
	summaries := make(map[string][]optimization.Summary)

	for i := range r.conf.Scenarios {
		scenario := &r.conf.Scenarios[i]
		if !scenario.Active {
			continue
		}
		for j := range scenario.Seek {
			target, err := r.collectTarget(i, &scenario.Seek[j])
			if err != nil {
				return nil, fmt.Errorf("scenario %s seek %d: %w", scenario.Name, j+1, err)
			}

			summary := r.seek(target)
			if err := scenario.Assumptions.Set(target.field, summary.Value); err != nil {
				return nil, err
			}
			summaries[scenario.Name] = append(summaries[scenario.Name], summary)

			r.logger.Info("target seek adjusted assumption",
				zap.String("op", "optimizer.Run"),
				zap.String("scenario", scenario.Name),
				zap.String("field", summary.Field),
				zap.String("target", summary.Target),
				zap.Float64("targetValue", summary.TargetValue),
				zap.Float64("original", summary.Original),
				zap.Float64("value", summary.Value),
				zap.Float64("achieved", summary.Achieved),
				zap.Int("iterations", summary.Iterations),
				zap.Bool("converged", summary.Converged),
			)
		}
	}

	return &Result{Summaries: summaries}, nil
}

func (r *Runner) collectTarget(scenarioIndex int, seek *config.SeekConfig) (seekTarget, error) {
	if err := seek.Validate(); err != nil {
		return seekTarget{}, err
	}
	field, err := financials.ParseField(seek.Field)
	if err != nil {
		return seekTarget{}, err
	}
	scenario := r.conf.Scenarios[scenarioIndex]
	base, err := r.conf.ScenarioAssumptions(scenario)
	if err != nil {
		return seekTarget{}, err
	}
	original, err := base.Get(field)
	if err != nil {
		return seekTarget{}, err
	}
	return seekTarget{
		scenarioIndex: scenarioIndex,
		scenarioName:  scenario.Name,
		seek:          seek,
		field:         field,
		base:          base,
		minValue:      *seek.Min,
		maxValue:      *seek.Max,
		original:      original,
	}, nil
}

// seek bisects [min, max] for the value at which the target line crosses
// the target value. Whole-valued fields stop once the bracket spans two
// neighbouring integers and keep the one that reaches the target.
func (r *Runner) seek(target seekTarget) optimization.Summary {
	cfg := target.seek
	summary := optimization.Summary{
		Scenario:        target.scenarioName,
		Field:           string(target.field),
		Label:           target.field.Label(),
		Target:          cfg.Target,
		TargetValue:     cfg.TargetValue,
		Original:        target.original,
		OriginalDisplay: formatFieldDisplay(target.field, target.original),
		Min:             target.minValue,
		Max:             target.maxValue,
	}
	finish := func(eval evaluation, iterations int, converged bool, notes ...string) optimization.Summary {
		summary.Value = eval.value
		summary.ValueDisplay = formatFieldDisplay(target.field, eval.value)
		summary.Achieved = eval.achieved
		summary.Gap = eval.gap()
		summary.Iterations = iterations
		summary.Converged = converged
		summary.Notes = notes
		return summary
	}
	keepOriginal := func(note string) optimization.Summary {
		eval := r.evaluateTarget(target, target.original)
		return finish(eval, 0, false, note)
	}

	lowerEval := r.evaluateTarget(target, target.minValue)
	upperEval := r.evaluateTarget(target, target.maxValue)
	for _, eval := range []evaluation{lowerEval, upperEval} {
		if !eval.valid() {
			return keepOriginal(fmt.Sprintf("assumptions are invalid at %s: %v",
				formatFieldDisplay(target.field, eval.value), eval.err))
		}
	}

	within := func(e evaluation) bool { return math.Abs(e.gap()) <= cfg.Tolerance }
	if within(lowerEval) {
		return finish(lowerEval, 0, true)
	}
	if within(upperEval) {
		return finish(upperEval, 0, true)
	}

	if sameSign(lowerEval.gap(), upperEval.gap()) {
		closest := upperEval
		if math.Abs(lowerEval.gap()) < math.Abs(upperEval.gap()) {
			closest = lowerEval
		}
		note := fmt.Sprintf(
			"unable to reach %s of %s within bounds %s to %s",
			targetLabel(cfg.Target),
			format.Currency(cfg.TargetValue),
			formatFieldDisplay(target.field, target.minValue),
			formatFieldDisplay(target.field, target.maxValue),
		)
		return finish(closest, 0, false, note)
	}

	lower, upper := lowerEval, upperEval
	iterations := 0
	for iterations < cfg.MaxIterations {
		if target.field.IsInteger() && math.Abs(upper.value-lower.value) <= 1 {
			reached := upper
			if lower.gap() >= 0 {
				reached = lower
			}
			return finish(reached, iterations, true,
				fmt.Sprintf("%s is whole-valued; %s is the nearest value reaching the target",
					target.field.Label(), formatFieldDisplay(target.field, reached.value)))
		}

		mid := r.evaluateTarget(target, lower.value+(upper.value-lower.value)/2)
		iterations++
		if !mid.valid() {
			return keepOriginal(fmt.Sprintf("assumptions are invalid at %s: %v",
				formatFieldDisplay(target.field, mid.value), mid.err))
		}
		if within(mid) {
			return finish(mid, iterations, true)
		}
		if sameSign(mid.gap(), lower.gap()) {
			if mid.value == lower.value {
				break
			}
			lower = mid
		} else {
			if mid.value == upper.value {
				break
			}
			upper = mid
		}
	}

	best := upper
	if math.Abs(lower.gap()) < math.Abs(upper.gap()) {
		best = lower
	}
	return finish(best, iterations, false,
		fmt.Sprintf("stopped after %d iterations, %s away from the target", iterations, format.Currency(math.Abs(best.gap()))))
}

func (r *Runner) evaluateTarget(target seekTarget, value float64) evaluation {
	eval := evaluation{value: value, targetValue: target.seek.TargetValue}

	candidate, err := target.base.With(target.field, value)
	if err != nil {
		eval.err = err
		return eval
	}
	// Whole-valued fields round on set.
	eval.value, _ = candidate.Get(target.field)

	results, err := financials.Evaluate(candidate)
	if err != nil {
		eval.err = err
		return eval
	}
	eval.achieved = config.TargetOf(target.seek.Target, results)
	return eval
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func targetLabel(target string) string {
	if config.CanonicalSeekTarget(target) == config.SeekTargetEBITDA {
		return "EBITDA"
	}
	return "net profit"
}

func formatFieldDisplay(field financials.Field, value float64) string {
	switch {
	case field.IsInteger():
		return fmt.Sprintf("%d", int(math.Round(value)))
	case strings.HasSuffix(string(field), "Pct"):
		return format.Percent(value)
	case field == financials.FieldPaddyThroughputKgPerHr:
		return format.Quantity(value) + " kg/hr"
	case field == financials.FieldMachineryLifeYears:
		return fmt.Sprintf("%.1f years", value)
	default:
		return format.Currency(value)
	}
}
