package financials

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iwvelando/poha-forecast/pkg/constants"
	"github.com/iwvelando/poha-forecast/pkg/mathutil"
)

// SweepPoint is one evaluation of a sensitivity sweep. Err is set when the
// perturbed assumptions fail validation; NetProfit is then zero.
type SweepPoint struct {
	Value     float64 `json:"value"`
	ChangePct float64 `json:"changePct"`
	NetProfit float64 `json:"netProfit"`
	Err       error   `json:"-"`
	Error     string  `json:"error,omitempty"`
}

// Sweep is the result of varying one field across a percentage range.
type Sweep struct {
	Field     Field        `json:"field"`
	Label     string       `json:"label"`
	BaseValue float64      `json:"baseValue"`
	LowPct    float64      `json:"lowPct"`
	HighPct   float64      `json:"highPct"`
	Points    []SweepPoint `json:"points"`
}

// Sweeper runs sensitivity sweeps with a bounded number of concurrent
// evaluations.
type Sweeper struct {
	logger  *zap.Logger
	workers int
}

// NewSweeper builds a Sweeper. A nil logger disables logging and a
// non-positive worker count selects the default.
func NewSweeper(logger *zap.Logger, workers int) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = constants.DefaultSweepWorkers
	}
	return &Sweeper{logger: logger, workers: workers}
}

// Run evaluates the model at evenly spaced values of field, from
// base×(1+low/100) to base×(1+high/100) inclusive, holding every other
// assumption fixed. Points come back in ascending percentage order
// regardless of the order in which they were computed.
func (s *Sweeper) Run(ctx context.Context, base Assumptions, field Field, low, high float64) (Sweep, error) {
	if !field.Valid() {
		return Sweep{}, fmt.Errorf("sensitivity sweep: unknown assumption field %q", field)
	}
	if low > high {
		return Sweep{}, fmt.Errorf("sensitivity sweep: low %.2f%% is above high %.2f%%", low, high)
	}

	baseValue, err := base.Get(field)
	if err != nil {
		return Sweep{}, fmt.Errorf("sensitivity sweep: %w", err)
	}

	sweep := Sweep{
		Field:     field,
		Label:     field.Label(),
		BaseValue: baseValue,
		LowPct:    low,
		HighPct:   high,
	}
	changes := mathutil.Linspace(low, high, constants.SweepPoints)
	sweep.Points = make([]SweepPoint, len(changes))

	s.logger.Debug("running sensitivity sweep",
		zap.String("op", "financials.Sweeper.Run"),
		zap.String("field", string(field)),
		zap.Float64("base", baseValue),
		zap.Float64("low_pct", low),
		zap.Float64("high_pct", high),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, change := range changes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			value := mathutil.ScalePercent(baseValue, change)
			point := SweepPoint{Value: value, ChangePct: change}

			perturbed, err := base.With(field, value)
			if err != nil {
				return err
			}
			// Integer fields round on set; report the value actually used.
			point.Value, _ = perturbed.Get(field)

			results, err := Evaluate(perturbed)
			if err != nil {
				point.Err = err
				point.Error = err.Error()
			} else {
				point.NetProfit = results.Profit.NetProfit
			}
			sweep.Points[i] = point
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Sweep{}, fmt.Errorf("sensitivity sweep on %s: %w", field, err)
	}

	failed := 0
	for _, p := range sweep.Points {
		if p.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		s.logger.Warn("sensitivity sweep has invalid points",
			zap.String("op", "financials.Sweeper.Run"),
			zap.String("field", string(field)),
			zap.Int("failed", failed),
			zap.Int("points", len(sweep.Points)),
		)
	}
	return sweep, nil
}
