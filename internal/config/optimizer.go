package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/poha-forecast/pkg/financials"
)

const (
	SeekTargetNetProfit = "netProfit"
	SeekTargetEBITDA    = "ebitda"

	defaultToleranceAmount = 0.01
	defaultMaxIterations   = 50
)

// SeekConfig defines a single-parameter target seek: move Field within
// [Min, Max] until the Target profit line reaches TargetValue.
type SeekConfig struct {
	Field         string   `yaml:"field" mapstructure:"field"`
	Target        string   `yaml:"target,omitempty" mapstructure:"target"`
	TargetValue   float64  `yaml:"targetValue,omitempty" mapstructure:"targetValue"`
	Min           *float64 `yaml:"min,omitempty" mapstructure:"min"`
	Max           *float64 `yaml:"max,omitempty" mapstructure:"max"`
	Tolerance     float64  `yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int      `yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// CanonicalSeekTarget returns the canonical identifier for a seek target.
func CanonicalSeekTarget(value string) string {
	trimmed := strings.TrimSpace(value)
	switch strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(trimmed)) {
	case "", "netprofit", "pat":
		return SeekTargetNetProfit
	case "ebitda":
		return SeekTargetEBITDA
	default:
		return trimmed
	}
}

// Normalize ensures defaults and canonical values are applied before validation.
func (s *SeekConfig) Normalize() {
	if s == nil {
		return
	}
	if field, err := financials.ParseField(s.Field); err == nil {
		s.Field = string(field)
	}
	s.Target = CanonicalSeekTarget(s.Target)
	if s.Tolerance <= 0 {
		s.Tolerance = defaultToleranceAmount
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = defaultMaxIterations
	}
}

// Validate returns an error when the seek configuration is unsupported.
func (s *SeekConfig) Validate() error {
	if s == nil {
		return fmt.Errorf("seek configuration cannot be nil")
	}

	s.Normalize()

	if _, err := financials.ParseField(s.Field); err != nil {
		return fmt.Errorf("seek field: %w", err)
	}
	switch s.Target {
	case SeekTargetNetProfit, SeekTargetEBITDA:
	default:
		return fmt.Errorf("seek target %q is not supported", s.Target)
	}
	if s.Min == nil {
		return fmt.Errorf("seek requires a minimum bound")
	}
	if s.Max == nil {
		return fmt.Errorf("seek requires a maximum bound")
	}
	if *s.Min >= *s.Max {
		return fmt.Errorf("seek minimum %.2f must be less than maximum %.2f", *s.Min, *s.Max)
	}

	return nil
}

// TargetOf reads the profit line named by target from results.
func TargetOf(target string, r financials.Results) float64 {
	if CanonicalSeekTarget(target) == SeekTargetEBITDA {
		return r.Profit.EBITDA
	}
	return r.Profit.NetProfit
}
