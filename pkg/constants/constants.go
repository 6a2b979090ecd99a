// Package constants provides shared constants for the poha-forecast application.
package constants

import "time"

// Calendar constants
const (
	// MonthsPerYear scales monthly flows to annual flows.
	MonthsPerYear = 12

	// RunRateDaysPerYear converts annual flows into daily run-rates for
	// working capital. Operating days are not used here: stock and credit
	// periods are measured in calendar days.
	RunRateDaysPerYear = 365
)

// Financial constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 paisa)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// RupeesPerCrore is used for crore display (1 Cr = 10,000,000).
	RupeesPerCrore = 1e7

	// CurrencySymbol prefixes every rendered amount.
	CurrencySymbol = "₹"
)

// Analysis constants
const (
	// SweepPoints is the number of evenly spaced values in a sensitivity sweep.
	SweepPoints = 11

	// DefaultSweepLow and DefaultSweepHigh bound the sweep in percent of the base value.
	DefaultSweepLow  = -20.0
	DefaultSweepHigh = 20.0

	// DefaultSweepWorkers bounds concurrent evaluations in a sweep.
	DefaultSweepWorkers = 4

	// BreakevenCurvePoints is the number of samples on the breakeven chart.
	BreakevenCurvePoints = 100

	// BreakevenCurveHeadroom stretches the chart axis past the larger of
	// capacity and breakeven volume.
	BreakevenCurveHeadroom = 1.5
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format (P&L export)
	OutputFormatCSV = "csv"

	// OutputFormatJSON emits the full forecast records
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides of configuration keys
	EnvPrefix = "POHA"

	// DefaultPreset names the assumption template used when none is configured.
	DefaultPreset = "default"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultRequestTimeout bounds reading a request and writing its response
	DefaultRequestTimeout = 15 * time.Second

	// DefaultShutdownTimeout bounds draining in-flight requests on shutdown
	DefaultShutdownTimeout = 10 * time.Second
)
