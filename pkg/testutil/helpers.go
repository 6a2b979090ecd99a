// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"
	"testing"

	"github.com/iwvelando/poha-forecast/internal/forecast"
)

// FindScenario finds a scenario by name in the results slice.
// Returns a pointer to the forecast if found, nil otherwise.
func FindScenario(results []forecast.Forecast, name string) *forecast.Forecast {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// MustFindScenario is FindScenario that fails the test when the scenario is missing.
func MustFindScenario(t testing.TB, results []forecast.Forecast, name string) *forecast.Forecast {
	t.Helper()
	found := FindScenario(results, name)
	if found == nil {
		t.Fatalf("scenario %q not found among %d results", name, len(results))
	}
	return found
}

// AssertClose fails the test when got and expected differ by more than tolerance.
func AssertClose(t testing.TB, name string, got, expected, tolerance float64) {
	t.Helper()
	if math.Abs(got-expected) > tolerance {
		t.Errorf("%s = %.6f, expected %.6f (±%g)", name, got, expected, tolerance)
	}
}

// FloatPtr returns a pointer to v, for optional configuration values.
func FloatPtr(v float64) *float64 {
	return &v
}
