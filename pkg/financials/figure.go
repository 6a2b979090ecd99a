package financials

import (
	"encoding/json"
	"fmt"
	"math"
)

// unboundedToken is the JSON form of an unbounded Figure.
const unboundedToken = "inf"

// Figure is a number that may be unbounded, e.g. a return on zero capital or
// a breakeven volume that no throughput reaches. It keeps "no finite answer"
// distinct from NaN and from IEEE division by zero.
type Figure struct {
	value     float64
	unbounded bool
}

// Finite wraps an ordinary value.
func Finite(v float64) Figure {
	return Figure{value: v}
}

// Unbounded returns the positive-infinity sentinel.
func Unbounded() Figure {
	return Figure{unbounded: true}
}

// IsUnbounded reports whether the figure has no finite value.
func (f Figure) IsUnbounded() bool {
	return f.unbounded
}

// Value returns the finite value and true, or 0 and false when unbounded.
func (f Figure) Value() (float64, bool) {
	if f.unbounded {
		return 0, false
	}
	return f.value, true
}

// Float64 returns the value with +Inf standing in for unbounded.
func (f Figure) Float64() float64 {
	if f.unbounded {
		return math.Inf(1)
	}
	return f.value
}

// String renders the figure with two decimals or "∞".
func (f Figure) String() string {
	if f.unbounded {
		return "∞"
	}
	return fmt.Sprintf("%.2f", f.value)
}

// MarshalJSON encodes finite figures as numbers and unbounded ones as "inf".
func (f Figure) MarshalJSON() ([]byte, error) {
	if f.unbounded {
		return json.Marshal(unboundedToken)
	}
	return json.Marshal(f.value)
}

// UnmarshalJSON accepts a number or the "inf" token.
func (f *Figure) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err == nil {
		if token != unboundedToken {
			return fmt.Errorf("invalid figure %q", token)
		}
		*f = Unbounded()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid figure: %w", err)
	}
	*f = Finite(v)
	return nil
}
