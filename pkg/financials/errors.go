package financials

import (
	"errors"
	"strings"
)

// ErrInvalidAssumptions is matched by every ValidationError via errors.Is.
var ErrInvalidAssumptions = errors.New("invalid assumptions")

// ValidationError lists why a set of assumptions cannot be evaluated.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	if len(e.Reasons) == 0 {
		return ErrInvalidAssumptions.Error()
	}
	return ErrInvalidAssumptions.Error() + ": " + strings.Join(e.Reasons, "; ")
}

// Is lets errors.Is(err, ErrInvalidAssumptions) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidAssumptions
}
