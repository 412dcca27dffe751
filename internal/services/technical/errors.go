package technical

import (
	"errors"
	"fmt"

	"TradeSim/internal/domain/models"
)

// ErrInvalidInput is matched by every InvalidInputError via errors.Is.
var ErrInvalidInput = errors.New("invalid indicator input")

// InvalidInputError reports a value whose shape or content does not fit its indicator kind.
type InvalidInputError struct {
	Kind   models.IndicatorKind
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for %s: %s", e.Kind, e.Reason)
}

// Unwrap returns ErrInvalidInput.
func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

func invalid(kind models.IndicatorKind, format string, a ...interface{}) error {
	return &InvalidInputError{Kind: kind, Reason: fmt.Sprintf(format, a...)}
}
