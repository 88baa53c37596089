package regen

import (
	"errors"
	"fmt"
)

// ErrValidation indicates a user-correctable request failure. Messages name
// the configuration option that would resolve them.
var ErrValidation = errors.New("validation failed")

// validationf builds a validation error with a formatted message.
func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
