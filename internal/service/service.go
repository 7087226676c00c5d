// Package service implements the domain services of the Sentinel Console.
// Each service wraps the injected store with entity defaults, closed-enum
// validation, and client-side statistics aggregation.
package service

import (
	"errors"
	"fmt"
)

// ErrValidation indicates that caller-supplied fields failed validation
var ErrValidation = errors.New("validation failed")

// ErrInvalidTransition indicates a scan status change outside the allowed
// scheduled -> in_progress -> completed|failed progression.
var ErrInvalidTransition = errors.New("invalid scan status transition")

func requiredErr(field string) error {
	return fmt.Errorf("%w: %s is required", ErrValidation, field)
}
