package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrQuota      = errors.New("storage quota exceeded")
)

// ValidationError rejects a request before any state is written.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func Invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// QuotaError reports that storage usage is at or above the allowed fraction.
type QuotaError struct {
	UsedPercent float64
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("storage quota exceeded: %.1f%% used", e.UsedPercent)
}

func (e *QuotaError) Is(target error) bool {
	return target == ErrQuota
}
