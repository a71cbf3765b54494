// Package services wraps the remote weather, translation and plant disease
// APIs behind clients that report failures with a named reason.
package services

import (
	"errors"
	"fmt"
)

// Failure reasons. Every error returned by a client in this package wraps
// exactly one of these, so callers can tell "not set up" from "down" from
// "nothing found".
var (
	ErrNotConfigured = errors.New("not configured")
	ErrUnavailable   = errors.New("service unavailable")
	ErrNoData        = errors.New("no data for this input")
	ErrMalformed     = errors.New("malformed response")
	ErrInvalidInput  = errors.New("invalid input")
)

// ServiceError is a failed remote call.
type ServiceError struct {
	Service string // "weather", "translate", "disease"
	Reason  error  // One of the Err* reasons above
	Err     error  // Underlying cause, may be nil
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Service, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Reason)
}

// Unwrap exposes both the reason and the cause to errors.Is and errors.As.
func (e *ServiceError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Reason, e.Err}
	}
	return []error{e.Reason}
}

func fail(service string, reason, err error) error {
	return &ServiceError{Service: service, Reason: reason, Err: err}
}

// ReasonCode returns a stable snake_case code for an error's reason, used in
// API responses, metrics labels and message keys. Unknown errors map to
// "unavailable".
func ReasonCode(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "unavailable"
	}
}
