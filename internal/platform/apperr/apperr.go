// Package apperr defines the error taxonomy shared by the safety engine:
// caller-fixable validation failures, transient reference-source outages,
// and internal system failures. Validation and system errors propagate to
// the caller; source outages are absorbed at the per-source call boundary.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports caller-fixable input problems. It maps to a
// 400-class response at the HTTP boundary and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for the given field.
func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// SourceUnavailableError reports a transient failure of an external
// reference registry (timeout, network, 5xx). A source outage degrades
// interaction coverage; it must not abort the whole safety check.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// SourceUnavailable wraps err as a SourceUnavailableError for the named source.
func SourceUnavailable(source string, err error) error {
	return &SourceUnavailableError{Source: source, Err: err}
}

// SystemError reports an internal invariant failure, e.g. the missed-dose
// history lookup failing. It must never be swallowed: under-escalating on
// a hidden failure is a safety regression, so callers treat it as "could
// not determine safety status" and fail safe.
type SystemError struct {
	Op  string
	Err error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SystemError) Unwrap() error { return e.Err }

// System wraps err as a SystemError for the given operation.
func System(op string, err error) error {
	return &SystemError{Op: op, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsSourceUnavailable reports whether err is (or wraps) a SourceUnavailableError.
func IsSourceUnavailable(err error) bool {
	var se *SourceUnavailableError
	return errors.As(err, &se)
}

// IsSystem reports whether err is (or wraps) a SystemError.
func IsSystem(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}
