package booking

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies caller-facing scheduling failures.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation_error"
	KindInvalidTimeFormat ErrorKind = "invalid_time_format"
	KindNotFound          ErrorKind = "not_found"
	KindConflict          ErrorKind = "conflict"
	KindInvalidTransition ErrorKind = "invalid_state_transition"
)

// SchedulingError is returned for every expected failure. Anything else is infrastructure.
type SchedulingError struct {
	Kind    ErrorKind
	Message string
	Details []string
}

func (e *SchedulingError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, strings.Join(e.Details, "; "))
}

func NewValidationError(msg string, details ...string) error {
	return &SchedulingError{Kind: KindValidation, Message: msg, Details: details}
}

func NewInvalidTimeFormat(format string, args ...any) error {
	return &SchedulingError{Kind: KindInvalidTimeFormat, Message: fmt.Sprintf(format, args...)}
}

// NotFound names the missing entity, e.g. NotFound("provider").
func NotFound(what string) error {
	return &SchedulingError{Kind: KindNotFound, Message: what + " not found"}
}

func NewConflict(reason string) error {
	return &SchedulingError{Kind: KindConflict, Message: reason}
}

func NewInvalidTransition(format string, args ...any) error {
	return &SchedulingError{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a scheduling error, or "" for infrastructure errors.
func KindOf(err error) ErrorKind {
	var se *SchedulingError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsKind reports whether err is a scheduling error of the given kind.
// InvalidTimeFormat also counts as a validation error.
func IsKind(err error, kind ErrorKind) bool {
	k := KindOf(err)
	if kind == KindValidation && k == KindInvalidTimeFormat {
		return true
	}
	return k == kind
}

// validationErrors collects field problems before failing once.
type validationErrors []string

func (v *validationErrors) require(value, field string) {
	if strings.TrimSpace(value) == "" {
		*v = append(*v, field+" is required")
	}
}

func (v *validationErrors) add(format string, args ...any) {
	*v = append(*v, fmt.Sprintf(format, args...))
}

func (v validationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return NewValidationError("invalid request", v...)
}
