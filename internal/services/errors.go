package services

import "fmt"

// ValidationError flags malformed or out-of-range input. Nothing is applied
// when one is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// PageCountError rejects a page-count reduction below already-logged
// progress. Both values are carried so callers can render them.
type PageCountError struct {
	Requested int64
	MaxLogged int64
}

func (e *PageCountError) Error() string {
	return fmt.Sprintf("cannot reduce page count to %d: already logged progress up to page %d", e.Requested, e.MaxLogged)
}
