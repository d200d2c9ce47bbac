package domain

import (
	"errors"
	"fmt"
)

// Error classes. Concrete errors wrap one of these so callers can branch with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnavailable     = errors.New("dependency unavailable")
)

var (
	ErrNoHostIdentity    = fmt.Errorf("%w: caller has no host identity", ErrForbidden)
	ErrInactiveUser      = fmt.Errorf("%w: inactive user", ErrForbidden)
	ErrNotOwner          = fmt.Errorf("%w: not the owner of this resource", ErrForbidden)
	ErrOwnPropertyReview = fmt.Errorf("%w: you cannot review your own property", ErrValidation)
	ErrDuplicateReview   = fmt.Errorf("%w: you have already reviewed this property", ErrConflict)
)

// Validationf builds a validation error with a formatted detail.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf builds a not-found error naming the missing entity.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Reason returns a short machine-readable code for err, empty when err has no specific reason.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrOwnPropertyReview):
		return "own_property_review"
	case errors.Is(err, ErrDuplicateReview):
		return "duplicate_review"
	case errors.Is(err, ErrNoHostIdentity):
		return "no_host_identity"
	case errors.Is(err, ErrInactiveUser):
		return "inactive_user"
	case errors.Is(err, ErrNotOwner):
		return "not_owner"
	}
	return ""
}
