package service

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Failure taxonomy. Callers match with errors.Is, the HTTP layer maps each one
// to a status code.
var (
	ErrValidation            = errors.New("validation failed")
	ErrDuplicateEmail        = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrAccountLocked         = errors.New("account locked")
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	ErrNotFound              = errors.New("not found")
	ErrInternal              = errors.New("internal error")

	ErrPasswordUnchanged = errors.New("new password must be different from the current one")
)

// ValidationError carries the first rule a request broke
type ValidationError struct {
	Err error
}

func invalid(err error) error {
	return &ValidationError{Err: err}
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() []error { return []error{ErrValidation, e.Err} }

// AccountLockedError is returned while a lockout window is active
type AccountLockedError struct {
	Until     time.Time
	Remaining time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account is temporarily locked, try again in %d minutes", e.RemainingMinutes())
}

func (e *AccountLockedError) Unwrap() error { return ErrAccountLocked }

// RemainingMinutes rounds up so a client is never told 0 minutes while still locked
func (e *AccountLockedError) RemainingMinutes() int {
	return int(math.Ceil(e.Remaining.Minutes()))
}

const (
	ReasonMissing     = "missing_credentials"
	ReasonMalformed   = "malformed_credentials"
	ReasonInvalid     = "invalid_token"
	ReasonInvalidated = "session_invalidated"
)

// UnauthenticatedError tells the client why a bearer credential was refused
type UnauthenticatedError struct {
	Reason string
}

func unauthenticated(reason string) error {
	return &UnauthenticatedError{Reason: reason}
}

func (e *UnauthenticatedError) Error() string {
	switch e.Reason {
	case ReasonMissing:
		return "authorization header is missing"
	case ReasonMalformed:
		return "authorization header must be a bearer token"
	case ReasonInvalidated:
		return "session invalidated by password change, please log in again"
	default:
		return "authorization token is invalid or expired"
	}
}

func (e *UnauthenticatedError) Unwrap() error { return ErrUnauthenticated }

// internalErr marks an unexpected fault. The cause is kept for logging.
func internalErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}
