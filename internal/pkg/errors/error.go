package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInternal         = errors.New("internal server error")
	ErrRateLimited      = errors.New("too many requests")
	ErrStoreUnavailable = errors.New("storage unavailable")
	ErrDuplicateEntry   = errors.New("duplicate entry")
)

// Account-state errors. Expected user-facing outcomes, returned with a
// stable message and never logged as server failures.
var (
	ErrAccountDisabled  = errors.New("account is disabled")
	ErrAccountBlocked   = errors.New("account is blocked")
	ErrIdentityNotFound = errors.New("customer not found")
)

// OTP errors
var (
	ErrInvalidCode = errors.New("invalid OTP")
	ErrCodeExpired = errors.New("OTP has expired")
)

// Token and session errors
var (
	ErrTokenMalformed  = errors.New("malformed token")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenRevoked    = errors.New("token has been invalidated")
	ErrWrongTokenType  = errors.New("wrong token type")
	ErrSessionNotFound = errors.New("session not found or no longer active")
	ErrNoToken         = errors.New("no token provided")
)

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsAuthOutcome reports whether err is one of the expected authentication
// outcomes that are returned to the client as-is rather than treated as a
// server failure.
func IsAuthOutcome(err error) bool {
	for _, target := range []error{
		ErrAccountDisabled, ErrAccountBlocked, ErrIdentityNotFound,
		ErrInvalidCode, ErrCodeExpired,
		ErrTokenMalformed, ErrTokenExpired, ErrTokenRevoked,
		ErrWrongTokenType, ErrSessionNotFound, ErrNoToken,
		ErrRateLimited,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
