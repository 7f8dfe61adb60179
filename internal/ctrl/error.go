package ctrl

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when a user with the same email is registered.
var ErrAlreadyExists = errors.New("User with this email already exists")

// ErrInvalidCredentials is returned for an unknown email and for a wrong
// password alike.
var ErrInvalidCredentials = errors.New("Invalid credentials")

var (
	ErrRefreshTokenRequired = errors.New("Refresh token is required")
	ErrInvalidRefreshToken  = errors.New("Invalid refresh token")
	ErrRefreshTokenExpired  = errors.New("Refresh token has expired")
	ErrUserInactive         = errors.New("User account is inactive")
	ErrTokenReuse           = errors.New("Token reuse detected. All sessions have been terminated.")
)

var ErrTooManyRequests = errors.New("too many requests")

// ErrInternal wraps hashing and persistence failures.
var ErrInternal = errors.New("internal error")

// RateLimitError carries the retry-after hint for a blocked login.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf(
		"Too many failed login attempts. Please try again in %d minutes.",
		int(math.Ceil(e.RetryAfter.Minutes())),
	)
}

func (e *RateLimitError) Unwrap() error {
	return ErrTooManyRequests
}

func internal(err error) error {
	return fmt.Errorf("%w: %w", ErrInternal, err)
}
