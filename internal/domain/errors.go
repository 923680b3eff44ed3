package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound is returned when a user ID or email resolves to nothing.
	ErrUserNotFound = errors.New("user not found")
	// ErrQuizNotFound indicates the quiz does not exist (or was deleted).
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrEmailTaken is returned when a verified account already uses the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken is returned when the username is already claimed.
	ErrUsernameTaken = errors.New("username is already taken")
	// ErrOTPInvalidOrExpired covers missing, mismatched, and expired codes alike
	// so callers cannot distinguish which guess failed.
	ErrOTPInvalidOrExpired = errors.New("invalid or expired OTP")
	// ErrAlreadyVerified is returned when resending a code to a confirmed account.
	ErrAlreadyVerified = errors.New("account already verified")
	// ErrAttemptLimitExceeded is returned once a quiz's attempt cap is reached.
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded for this quiz")
	// ErrDuplicateAttempt signals that a concurrent submission claimed the same
	// attempt number; the losing request must not be silently retried because
	// submissions are not idempotent.
	ErrDuplicateAttempt = errors.New("concurrent attempt submission detected")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized is returned when the acting user lacks the required role.
	ErrUnauthorized = errors.New("not allowed for this role")
)

// ValidationError reports malformed input by field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validationf builds a ValidationError for a field.
func Validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
