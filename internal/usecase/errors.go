package usecase

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCredentials indicates the provided identifier or credential are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountNotFound indicates no account matches the supplied identifier.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists indicates the email or mobile number is already registered.
	ErrAccountExists = errors.New("account already exists")
	// ErrRecoverySessionNotFound indicates the recovery session id is unknown or expired.
	ErrRecoverySessionNotFound = errors.New("recovery session not found")
	// ErrRecoveryStage indicates an operation was attempted out of stage order.
	ErrRecoveryStage = errors.New("recovery stage mismatch")
	// ErrRecoveryIdentityMismatch indicates the identity pair did not jointly match an account.
	// The message is deliberately generic so callers cannot tell which field missed.
	ErrRecoveryIdentityMismatch = errors.New("identity details do not match our records")
	// ErrRecoveryAnswerMismatch indicates the security answer did not verify.
	ErrRecoveryAnswerMismatch = errors.New("security answer is incorrect")
)

// FieldViolation reports a single registration or input validation failure.
type FieldViolation struct {
	Field   string
	Message string
}

// ValidationError aggregates every violation found while validating input,
// so callers can report the complete set rather than the first failure.
type ValidationError struct {
	Violations []FieldViolation
}

// Error implements error for ValidationError.
func (e *ValidationError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		messages = append(messages, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return strings.Join(messages, "; ")
}

// Add appends a violation.
func (e *ValidationError) Add(field, message string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: message})
}

// ErrOrNil returns the aggregate as an error when any violation was recorded.
func (e *ValidationError) ErrOrNil() error {
	if e == nil || len(e.Violations) == 0 {
		return nil
	}
	return e
}
