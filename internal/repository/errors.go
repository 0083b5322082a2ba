package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a uniqueness constraint (email or mobile) was violated.
	ErrConflict = errors.New("repository: conflict")
	// ErrUnavailable indicates the backing medium cannot be read or written.
	// Callers gating security decisions must treat this as a denial.
	ErrUnavailable = errors.New("repository: store unavailable")
)
