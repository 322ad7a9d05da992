package domain

import "errors"

// Sentinel errors - use with errors.Is()
var (
	// ErrNotConfigured indicates a missing credential or identifier. Callers
	// degrade to empty output instead of failing the surrounding build.
	ErrNotConfigured = errors.New("not configured")

	// ErrNotFound indicates a remote resource is missing or archived.
	ErrNotFound = errors.New("not found")
)
