package model

import "errors"

var (
	// ErrSessionNotFound is returned when a session is not found.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidLanguage is returned when a language is outside the supported set.
	ErrInvalidLanguage = errors.New("unsupported language")

	// ErrInvalidExpiry is returned when the requested expiry is outside 1-168 hours.
	ErrInvalidExpiry = errors.New("expiresIn must be between 1 and 168 hours")

	// ErrInvalidTimeout is returned when an execution timeout is outside 1-10 seconds.
	ErrInvalidTimeout = errors.New("timeout must be between 1 and 10 seconds")
)
