// Package common defines shared constants and sentinel errors used across
// the editor core and store layers of PageCraft. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")

	// Gateway-level errors.
	ErrMissingActor = errors.New("missing acting user identity")

	// Registry errors.
	ErrUnknownSectionType = errors.New("unknown section type")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
