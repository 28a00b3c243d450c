// Package common defines shared constants and sentinel errors used across
// client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// ErrNotFound reports an expected absence: no profile yet, no such peer,
	// or a lookup answered without an address. It is normal control flow.
	ErrNotFound = errors.New("not found")

	// ErrCorrupt reports a persisted record that exists but cannot be parsed.
	// It is surfaced to the caller and never silently replaced.
	ErrCorrupt = errors.New("corrupt record")

	// ErrInvalidUsername is returned when a username is empty after trimming.
	ErrInvalidUsername = errors.New("invalid username")
)
