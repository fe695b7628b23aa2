package database

import "errors"

var (
	// ErrNotFound is returned when no user matches the given key.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when a create or email update would
	// violate email uniqueness.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrRefreshMismatch is returned by refresh rotation when the presented
	// token no longer matches the stored slot. This is the replay-detection
	// boundary: the token was already rotated or revoked.
	ErrRefreshMismatch = errors.New("refresh token mismatch")
)
