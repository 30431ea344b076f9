package store

import "errors"

var (
	// ErrIdentityConflict is returned when an identity insert collides
	// with an existing username, email or stable ID. By the time this
	// can happen the directory has already verified the password, so
	// callers must treat it as an infrastructure failure rather than a
	// credential failure.
	ErrIdentityConflict = errors.New("identity already exists")

	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")
)
