package directory

import "errors"

var (
	// ErrDirectoryUnavailable means the directory endpoint could not be
	// reached or the service account bind failed.
	ErrDirectoryUnavailable = errors.New("directory unavailable")

	// ErrCredentialsRejected covers wrong passwords, unknown usernames
	// and ambiguous search results. The distinction is never surfaced.
	ErrCredentialsRejected = errors.New("credentials rejected")
)
