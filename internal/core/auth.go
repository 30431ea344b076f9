package core

import "context"

// AuthStatus classifies the outcome of a directory authentication attempt.
type AuthStatus int

const (
	// StatusSuccess means the directory verified the supplied password.
	StatusSuccess AuthStatus = iota

	// StatusCredentialsRejected covers a wrong password, an unknown
	// username and an ambiguous search result. Callers must not expose
	// which of these occurred.
	StatusCredentialsRejected

	// StatusUnavailable means the directory could not be reached or the
	// service account could not bind. This is never the user's fault.
	StatusUnavailable
)

// AuthResult holds the outcome of a directory authentication attempt.
// DisplayName and Email are populated only when Status is StatusSuccess.
type AuthResult struct {
	Status      AuthStatus
	Username    string
	DisplayName string
	Email       string
}

// Success reports whether the directory accepted the credentials.
func (r *AuthResult) Success() bool {
	return r != nil && r.Status == StatusSuccess
}

// DirectoryAuthenticator is the interface that credential verification
// backends must implement.
type DirectoryAuthenticator interface {
	Authenticate(ctx context.Context, username, password string) (*AuthResult, error)
	Name() string
}
