package core

import (
	"context"
	"time"
)

// TokenResult is the outcome of a token issuance call.
type TokenResult struct {
	TokenString string
	TokenType   string
	NotBefore   time.Time
	ExpiresAt   time.Time
	Success     bool
}

// TokenValidationResult is the outcome of a token validation call.
type TokenValidationResult struct {
	Valid     bool
	Subject   string
	StableID  string
	NotBefore time.Time
	ExpiresAt time.Time
}

// TokenProvider is the interface that token signing backends must
// implement. The local provider signs with an Ed25519 key loaded at
// startup; tests inject providers with generated keys.
type TokenProvider interface {
	Issue(ctx context.Context, username, stableID string) (*TokenResult, error)
	Validate(ctx context.Context, tokenString string) (*TokenValidationResult, error)
	Name() string
}
