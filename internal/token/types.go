package token

import (
	"github.com/ldapgate/ldapgate/internal/core"

	"github.com/golang-jwt/jwt/v5"
)

// Token type constants
const (
	TokenTypeBearer = "Bearer"
)

// Result is an alias for core.TokenResult.
type Result = core.TokenResult

// ValidationResult is an alias for core.TokenValidationResult.
type ValidationResult = core.TokenValidationResult

// TokenData is the payload object inside the "data" claim. Verifiers
// key on data.uuid, the identity's stable ID.
type TokenData struct {
	UUID string `json:"uuid"`
}

// Claims is the wire shape of an issued token:
// {sub, exp = nbf + TTL, nbf, data: {uuid}}.
type Claims struct {
	Data TokenData `json:"data"`
	jwt.RegisteredClaims
}
