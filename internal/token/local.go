package token

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LocalTokenProvider signs and validates EdDSA (Ed25519) tokens with
// key material loaded once at process start. The key pair is read-only
// after construction and safe for unlimited concurrent use.
type LocalTokenProvider struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	expiration time.Duration
}

// NewLocalTokenProvider creates a provider from an explicit key pair.
// Tests inject freshly generated keys here.
func NewLocalTokenProvider(
	privateKey ed25519.PrivateKey,
	publicKey ed25519.PublicKey,
	expiration time.Duration,
) *LocalTokenProvider {
	return &LocalTokenProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		expiration: expiration,
	}
}

// NewLocalTokenProviderFromFiles loads a PKCS8 private key and SPKI
// public key (both PEM, Ed25519) from disk. The PEM shapes are part of
// the interop contract with downstream verifiers.
func NewLocalTokenProviderFromFiles(
	privateKeyPath, publicKeyPath string,
	expiration time.Duration,
) (*LocalTokenProvider, error) {
	privPEM, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	pubPEM, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key: %w", err)
	}

	priv, err := jwt.ParseEdPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: private: %v", ErrInvalidKey, err)
	}
	pub, err := jwt.ParseEdPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: public: %v", ErrInvalidKey, err)
	}

	edPriv, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: private key is not Ed25519", ErrInvalidKey)
	}
	edPub, ok := pub.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: public key is not Ed25519", ErrInvalidKey)
	}

	return NewLocalTokenProvider(edPriv, edPub, expiration), nil
}

// Issue signs a fresh token binding the username to the identity's
// stable ID. Every call computes a fresh validity window; tokens are
// never cached.
func (p *LocalTokenProvider) Issue(
	ctx context.Context,
	username, stableID string,
) (*Result, error) {
	now := time.Now()
	expiresAt := now.Add(p.expiration)

	claims := Claims{
		Data: TokenData{UUID: stableID},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	tokenString, err := tok.SignedString(p.privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	return &Result{
		TokenString: tokenString,
		TokenType:   TokenTypeBearer,
		NotBefore:   now,
		ExpiresAt:   expiresAt,
		Success:     true,
	}, nil
}

// Validate verifies a token's signature and validity window with the
// public key and returns its claims.
func (p *LocalTokenProvider) Validate(
	ctx context.Context,
	tokenString string,
) (*ValidationResult, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.publicKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.Data.UUID == "" {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || claims.NotBefore == nil {
		return nil, ErrInvalidToken
	}

	return &ValidationResult{
		Valid:     true,
		Subject:   claims.Subject,
		StableID:  claims.Data.UUID,
		NotBefore: claims.NotBefore.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Name returns provider name for logging
func (p *LocalTokenProvider) Name() string {
	return "local"
}
