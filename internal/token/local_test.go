package token

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateTestKeys(t *testing.T) (ed25519.PrivateKey, ed25519.PublicKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return priv, pub
}

func newTestProvider(t *testing.T, expiration time.Duration) *LocalTokenProvider {
	t.Helper()
	priv, pub := generateTestKeys(t)
	return NewLocalTokenProvider(priv, pub, expiration)
}

func TestIssueAndValidate(t *testing.T) {
	provider := newTestProvider(t, time.Hour)
	ctx := context.Background()

	before := time.Now()
	result, err := provider.Issue(ctx, "jdoe", "a3f9e8d2-1111-2222-3333-444455556666")
	require.NoError(t, err)
	after := time.Now()

	assert.True(t, result.Success)
	assert.Equal(t, TokenTypeBearer, result.TokenType)
	assert.NotEmpty(t, result.TokenString)

	// The validity window opens now and spans exactly the configured TTL
	assert.False(t, result.NotBefore.Before(before.Truncate(time.Second)))
	assert.False(t, result.NotBefore.After(after))
	assert.Equal(t, time.Hour, result.ExpiresAt.Sub(result.NotBefore))

	validation, err := provider.Validate(ctx, result.TokenString)
	require.NoError(t, err)
	assert.True(t, validation.Valid)
	assert.Equal(t, "jdoe", validation.Subject)
	assert.Equal(t, "a3f9e8d2-1111-2222-3333-444455556666", validation.StableID)
	assert.Equal(t, result.NotBefore.Unix(), validation.NotBefore.Unix())
	assert.Equal(t, result.ExpiresAt.Unix(), validation.ExpiresAt.Unix())
}

func TestIssueUsesEdDSA(t *testing.T) {
	provider := newTestProvider(t, time.Hour)

	result, err := provider.Issue(context.Background(), "jdoe", "stable-id")
	require.NoError(t, err)

	parts := strings.Split(result.TokenString, ".")
	require.Len(t, parts, 3)

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	var header map[string]any
	require.NoError(t, json.Unmarshal(headerJSON, &header))
	assert.Equal(t, "EdDSA", header["alg"])

	// The stable ID rides inside the nested data claim
	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var payload struct {
		Sub  string `json:"sub"`
		Nbf  int64  `json:"nbf"`
		Exp  int64  `json:"exp"`
		Data struct {
			UUID string `json:"uuid"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payloadJSON, &payload))
	assert.Equal(t, "jdoe", payload.Sub)
	assert.Equal(t, "stable-id", payload.Data.UUID)
	assert.Equal(t, int64(3600), payload.Exp-payload.Nbf)
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	provider := newTestProvider(t, time.Hour)
	ctx := context.Background()

	result, err := provider.Issue(ctx, "jdoe", "stable-id")
	require.NoError(t, err)

	// Swap the subject in the payload; the signature no longer matches
	parts := strings.Split(result.TokenString, ".")
	require.Len(t, parts, 3)
	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	tampered := strings.Replace(string(payloadJSON), "jdoe", "root", 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(tampered))

	_, err = provider.Validate(ctx, strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsForeignKey(t *testing.T) {
	issuer := newTestProvider(t, time.Hour)
	verifier := newTestProvider(t, time.Hour)
	ctx := context.Background()

	result, err := issuer.Issue(ctx, "jdoe", "stable-id")
	require.NoError(t, err)

	_, err = verifier.Validate(ctx, result.TokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	priv, pub := generateTestKeys(t)
	provider := NewLocalTokenProvider(priv, pub, time.Hour)

	claims := Claims{
		Data: TokenData{UUID: "stable-id"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "jdoe",
			NotBefore: jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	tokenString, err := tok.SignedString(priv)
	require.NoError(t, err)

	_, err = provider.Validate(context.Background(), tokenString)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRejectsWrongSigningMethod(t *testing.T) {
	provider := newTestProvider(t, time.Hour)

	claims := Claims{
		Data: TokenData{UUID: "stable-id"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "jdoe",
			NotBefore: jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := tok.SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = provider.Validate(context.Background(), tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsMissingClaims(t *testing.T) {
	priv, pub := generateTestKeys(t)
	provider := NewLocalTokenProvider(priv, pub, time.Hour)

	// Well-signed token without the data claim
	claims := jwt.RegisteredClaims{
		Subject:   "jdoe",
		NotBefore: jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	tokenString, err := tok.SignedString(priv)
	require.NoError(t, err)

	_, err = provider.Validate(context.Background(), tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewLocalTokenProviderFromFiles(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	require.NoError(t, os.WriteFile(privPath, pem.EncodeToMemory(
		&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}), 0o600))
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(
		&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}), 0o644))

	provider, err := NewLocalTokenProviderFromFiles(privPath, pubPath, 30*time.Minute)
	require.NoError(t, err)

	ctx := context.Background()
	result, err := provider.Issue(ctx, "jdoe", "stable-id")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, result.ExpiresAt.Sub(result.NotBefore))

	validation, err := provider.Validate(ctx, result.TokenString)
	require.NoError(t, err)
	assert.True(t, validation.Valid)
	assert.Equal(t, "jdoe", validation.Subject)
}

func TestNewLocalTokenProviderFromFilesMissing(t *testing.T) {
	_, err := NewLocalTokenProviderFromFiles(
		"/nonexistent/private.pem",
		"/nonexistent/public.pem",
		time.Hour,
	)
	assert.Error(t, err)
}
