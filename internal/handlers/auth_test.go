package handlers

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ldapgate/ldapgate/internal/core"
	"github.com/ldapgate/ldapgate/internal/metrics"
	"github.com/ldapgate/ldapgate/internal/services"
	"github.com/ldapgate/ldapgate/internal/store"
	"github.com/ldapgate/ldapgate/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	status      core.AuthStatus
	displayName string
	email       string
	err         error
	calls       int
}

func (s *stubAuthenticator) Authenticate(
	ctx context.Context,
	username, password string,
) (*core.AuthResult, error) {
	s.calls++
	return &core.AuthResult{
		Status:      s.status,
		Username:    username,
		DisplayName: s.displayName,
		Email:       s.email,
	}, s.err
}

func (s *stubAuthenticator) Name() string { return "stub" }

var handlerStoreSeq int

func newHandlerTestStore(t *testing.T) *store.Store {
	t.Helper()
	handlerStoreSeq++
	dsn := fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", handlerStoreSeq)
	s, err := store.New(context.Background(), "sqlite", dsn)
	require.NoError(t, err)
	return s
}

func newHandlerTokenProvider(t *testing.T) *token.LocalTokenProvider {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return token.NewLocalTokenProvider(priv, pub, time.Hour)
}

func setupLoginRouter(t *testing.T, auth core.DirectoryAuthenticator, tp core.TokenProvider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := newHandlerTestStore(t)
	auditService := services.NewAuditService(s, false, 10)
	loginService := services.NewLoginService(s, auth, tp, auditService, &metrics.NoopMetrics{})

	r := gin.New()
	r.POST("/login", NewAuthHandler(loginService).Login)
	return r
}

func postLogin(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["error"]
}

func TestLoginMissingCredentials(t *testing.T) {
	auth := &stubAuthenticator{status: core.StatusSuccess}
	r := setupLoginRouter(t, auth, newHandlerTokenProvider(t))

	cases := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing password", `{"username":"jdoe"}`},
		{"missing username", `{"password":"hunter2"}`},
		{"malformed JSON", `{"username":`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postLogin(r, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, msgMissingCredentials, errorBody(t, w))
		})
	}

	// Incomplete requests never reach the directory
	assert.Equal(t, 0, auth.calls)
}

func TestLoginRejectedCredentials(t *testing.T) {
	auth := &stubAuthenticator{
		status: core.StatusCredentialsRejected,
		err:    errors.New("verification bind failed"),
	}
	r := setupLoginRouter(t, auth, newHandlerTokenProvider(t))

	w := postLogin(r, `{"username":"jdoe","password":"wrong"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, msgBadCredentials, errorBody(t, w))
}

func TestLoginDirectoryDown(t *testing.T) {
	auth := &stubAuthenticator{
		status: core.StatusUnavailable,
		err:    errors.New("connection refused"),
	}
	r := setupLoginRouter(t, auth, newHandlerTokenProvider(t))

	w := postLogin(r, `{"username":"jdoe","password":"hunter2"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, msgServiceUnavailable, errorBody(t, w))
}

func TestLoginSuccessReturnsToken(t *testing.T) {
	auth := &stubAuthenticator{
		status:      core.StatusSuccess,
		displayName: "Jamie Doe",
		email:       "jdoe@example.com",
	}
	provider := newHandlerTokenProvider(t)
	r := setupLoginRouter(t, auth, provider)

	w := postLogin(r, `{"username":"jdoe","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// The body is the raw token string
	tokenString := w.Body.String()
	validation, err := provider.Validate(context.Background(), tokenString)
	require.NoError(t, err)
	assert.True(t, validation.Valid)
	assert.Equal(t, "jdoe", validation.Subject)
	assert.NotEmpty(t, validation.StableID)
}
