package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ldapgate/ldapgate/internal/core"
	"github.com/ldapgate/ldapgate/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// stubTokenProvider accepts exactly one token string
type stubTokenProvider struct {
	accepted string
	subject  string
	stableID string
}

func (s *stubTokenProvider) Issue(ctx context.Context, username, stableID string) (*core.TokenResult, error) {
	return nil, errors.New("not implemented")
}

func (s *stubTokenProvider) Validate(ctx context.Context, tokenString string) (*core.TokenValidationResult, error) {
	if tokenString != s.accepted {
		return nil, errors.New("invalid token")
	}
	return &core.TokenValidationResult{
		Valid:     true,
		Subject:   s.subject,
		StableID:  s.stableID,
		NotBefore: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (s *stubTokenProvider) Name() string { return "stub" }

func protectedRouter(tp core.TokenProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", RequireAuth(tp, &metrics.NoopMetrics{}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"subject":   c.GetString(ContextSubject),
			"stable_id": c.GetString(ContextStableID),
		})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	provider := &stubTokenProvider{
		accepted: "good-token",
		subject:  "jdoe",
		stableID: "stable-id",
	}

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic dGVzdDp0ZXN0", http.StatusUnauthorized},
		{"invalid token", "Bearer bad-token", http.StatusUnauthorized},
		{"valid token", "Bearer good-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := protectedRouter(provider)

			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Contains(t, w.Body.String(), "jdoe")
				assert.Contains(t, w.Body.String(), "stable-id")
			}
		})
	}
}
