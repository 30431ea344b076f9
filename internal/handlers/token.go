package handlers

import (
	"net/http"
	"strings"

	"github.com/ldapgate/ldapgate/internal/config"
	"github.com/ldapgate/ldapgate/internal/core"

	"github.com/gin-gonic/gin"
)

type TokenHandler struct {
	tokenProvider core.TokenProvider
	metrics       core.Recorder
	config        *config.Config
}

func NewTokenHandler(tp core.TokenProvider, metrics core.Recorder, cfg *config.Config) *TokenHandler {
	return &TokenHandler{
		tokenProvider: tp,
		metrics:       metrics,
		config:        cfg,
	}
}

// TokenInfo verifies a bearer token and reports its claims (RFC 7662 style
// introspection). Invalid or expired tokens answer 401 without detail about
// which check failed.
func (h *TokenHandler) TokenInfo(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing_token",
		})
		return
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	result, err := h.tokenProvider.Validate(c.Request.Context(), tokenString)
	if err != nil || !result.Valid {
		h.metrics.RecordTokenValidation("rejected")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid_token",
		})
		return
	}

	h.metrics.RecordTokenValidation("accepted")
	c.JSON(http.StatusOK, gin.H{
		"active":    result.Valid,
		"sub":       result.Subject,
		"stable_id": result.StableID,
		"nbf":       result.NotBefore.Unix(),
		"exp":       result.ExpiresAt.Unix(),
		"iss":       h.config.BaseURL,
	})
}
