package middleware

import (
	"net/http"
	"strings"

	"github.com/ldapgate/ldapgate/internal/core"

	"github.com/gin-gonic/gin"
)

const (
	// ContextSubject is the gin context key holding the authenticated username.
	ContextSubject = "auth_subject"
	// ContextStableID is the gin context key holding the authenticated stable identifier.
	ContextStableID = "auth_stable_id"
)

// RequireAuth is a middleware that requires a valid bearer token
func RequireAuth(tokenProvider core.TokenProvider, metrics core.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.Header("WWW-Authenticate", `Bearer realm="Restricted"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Bearer token required",
			})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		validation, err := tokenProvider.Validate(c.Request.Context(), tokenString)
		if err != nil || !validation.Valid {
			metrics.RecordTokenValidation("rejected")
			c.Header("WWW-Authenticate", `Bearer realm="Restricted"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid or expired token",
			})
			return
		}

		metrics.RecordTokenValidation("accepted")
		c.Set(ContextSubject, validation.Subject)
		c.Set(ContextStableID, validation.StableID)
		c.Next()
	}
}
