package handlers

import (
	"errors"
	"net/http"

	"github.com/ldapgate/ldapgate/internal/middleware"
	"github.com/ldapgate/ldapgate/internal/services"
	"github.com/ldapgate/ldapgate/internal/store"

	"github.com/gin-gonic/gin"
)

type IdentityHandler struct {
	loginService *services.LoginService
}

func NewIdentityHandler(ls *services.LoginService) *IdentityHandler {
	return &IdentityHandler{
		loginService: ls,
	}
}

// WhoAmI returns the stored identity behind the bearer token on the
// request. Must run behind middleware.RequireAuth.
func (h *IdentityHandler) WhoAmI(c *gin.Context) {
	stableID := c.GetString(middleware.ContextStableID)
	if stableID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "unauthorized",
		})
		return
	}

	identity, err := h.loginService.GetIdentityByStableID(stableID)
	if err != nil {
		// A valid token whose identity row is gone means the account
		// was removed after issuance.
		if errors.Is(err, store.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "identity not found",
			})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": msgServiceUnavailable,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stable_id":    identity.StableID,
		"username":     identity.Username,
		"email":        identity.Email,
		"display_name": identity.DisplayName,
		"created_at":   identity.CreatedAt,
	})
}
