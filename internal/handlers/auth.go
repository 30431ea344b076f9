package handlers

import (
	"errors"
	"net/http"

	"github.com/ldapgate/ldapgate/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	msgMissingCredentials = "Must provide username and password"
	msgBadCredentials     = "Bad username or password"
	msgServiceUnavailable = "Login service unavailable. Try again in a few minutes. " +
		"If issue persists please contact the System Administrator"
)

type AuthHandler struct {
	loginService *services.LoginService
}

func NewAuthHandler(ls *services.LoginService) *AuthHandler {
	return &AuthHandler{
		loginService: ls,
	}
}

// loginRequest is the JSON body accepted by the login endpoint
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies the supplied credentials against the directory and
// returns a signed bearer token on success. The response body is the
// raw token string so that non-JSON clients can consume it directly.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": msgMissingCredentials,
		})
		return
	}

	result, err := h.loginService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": msgMissingCredentials,
			})
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusForbidden, gin.H{
				"error": msgBadCredentials,
			})
		default:
			// Infrastructure failures are collapsed into a single retryable
			// message so callers learn nothing about internal topology.
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": msgServiceUnavailable,
			})
		}
		return
	}

	c.String(http.StatusOK, result.Token)
}
