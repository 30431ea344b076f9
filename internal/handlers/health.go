package handlers

import (
	"net/http"

	"github.com/ldapgate/ldapgate/internal/store"
	"github.com/ldapgate/ldapgate/internal/version"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	store *store.Store
}

func NewHealthHandler(s *store.Store) *HealthHandler {
	return &HealthHandler{
		store: s,
	}
}

// Health reports readiness. The directory is deliberately not probed
// here so a flapping directory does not take the whole service out of
// rotation; login answers 503 on its own when the directory is down.
func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.store.Health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.Version,
	})
}
