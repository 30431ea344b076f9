package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSetAndGetIPContext(t *testing.T) {
	ctx := SetIPContext(context.Background(), "192.168.1.1")
	assert.Equal(t, "192.168.1.1", GetIPFromContext(ctx))

	// Empty IP leaves the context unchanged
	ctx = SetIPContext(context.Background(), "")
	assert.Equal(t, "", GetIPFromContext(ctx))
}

func TestGetIPFromBareContext(t *testing.T) {
	assert.Equal(t, "", GetIPFromContext(context.Background()))
}

func TestIPMiddlewarePropagatesToRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IPMiddleware())

	var fromRequestCtx string
	r.GET("/", func(c *gin.Context) {
		fromRequestCtx = GetIPFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "203.0.113.7", fromRequestCtx)
}
