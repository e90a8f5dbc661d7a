package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(perMinute, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(PerIPRateLimit(perMinute, burst))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func get(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestPerIPRateLimit(t *testing.T) {
	r := newLimitedRouter(60, 2)

	assert.Equal(t, http.StatusOK, get(r, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.1"))
	// Burst exhausted.
	assert.Equal(t, http.StatusTooManyRequests, get(r, "10.0.0.1"))
}

func TestPerIPRateLimitIsolatesClients(t *testing.T) {
	r := newLimitedRouter(60, 1)

	assert.Equal(t, http.StatusOK, get(r, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, get(r, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.2"))
}

func TestPerIPRateLimitDisabled(t *testing.T) {
	r := newLimitedRouter(0, 0)

	for range 20 {
		assert.Equal(t, http.StatusOK, get(r, "10.0.0.1"))
	}
}
