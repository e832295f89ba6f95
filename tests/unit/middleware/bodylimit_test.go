package middleware_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"invoicereader/internal/middleware"
)

func TestBodyLimit_RejectsOversizedDeclaredLength(t *testing.T) {
	r := gin.New()
	r.Use(middleware.BodyLimit(1024))
	r.POST("/upload", func(c *gin.Context) { c.Status(http.StatusOK) })

	body := bytes.Repeat([]byte("a"), 2048)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upload", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "File too large")
}

func TestBodyLimit_MessageReflectsConfiguredLimit(t *testing.T) {
	r := gin.New()
	r.Use(middleware.BodyLimit(16 * 1024 * 1024))
	r.POST("/upload", func(c *gin.Context) { c.Status(http.StatusOK) })

	body := bytes.Repeat([]byte("a"), 16*1024*1024+1)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upload", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "Maximum size is 16MB")
}

func TestBodyLimit_AllowsSmallBody(t *testing.T) {
	r := gin.New()
	r.Use(middleware.BodyLimit(1024))
	r.POST("/upload", func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		assert.NoError(t, err)
		c.String(http.StatusOK, "%d", len(data))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upload", bytes.NewReader([]byte("small")))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Body.String())
}

func TestRequestID_GeneratedWhenMissing(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	r.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID_Propagated(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("X-Request-ID", "req-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}
