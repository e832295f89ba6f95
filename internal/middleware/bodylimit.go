package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodyLimit caps request body size at maxBytes. Requests whose declared
// Content-Length already exceeds the cap are rejected with 413 before any
// processing begins; for the rest, the body reader enforces the cap while
// the request is consumed.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	msg := fmt.Sprintf("File too large. Maximum size is %dMB", maxBytes/(1024*1024))
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": msg,
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
