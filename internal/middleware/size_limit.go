package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SizeLimit function is a middleware that rejects request bodies larger than
// maxBodyBytes. Oversized bodies trigger http.MaxBytesError, which surfaces
// as 413 request entity too large.
func SizeLimit(maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

		c.Next()
	}
}
