package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/customeros/maildesk/api/errors"
)

// BodyLimitMiddleware rejects requests whose body is larger than limit bytes.
func BodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": apierrors.MessageRequestEntityTooLarge,
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
