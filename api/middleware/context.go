package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/customeros/maildesk/internal/utils"
)

const RequestIDHeader = "X-Request-ID"

// CustomContextMiddleware stores the app source and request id on the request context
// and echoes the request id back to the caller.
func CustomContextMiddleware(appSource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)

		ctx := utils.WithCustomContext(c.Request.Context(), &utils.CustomContext{
			AppSource: appSource,
			RequestID: requestID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
