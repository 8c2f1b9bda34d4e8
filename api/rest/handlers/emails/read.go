package emails

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/customeros/maildesk/internal/enum"
	"github.com/customeros/maildesk/internal/tracing"
)

// List returns all emails, optionally restricted to the folder query parameter.
func (h *EmailsHandler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.List")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var folder *enum.Folder
		if value, ok := c.GetQuery("folder"); ok && value != "" {
			f := enum.Folder(value)
			folder = &f
		}

		emails, err := h.emailService.List(ctx, folder)
		if err != nil {
			h.respondWithError(c, span, "List emails", err)
			return
		}

		c.JSON(http.StatusOK, emails)
	}
}

// Get returns one email and marks it as read.
func (h *EmailsHandler) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.Get")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)
		id := c.Param("id")
		tracing.TagEntity(span, id)

		email, err := h.emailService.Get(ctx, id)
		if err != nil {
			h.respondWithError(c, span, "Get email", err)
			return
		}

		c.JSON(http.StatusOK, email)
	}
}
