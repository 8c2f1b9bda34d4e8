package emails

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/customeros/maildesk/internal/models"
	"github.com/customeros/maildesk/internal/tracing"
)

// Update applies a folder, starred or read patch to one email.
func (h *EmailsHandler) Update() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.Update")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)
		id := c.Param("id")
		tracing.TagEntity(span, id)

		if c.ContentType() != gin.MIMEJSON {
			h.respondWithBadRequest(c, span, "Content-Type must be application/json", nil)
			return
		}

		var patch models.EmailPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			h.respondWithBindError(c, span, err)
			return
		}

		email, err := h.emailService.Update(ctx, id, patch)
		if err != nil {
			h.respondWithError(c, span, "Update email", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Email updated",
			"email":   email,
		})
	}
}

func (h *EmailsHandler) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.Delete")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)
		id := c.Param("id")
		tracing.TagEntity(span, id)

		if err := h.emailService.Delete(ctx, id); err != nil {
			h.respondWithError(c, span, "Delete email", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Email deleted"})
	}
}

func (h *EmailsHandler) ToggleStar() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.ToggleStar")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)
		id := c.Param("id")
		tracing.TagEntity(span, id)

		starred, err := h.emailService.ToggleStar(ctx, id)
		if err != nil {
			h.respondWithError(c, span, "Toggle star", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":  "Star toggled",
			"starred":  starred,
			"email_id": id,
		})
	}
}
