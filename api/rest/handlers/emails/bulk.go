package emails

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	apierrors "github.com/customeros/maildesk/api/errors"
	"github.com/customeros/maildesk/internal/enum"
	"github.com/customeros/maildesk/internal/tracing"
)

func (h *EmailsHandler) DeleteMany() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.DeleteMany")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		ids, ok := h.bindIDs(c, span)
		if !ok {
			return
		}

		count, err := h.emailService.DeleteMany(ctx, ids)
		if err != nil {
			h.respondWithError(c, span, "Delete emails", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("%d emails deleted", count),
			"count":   count,
		})
	}
}

func (h *EmailsHandler) MarkRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.MarkRead")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		ids, ok := h.bindIDs(c, span)
		if !ok {
			return
		}

		count, err := h.emailService.MarkRead(ctx, ids)
		if err != nil {
			h.respondWithError(c, span, "Mark emails read", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("%d emails marked as read", count),
			"count":   count,
		})
	}
}

func (h *EmailsHandler) MoveToFolder() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.MoveToFolder")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request moveRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			h.respondWithBindError(c, span, err)
			return
		}

		errs := apierrors.NewMultiErrors()
		if request.IDs == nil {
			errs.Add("ids", "must be a list of email ids", nil)
		}
		if request.Folder == nil {
			errs.Add("folder", "is required", nil)
		}
		if errs.HasErrors() {
			tracing.TraceErr(span, errs)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": apierrors.MessageInvalidRequestFormat, "details": errs.Error()})
			return
		}

		folder := enum.Folder(*request.Folder)
		count, err := h.emailService.MoveToFolder(ctx, *request.IDs, folder)
		if err != nil {
			h.respondWithError(c, span, "Move emails", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("%d emails moved to %s", count, folder),
			"count":   count,
		})
	}
}

// bindIDs decodes an {"ids": [...]} body. It writes the 400 itself and reports false
// when the body is unusable.
func (h *EmailsHandler) bindIDs(c *gin.Context, span opentracing.Span) ([]string, bool) {
	var request idsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.respondWithBindError(c, span, err)
		return nil, false
	}
	if request.IDs == nil {
		h.respondWithBadRequest(c, span, apierrors.MessageInvalidRequestFormat, nil)
		return nil, false
	}
	return *request.IDs, true
}
