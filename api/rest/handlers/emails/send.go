package emails

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	apierrors "github.com/customeros/maildesk/api/errors"
	"github.com/customeros/maildesk/dto"
	"github.com/customeros/maildesk/internal/tracing"
)

// Send handles the multipart request to deliver a new email
func (h *EmailsHandler) Send() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.Send")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		if c.ContentType() != gin.MIMEMultipartPOSTForm {
			h.respondWithBadRequest(c, span, "Content-Type must be multipart/form-data", nil)
			return
		}

		input := dto.SendEmailInput{
			To:      c.PostForm("to"),
			Subject: c.PostForm("subject"),
			Body:    c.PostForm("body"),
		}

		errs := apierrors.NewMultiErrors()
		if input.To == "" {
			errs.Add("to", "is required", nil)
		}
		if input.Subject == "" {
			errs.Add("subject", "is required", nil)
		}
		if input.Body == "" {
			errs.Add("body", "is required", nil)
		}
		if errs.HasErrors() {
			tracing.TraceErr(span, errs)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "Missing required fields (to, subject, or body)",
				"details": errs.Error(),
			})
			return
		}

		uploads, closeUploads, err := h.openUploads(c)
		if err != nil {
			h.respondWithBindError(c, span, err)
			return
		}
		defer closeUploads()

		email, err := h.emailService.Send(ctx, input, uploads)
		if err != nil {
			h.respondWithError(c, span, "Send email", err)
			return
		}
		tracing.TagEntity(span, email.ID)

		c.JSON(http.StatusOK, gin.H{
			"message": "Email sent successfully",
			"email":   email,
		})
	}
}
