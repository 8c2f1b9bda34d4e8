package emails

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/customeros/maildesk/dto"
	"github.com/customeros/maildesk/internal/enum"
	"github.com/customeros/maildesk/internal/models"
	"github.com/customeros/maildesk/internal/tracing"
)

// Create stores a new email from a JSON body or a multipart form with attachments.
func (h *EmailsHandler) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.Create")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var (
			input   dto.CreateEmailInput
			uploads []models.Upload
		)

		switch c.ContentType() {
		case gin.MIMEJSON:
			if err := c.ShouldBindJSON(&input); err != nil {
				h.respondWithBindError(c, span, err)
				return
			}
		case gin.MIMEMultipartPOSTForm:
			opened, closeUploads, err := h.openUploads(c)
			if err != nil {
				h.respondWithBindError(c, span, err)
				return
			}
			defer closeUploads()
			uploads = opened
			input = createInputFromForm(c)
		default:
			h.respondWithBadRequest(c, span, "Content-Type must be application/json or multipart/form-data", nil)
			return
		}

		email, err := h.emailService.Create(ctx, input, uploads)
		if err != nil {
			h.respondWithError(c, span, "Create email", err)
			return
		}
		tracing.TagEntity(span, email.ID)

		c.JSON(http.StatusCreated, gin.H{
			"message": "Email saved",
			"email":   email,
		})
	}
}

// createInputFromForm reads the text fields of a multipart create. starred is true
// only for a case-insensitive "true".
func createInputFromForm(c *gin.Context) dto.CreateEmailInput {
	return dto.CreateEmailInput{
		From:    c.PostForm("from"),
		To:      c.PostForm("to"),
		Subject: c.PostForm("subject"),
		Body:    c.PostForm("body"),
		Folder:  enum.Folder(c.PostForm("folder")),
		Starred: strings.ToLower(c.PostForm("starred")) == "true",
	}
}
