package attachments

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	apierrors "github.com/customeros/maildesk/api/errors"
	"github.com/customeros/maildesk/interfaces"
	"github.com/customeros/maildesk/internal/logger"
	"github.com/customeros/maildesk/internal/tracing"
)

const contentTypeOctetStream = "application/octet-stream"

type AttachmentsHandler struct {
	attachments interfaces.AttachmentRepository
	log         logger.Logger
}

func NewAttachmentsHandler(attachments interfaces.AttachmentRepository, log logger.Logger) *AttachmentsHandler {
	return &AttachmentsHandler{
		attachments: attachments,
		log:         log,
	}
}

// Download streams a stored attachment under its display name.
func (h *AttachmentsHandler) Download() gin.HandlerFunc {
	return h.serve("AttachmentsHandler.Download", "attachment", false)
}

// Preview streams a stored attachment inline with its content type.
func (h *AttachmentsHandler) Preview() gin.HandlerFunc {
	return h.serve("AttachmentsHandler.Preview", "inline", true)
}

func (h *AttachmentsHandler) serve(operation, disposition string, typed bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), operation)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)
		filename := c.Param("filename")
		tracing.TagEntity(span, filename)

		file, err := h.attachments.Resolve(ctx, filename)
		if err != nil {
			h.respondWithError(c, span, err)
			return
		}

		reader, err := h.attachments.Open(ctx, file.StoredName)
		if err != nil {
			h.respondWithError(c, span, err)
			return
		}
		defer reader.Close()

		contentType := contentTypeOctetStream
		if typed {
			contentType = file.ContentType
		}

		c.DataFromReader(http.StatusOK, file.Size, contentType, reader, map[string]string{
			"Content-Disposition": mime.FormatMediaType(disposition, map[string]string{"filename": file.DisplayName}),
		})
	}
}

func (h *AttachmentsHandler) respondWithError(c *gin.Context, span opentracing.Span, err error) {
	if status := apierrors.RespondWithError(c, span, err); status >= http.StatusInternalServerError {
		h.log.Errorf("Serving attachment failed: %v", err)
	}
}
