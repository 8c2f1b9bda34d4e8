package emails

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	apierrors "github.com/customeros/maildesk/api/errors"
	"github.com/customeros/maildesk/interfaces"
	"github.com/customeros/maildesk/internal/logger"
	"github.com/customeros/maildesk/internal/tracing"
)

type EmailsHandler struct {
	emailService interfaces.EmailService
	log          logger.Logger
}

func NewEmailsHandler(emailService interfaces.EmailService, log logger.Logger) *EmailsHandler {
	return &EmailsHandler{
		emailService: emailService,
		log:          log,
	}
}

// idsRequest is the body of the bulk endpoints. A nil IDs means the key was missing.
type idsRequest struct {
	IDs *[]string `json:"ids"`
}

type moveRequest struct {
	IDs    *[]string `json:"ids"`
	Folder *string   `json:"folder"`
}

func (h *EmailsHandler) respondWithError(c *gin.Context, span opentracing.Span, operation string, err error) {
	status := apierrors.RespondWithError(c, span, err)
	if status >= http.StatusInternalServerError {
		h.log.Errorf("%s failed: %v", operation, err)
	}
}

func (h *EmailsHandler) respondWithBadRequest(c *gin.Context, span opentracing.Span, message string, err error) {
	if err == nil {
		err = errors.New(message)
	}
	tracing.TraceErr(span, err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}

// respondWithBindError reports a body that could not be decoded. Oversized bodies get a 413.
func (h *EmailsHandler) respondWithBindError(c *gin.Context, span opentracing.Span, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		tracing.TraceErr(span, err)
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": apierrors.MessageRequestEntityTooLarge})
		return
	}
	h.respondWithBadRequest(c, span, apierrors.MessageInvalidRequestFormat, err)
}
