package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	er "github.com/customeros/maildesk/internal/errors"
	"github.com/customeros/maildesk/internal/tracing"
)

const (
	MessageNotFound              = "Not found"
	MessageInvalidRequestFormat  = "Invalid request format"
	MessageInternalServerError   = "Internal server error"
	MessageRequestEntityTooLarge = "Request entity too large"
)

// StatusFor maps an error to the HTTP status of its kind.
func StatusFor(err error) int {
	switch {
	case er.IsNotFound(err):
		return http.StatusNotFound
	case er.IsInvalidInput(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// MessageFor returns the client-facing message for err. Persistence and internal
// failures never leak their cause.
func MessageFor(err error) string {
	if msg, ok := er.ClientMessage(err); ok {
		return msg
	}

	switch er.Kind(err) {
	case er.KindNotFound:
		if errors.Is(err, er.ErrAttachmentNotFound) {
			return "Attachment not found"
		}
		return "Email not found"
	case er.KindInvalidInput:
		if errors.Is(err, er.ErrInvalidFilename) {
			return "Invalid filename"
		}
		return err.Error()
	case er.KindTransport:
		return "Failed to send email: " + err.Error()
	default:
		return MessageInternalServerError
	}
}

// RespondWithError writes the JSON error body for err and returns the status used.
func RespondWithError(c *gin.Context, span opentracing.Span, err error) int {
	tracing.TraceErr(span, err)
	status := StatusFor(err)
	c.AbortWithStatusJSON(status, gin.H{"error": MessageFor(err)})
	return status
}
