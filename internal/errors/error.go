package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// not found
	ErrEmailNotFound      = errors.New("email not found")
	ErrAttachmentNotFound = errors.New("attachment not found")

	// invalid input
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidFolder       = errors.New("invalid folder")
	ErrMissingExtension    = errors.New("file has no extension")
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	ErrUnsafeFilename      = errors.New("unsafe filename")
	ErrInvalidFilename     = errors.New("invalid filename")

	// infrastructure
	ErrPersistence = errors.New("persistence failure")
	ErrTransport   = errors.New("mail transport failure")
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindInvalidInput
	KindPersistence
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindPersistence:
		return "persistence_failure"
	case KindTransport:
		return "transport_failure"
	default:
		return "internal"
	}
}

var invalidInputErrors = []error{
	ErrInvalidInput,
	ErrInvalidFolder,
	ErrMissingExtension,
	ErrExtensionNotAllowed,
	ErrUnsafeFilename,
	ErrInvalidFilename,
}

// Kind classifies err by the sentinel it wraps.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindInternal
	}
	if errors.Is(err, ErrEmailNotFound) || errors.Is(err, ErrAttachmentNotFound) {
		return KindNotFound
	}
	for _, target := range invalidInputErrors {
		if errors.Is(err, target) {
			return KindInvalidInput
		}
	}
	if errors.Is(err, ErrPersistence) {
		return KindPersistence
	}
	if errors.Is(err, ErrTransport) {
		return KindTransport
	}
	return KindInternal
}

func IsNotFound(err error) bool {
	return Kind(err) == KindNotFound
}

func IsInvalidInput(err error) bool {
	return Kind(err) == KindInvalidInput
}

// clientError carries a message that is safe to return to API clients while still
// matching its sentinel with errors.Is.
type clientError struct {
	cause error
	msg   string
}

func (e *clientError) Error() string {
	return e.msg
}

func (e *clientError) Unwrap() error {
	return e.cause
}

func NewClientError(cause error, msg string) error {
	return &clientError{cause: cause, msg: msg}
}

func ClientErrorf(cause error, format string, args ...interface{}) error {
	return &clientError{cause: cause, msg: fmt.Sprintf(format, args...)}
}

// ClientMessage returns the client-facing message carried by err, if any.
func ClientMessage(err error) (string, bool) {
	var ce *clientError
	if errors.As(err, &ce) {
		return ce.msg, true
	}
	return "", false
}
