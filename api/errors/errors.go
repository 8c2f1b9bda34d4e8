package errors

import (
	"fmt"
	"strings"
)

// MultiErrors collects request validation failures per field, in the order they
// were found.
type MultiErrors struct {
	Errors map[string][]ErrorInfo `json:"errors"`
	keys   []string
}

type ErrorInfo struct {
	Message  string `json:"message"`
	RawError error  `json:"-"`
}

func NewMultiErrors() *MultiErrors {
	return &MultiErrors{
		Errors: make(map[string][]ErrorInfo),
	}
}

func (e *MultiErrors) Add(key, message string, err error) {
	if _, ok := e.Errors[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.Errors[key] = append(e.Errors[key], ErrorInfo{
		Message:  message,
		RawError: err,
	})
}

func (e *MultiErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *MultiErrors) Error() string {
	var parts []string
	for _, field := range e.keys {
		for _, err := range e.Errors[field] {
			parts = append(parts, fmt.Sprintf("%s: %s", field, err.Message))
		}
	}
	return strings.Join(parts, " | ")
}
