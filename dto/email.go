package dto

import "github.com/customeros/maildesk/internal/enum"

// CreateEmailInput is a new record as submitted by a client. Attachments lists blob
// names that already exist in the attachments directory.
type CreateEmailInput struct {
	From        string      `json:"from" form:"from"`
	To          string      `json:"to" form:"to"`
	Subject     string      `json:"subject" form:"subject"`
	Body        string      `json:"body" form:"body"`
	Folder      enum.Folder `json:"folder" form:"folder"`
	Starred     bool        `json:"starred" form:"starred"`
	Attachments []string    `json:"attachments" form:"-"`
}

type SendEmailInput struct {
	To      string `json:"to" form:"to"`
	Subject string `json:"subject" form:"subject"`
	Body    string `json:"body" form:"body"`
}

// EmailEvent is published after a record changes.
type EmailEvent struct {
	EmailIds []string    `json:"emailIds"`
	Folder   enum.Folder `json:"folder,omitempty"`
	Count    int         `json:"count"`
}
