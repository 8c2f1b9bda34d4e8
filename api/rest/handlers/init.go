package handlers

import (
	"github.com/customeros/maildesk/api/rest/handlers/attachments"
	"github.com/customeros/maildesk/api/rest/handlers/emails"
	"github.com/customeros/maildesk/internal/logger"
	"github.com/customeros/maildesk/internal/repository"
	"github.com/customeros/maildesk/services"
)

type APIHandlers struct {
	Emails      *emails.EmailsHandler
	Attachments *attachments.AttachmentsHandler
}

func InitHandlers(s *services.Services, repos *repository.Repositories, log logger.Logger) *APIHandlers {
	return &APIHandlers{
		Emails:      emails.NewEmailsHandler(s.EmailService, log),
		Attachments: attachments.NewAttachmentsHandler(repos.AttachmentRepository, log),
	}
}
