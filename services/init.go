package services

import (
	"github.com/customeros/maildesk/config"
	"github.com/customeros/maildesk/interfaces"
	"github.com/customeros/maildesk/internal/logger"
	"github.com/customeros/maildesk/internal/repository"
	"github.com/customeros/maildesk/services/email"
	"github.com/customeros/maildesk/services/events"
	"github.com/customeros/maildesk/services/smtp"
)

type Services struct {
	EventsService     *events.EventsService
	MailSender        interfaces.MailSender
	EmailService      interfaces.EmailService
	AttachmentSweeper interfaces.AttachmentSweeper
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	eventsService, err := events.NewEventsService(cfg.AppConfig.RabbitMQURL, log, events.DefaultPublisherConfig())
	if err != nil {
		return nil, err
	}

	mailSender := smtp.NewSMTPClient(cfg.SMTPConfig)

	services := Services{
		EventsService:     eventsService,
		MailSender:        mailSender,
		EmailService:      email.NewEmailService(repos, mailSender, eventsService.Publisher, log),
		AttachmentSweeper: email.NewAttachmentSweeper(repos, cfg.CronConfig.AttachmentSweepGracePeriod, log),
	}

	return &services, nil
}
