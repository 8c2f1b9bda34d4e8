package email

import (
	"bytes"
	"context"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/maildesk/dto"
	"github.com/customeros/maildesk/interfaces"
	"github.com/customeros/maildesk/internal/enum"
	er "github.com/customeros/maildesk/internal/errors"
	"github.com/customeros/maildesk/internal/models"
	"github.com/customeros/maildesk/internal/tracing"
	"github.com/customeros/maildesk/internal/utils"
)

// Send delivers a message from the default sender and records it in the sent folder.
// A message addressed to the default sender also gets an unread inbox copy.
func (s *emailService) Send(ctx context.Context, input dto.SendEmailInput, uploads []models.Upload) (*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailService.Send")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("to", input.To, "subject", input.Subject)

	if input.To == "" || input.Subject == "" || input.Body == "" {
		return nil, er.NewClientError(er.ErrInvalidInput, "Missing required fields (to, subject, or body)")
	}
	if err := validateRecipient(input.To); err != nil {
		return nil, err
	}
	if s.sender == nil {
		return nil, errors.Wrap(er.ErrTransport, "mail sender not configured")
	}

	from := s.sender.DefaultSender()
	attachments := s.saveUploads(ctx, uploads)

	outgoing, contents, err := s.prepareOutgoing(ctx, from, input, attachments)
	if err != nil {
		tracing.TraceErr(span, err)
		s.repositories.AttachmentRepository.DeleteMany(ctx, attachments)
		return nil, err
	}

	if err = s.sender.Send(ctx, outgoing); err != nil {
		tracing.TraceErr(span, err)
		s.repositories.AttachmentRepository.DeleteMany(ctx, attachments)
		if !errors.Is(err, er.ErrTransport) {
			err = errors.Wrap(er.ErrTransport, err.Error())
		}
		return nil, err
	}

	if attachments == nil {
		attachments = []string{}
	}
	sent := models.Email{
		ID:          utils.GenerateID(),
		From:        from,
		To:          input.To,
		Subject:     input.Subject,
		Body:        input.Body,
		Folder:      enum.FolderSent,
		Date:        utils.Now(),
		Starred:     false,
		Read:        true,
		Attachments: attachments,
	}
	tracing.TagEntity(span, sent.ID)

	records := models.Emails{sent}
	if utils.SameAddress(input.To, from) {
		records = append(records, s.inboxCopy(ctx, sent, contents))
	}

	err = s.repositories.EmailRepository.Mutate(ctx, func(emails models.Emails) (models.Emails, bool, error) {
		return append(emails, records...), true, nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		s.repositories.AttachmentRepository.DeleteMany(ctx, utils.UniqueStrings(records.AttachmentNames()))
		return nil, err
	}

	s.publish(ctx, sent.ID, enum.EmailEventSent, dto.EmailEvent{EmailIds: emailIDs(records), Folder: enum.FolderSent, Count: len(records)})
	return &sent, nil
}

func (s *emailService) prepareOutgoing(ctx context.Context, from string, input dto.SendEmailInput, storedNames []string) (*interfaces.OutgoingMessage, map[string][]byte, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailService.prepareOutgoing")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	message := &interfaces.OutgoingMessage{
		From:    from,
		To:      input.To,
		Subject: input.Subject,
		Body:    input.Body,
	}
	contents := make(map[string][]byte, len(storedNames))
	for _, name := range storedNames {
		content, err := s.repositories.AttachmentRepository.Read(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		contents[name] = content
		message.Attachments = append(message.Attachments, interfaces.OutgoingAttachment{
			Filename:    utils.DisplayName(name),
			ContentType: utils.ContentTypeForFilename(name),
			Content:     content,
		})
	}
	return message, contents, nil
}

// inboxCopy builds the unread inbox record of a message sent to ourselves. Its
// attachments are copied so that deleting one record leaves the other intact.
func (s *emailService) inboxCopy(ctx context.Context, sent models.Email, contents map[string][]byte) models.Email {
	inbox := sent.Clone()
	inbox.ID = utils.GenerateID()
	inbox.Folder = enum.FolderInbox
	inbox.Read = false
	inbox.Attachments = make([]string, 0, len(sent.Attachments))

	for _, name := range sent.Attachments {
		copied, err := s.repositories.AttachmentRepository.Save(ctx, utils.DisplayName(name), bytes.NewReader(contents[name]))
		if err != nil {
			s.log.Warnf("Failed to copy attachment %s for inbox copy, sharing it instead: %v", name, err)
			copied = name
		}
		inbox.Attachments = append(inbox.Attachments, copied)
	}
	return inbox
}

func validateRecipient(to string) error {
	validation := mailvalidate.ValidateEmailSyntax(to)
	if !validation.IsValid {
		return er.ClientErrorf(er.ErrInvalidInput, "Invalid recipient address: %s", to)
	}
	return nil
}
