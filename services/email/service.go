package email

import (
	"context"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/maildesk/dto"
	"github.com/customeros/maildesk/interfaces"
	"github.com/customeros/maildesk/internal/enum"
	er "github.com/customeros/maildesk/internal/errors"
	"github.com/customeros/maildesk/internal/logger"
	"github.com/customeros/maildesk/internal/models"
	"github.com/customeros/maildesk/internal/repository"
	"github.com/customeros/maildesk/internal/tracing"
	"github.com/customeros/maildesk/internal/utils"
)

type emailService struct {
	repositories *repository.Repositories
	sender       interfaces.MailSender
	publisher    interfaces.EventPublisher
	log          logger.Logger
}

func NewEmailService(
	repositories *repository.Repositories,
	sender interfaces.MailSender,
	publisher interfaces.EventPublisher,
	log logger.Logger,
) interfaces.EmailService {
	return &emailService{
		repositories: repositories,
		sender:       sender,
		publisher:    publisher,
		log:          log,
	}
}

func (s *emailService) List(ctx context.Context, folder *enum.Folder) (models.Emails, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailService.List")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if folder != nil && !folder.IsValid() {
		return nil, invalidFolderError(*folder)
	}

	emails := s.repositories.EmailRepository.Load(ctx)
	if folder != nil {
		span.LogKV("folder", folder.String())
		emails = emails.FilterByFolder(*folder)
	}
	return emails, nil
}

func (s *emailService) Create(ctx context.Context, input dto.CreateEmailInput, uploads []models.Upload) (*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailService.Create")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if err := validateRequired(map[string]string{
		"from":    input.From,
		"to":      input.To,
		"subject": input.Subject,
		"body":    input.Body,
	}, "from", "to", "subject", "body"); err != nil {
		return nil, err
	}

	folder := input.Folder
	if folder == "" {
		folder = enum.FolderInbox
	}
	if !folder.IsValid() {
		return nil, invalidFolderError(folder)
	}

	attachments := utils.UniqueStrings(input.Attachments)
	saved := s.saveUploads(ctx, uploads)
	attachments = append(attachments, saved...)
	if attachments == nil {
		attachments = []string{}
	}

	email := models.Email{
		ID:          utils.GenerateID(),
		From:        input.From,
		To:          input.To,
		Subject:     input.Subject,
		Body:        input.Body,
		Folder:      folder,
		Date:        utils.Now(),
		Starred:     input.Starred,
		Read:        false,
		Attachments: attachments,
	}
	tracing.TagEntity(span, email.ID)

	err := s.repositories.EmailRepository.Mutate(ctx, func(emails models.Emails) (models.Emails, bool, error) {
		return append(emails, email), true, nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		s.repositories.AttachmentRepository.DeleteMany(ctx, saved)
		return nil, err
	}

	s.publish(ctx, email.ID, enum.EmailEventCreated, dto.EmailEvent{EmailIds: []string{email.ID}, Folder: email.Folder, Count: 1})
	return &email, nil
}

// Get returns the record and marks it read if it was not.
func (s *emailService) Get(ctx context.Context, id string) (*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailService.Get")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	var found models.Email
	err := s.repositories.EmailRepository.Mutate(ctx, func(emails models.Emails) (models.Emails, bool, error) {
		email := emails.FindByID(id)
		if email == nil {
			return nil, false, errors.Wrap(er.ErrEmailNotFound, id)
		}
		changed := !email.Read
		email.Read = true
		found = email.Clone()
		return emails, changed, nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &found, nil
}

func (s *emailService) Update(ctx context.Context, id string, patch models.EmailPatch) (*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailService.Update")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)
	tracing.LogObjectAsJson(span, "patch", patch)

	if patch.Folder != nil && !patch.Folder.IsValid() {
		return nil, invalidFolderError(*patch.Folder)
	}

	var updated models.Email
	changed := false
	err := s.repositories.EmailRepository.Mutate(ctx, func(emails models.Emails) (models.Emails, bool, error) {
		i := emails.IndexOf(id)
		if i < 0 {
			return nil, false, errors.Wrap(er.ErrEmailNotFound, id)
		}
		changed = emails.ApplyPatch(i, patch)
		updated = emails[i].Clone()
		return emails, changed, nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	if changed {
		s.publish(ctx, id, enum.EmailEventUpdated, dto.EmailEvent{EmailIds: []string{id}, Folder: updated.Folder, Count: 1})
	}
	return &updated, nil
}

func (s *emailService) Delete(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailService.Delete")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	var removed models.Emails
	err := s.repositories.EmailRepository.Mutate(ctx, func(emails models.Emails) (models.Emails, bool, error) {
		if emails.IndexOf(id) < 0 {
			return nil, false, errors.Wrap(er.ErrEmailNotFound, id)
		}
		var kept models.Emails
		kept, removed = emails.RemoveByIDs([]string{id})
		return kept, true, nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	s.repositories.AttachmentRepository.DeleteMany(ctx, removed.AttachmentNames())
	s.publish(ctx, id, enum.EmailEventDeleted, dto.EmailEvent{EmailIds: []string{id}, Count: len(removed)})
	return nil
}

// DeleteMany removes every record whose id is in ids. Unknown ids are ignored.
func (s *emailService) DeleteMany(ctx context.Context, ids []string) (int, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailService.DeleteMany")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("ids", ids)

	var removed models.Emails
	err := s.repositories.EmailRepository.Mutate(ctx, func(emails models.Emails) (models.Emails, bool, error) {
		var kept models.Emails
		kept, removed = emails.RemoveByIDs(ids)
		return kept, len(removed) > 0, nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}

	if len(removed) > 0 {
		s.repositories.AttachmentRepository.DeleteMany(ctx, removed.AttachmentNames())
		s.publish(ctx, "", enum.EmailEventDeleted, dto.EmailEvent{EmailIds: emailIDs(removed), Count: len(removed)})
	}
	span.LogKV("result.count", len(removed))
	return len(removed), nil
}

func (s *emailService) ToggleStar(ctx context.Context, id string) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailService.ToggleStar")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	var starred bool
	err := s.repositories.EmailRepository.Mutate(ctx, func(emails models.Emails) (models.Emails, bool, error) {
		var found bool
		starred, found = emails.ToggleStarred(id)
		if !found {
			return nil, false, errors.Wrap(er.ErrEmailNotFound, id)
		}
		return emails, true, nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return false, err
	}

	s.publish(ctx, id, enum.EmailEventUpdated, dto.EmailEvent{EmailIds: []string{id}, Count: 1})
	return starred, nil
}

// MarkRead marks the listed records read and returns how many were unread before.
func (s *emailService) MarkRead(ctx context.Context, ids []string) (int, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailService.MarkRead")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("ids", ids)

	count := 0
	err := s.repositories.EmailRepository.Mutate(ctx, func(emails models.Emails) (models.Emails, bool, error) {
		count = emails.MarkRead(ids)
		return emails, count > 0, nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}

	if count > 0 {
		s.publish(ctx, "", enum.EmailEventUpdated, dto.EmailEvent{EmailIds: ids, Count: count})
	}
	span.LogKV("result.count", count)
	return count, nil
}

// MoveToFolder moves the listed records and returns how many were not already there.
// The folder is checked before the data file is read.
func (s *emailService) MoveToFolder(ctx context.Context, ids []string, folder enum.Folder) (int, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailService.MoveToFolder")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("ids", ids, "folder", folder.String())

	if !folder.IsValid() {
		return 0, invalidFolderError(folder)
	}

	count := 0
	err := s.repositories.EmailRepository.Mutate(ctx, func(emails models.Emails) (models.Emails, bool, error) {
		count = emails.MoveTo(ids, folder)
		return emails, count > 0, nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}

	if count > 0 {
		s.publish(ctx, "", enum.EmailEventUpdated, dto.EmailEvent{EmailIds: ids, Folder: folder, Count: count})
	}
	span.LogKV("result.count", count)
	return count, nil
}

// saveUploads writes every acceptable upload and skips the rest with a warning.
func (s *emailService) saveUploads(ctx context.Context, uploads []models.Upload) []string {
	var names []string
	for _, upload := range uploads {
		if upload.Filename == "" || upload.Content == nil {
			continue
		}
		storedName, err := s.repositories.AttachmentRepository.Save(ctx, upload.Filename, upload.Content)
		if err != nil {
			s.log.Warnf("Skipping attachment %q: %v", upload.Filename, err)
			continue
		}
		names = append(names, storedName)
	}
	return names
}

func (s *emailService) publish(ctx context.Context, entityId string, eventType enum.EmailEventType, event dto.EmailEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEmailEvent(ctx, entityId, eventType, event); err != nil {
		s.log.Warnf("Failed to publish %s event: %v", eventType, err)
	}
}

func validateRequired(values map[string]string, order ...string) error {
	var missing []string
	for _, field := range order {
		if values[field] == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return er.ClientErrorf(er.ErrInvalidInput, "Missing fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func invalidFolderError(folder enum.Folder) error {
	return er.ClientErrorf(er.ErrInvalidFolder, "Invalid folder %q. Must be one of: %s", folder, enum.ValidFolderNames())
}

func emailIDs(emails models.Emails) []string {
	ids := make([]string, 0, len(emails))
	for _, e := range emails {
		ids = append(ids, e.ID)
	}
	return ids
}
