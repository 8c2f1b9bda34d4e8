package interfaces

import (
	"context"

	"github.com/customeros/maildesk/dto"
	"github.com/customeros/maildesk/internal/enum"
	"github.com/customeros/maildesk/internal/models"
)

type EmailService interface {
	List(ctx context.Context, folder *enum.Folder) (models.Emails, error)
	Create(ctx context.Context, input dto.CreateEmailInput, uploads []models.Upload) (*models.Email, error)
	Get(ctx context.Context, id string) (*models.Email, error)
	Update(ctx context.Context, id string, patch models.EmailPatch) (*models.Email, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int, error)
	ToggleStar(ctx context.Context, id string) (bool, error)
	MarkRead(ctx context.Context, ids []string) (int, error)
	MoveToFolder(ctx context.Context, ids []string, folder enum.Folder) (int, error)
	Send(ctx context.Context, input dto.SendEmailInput, uploads []models.Upload) (*models.Email, error)
}

// OutgoingAttachment is an attachment ready to be placed in a MIME message.
type OutgoingAttachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type OutgoingMessage struct {
	From        string
	To          string
	Subject     string
	Body        string
	Attachments []OutgoingAttachment
}

type MailSender interface {
	Send(ctx context.Context, message *OutgoingMessage) error
	DefaultSender() string
}

// AttachmentSweeper removes attachment blobs no record references.
type AttachmentSweeper interface {
	SweepOrphanAttachments(ctx context.Context) (int, error)
}
