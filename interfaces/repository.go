package interfaces

import (
	"context"
	"io"

	"github.com/customeros/maildesk/internal/models"
)

type EmailRepository interface {
	Init(ctx context.Context) error
	Load(ctx context.Context) models.Emails
	Save(ctx context.Context, emails models.Emails) error
	View(ctx context.Context, fn func(emails models.Emails) error) error
	Mutate(ctx context.Context, fn func(emails models.Emails) (models.Emails, bool, error)) error
}

type AttachmentRepository interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, fileName string, content io.Reader) (string, error)
	Delete(ctx context.Context, storedName string)
	DeleteMany(ctx context.Context, storedNames []string)
	Resolve(ctx context.Context, rawName string) (*models.AttachmentFile, error)
	Open(ctx context.Context, storedName string) (io.ReadCloser, error)
	Read(ctx context.Context, storedName string) ([]byte, error)
	List(ctx context.Context) ([]models.AttachmentFile, error)
}
