package repository

import (
	"context"

	"github.com/spf13/afero"

	"github.com/customeros/maildesk/interfaces"
	"github.com/customeros/maildesk/internal/logger"
)

type Repositories struct {
	EmailRepository      interfaces.EmailRepository
	AttachmentRepository interfaces.AttachmentRepository
}

func InitRepositories(fs afero.Fs, dataFile, attachmentsDir string, mirror interfaces.StorageService, log logger.Logger) *Repositories {
	return &Repositories{
		EmailRepository:      NewEmailRepository(fs, dataFile, log),
		AttachmentRepository: NewAttachmentRepository(fs, attachmentsDir, mirror, log),
	}
}

// Init prepares the data file and the attachments directory.
func (r *Repositories) Init(ctx context.Context) error {
	if err := r.EmailRepository.Init(ctx); err != nil {
		return err
	}
	return r.AttachmentRepository.Init(ctx)
}
