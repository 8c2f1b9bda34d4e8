package email

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/customeros/maildesk/interfaces"
	"github.com/customeros/maildesk/internal/logger"
	"github.com/customeros/maildesk/internal/models"
	"github.com/customeros/maildesk/internal/repository"
	"github.com/customeros/maildesk/internal/tracing"
	"github.com/customeros/maildesk/internal/utils"
)

type attachmentSweeper struct {
	repositories *repository.Repositories
	gracePeriod  time.Duration
	log          logger.Logger
}

// NewAttachmentSweeper removes blobs that no record references once they are older
// than gracePeriod.
func NewAttachmentSweeper(repositories *repository.Repositories, gracePeriod time.Duration, log logger.Logger) interfaces.AttachmentSweeper {
	return &attachmentSweeper{
		repositories: repositories,
		gracePeriod:  gracePeriod,
		log:          log,
	}
}

func (s *attachmentSweeper) SweepOrphanAttachments(ctx context.Context) (int, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AttachmentSweeper.SweepOrphanAttachments")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	files, err := s.repositories.AttachmentRepository.List(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}

	cutoff := utils.Now().Add(-s.gracePeriod)
	var orphans []string

	// the lock keeps a concurrent create from referencing a blob we are about to drop
	err = s.repositories.EmailRepository.View(ctx, func(emails models.Emails) error {
		referenced := emails.ReferencedAttachments()
		for _, file := range files {
			if _, ok := referenced[file.StoredName]; ok {
				continue
			}
			if file.ModTime.After(cutoff) {
				continue
			}
			orphans = append(orphans, file.StoredName)
		}
		s.repositories.AttachmentRepository.DeleteMany(ctx, orphans)
		return nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}

	if len(orphans) > 0 {
		s.log.Infof("Removed %d orphan attachments", len(orphans))
	}
	span.LogKV("result.count", len(orphans))
	return len(orphans), nil
}
