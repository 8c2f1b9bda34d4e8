package interfaces

import (
	"context"

	"github.com/customeros/maildesk/internal/enum"
)

type EventPublisher interface {
	PublishEmailEvent(ctx context.Context, entityId string, eventType enum.EmailEventType, message interface{}) error
	Close() error
}
