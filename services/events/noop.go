package events

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"github.com/customeros/maildesk/internal/enum"
	"github.com/customeros/maildesk/internal/logger"
	"github.com/customeros/maildesk/internal/tracing"
)

// NoopPublisher is used when no broker is configured. Events are only logged.
type NoopPublisher struct {
	logger logger.Logger
}

func NewNoopPublisher(log logger.Logger) *NoopPublisher {
	return &NoopPublisher{logger: log}
}

func (p *NoopPublisher) PublishEmailEvent(ctx context.Context, entityId string, eventType enum.EmailEventType, message interface{}) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "NoopPublisher.PublishEmailEvent")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, entityId)

	p.logger.Debugf("Event %s for %q not published, no broker configured", eventType, entityId)
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
