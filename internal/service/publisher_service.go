package service

import (
	"context"
	"encoding/json"
	"fmt"

	"companion-bot-be/internal/pkg/logger"
	"companion-bot-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const metadataEventType = "event_type"

// EventPublisher is the external bus (NATS JetStream in production).
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IPublisherService interface {
	PublishConversationEnded(ctx context.Context, event events.ConversationEnded) error
}

type publisherService struct {
	topicName string
	pubSub    message.Publisher
	external  EventPublisher
	logger    logger.ILogger
}

// NewPublisherService publishes on the in-process bus and, when external is not nil, on the external bus too.
func NewPublisherService(topicName string, pubSub message.Publisher, external EventPublisher, log logger.ILogger) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
		external:  external,
		logger:    log,
	}
}

func (p *publisherService) PublishConversationEnded(ctx context.Context, event events.ConversationEnded) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.EventType(), err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(metadataEventType, event.EventType())
	msg.SetContext(ctx)

	if err := p.pubSub.Publish(p.topicName, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.EventType(), err)
	}

	if p.external != nil {
		// The conversation already ended for the user, so a bus outage only costs the remote copy
		if err := p.external.Publish(ctx, event); err != nil {
			p.logger.Warn("Publisher", "Failed to publish event to NATS", map[string]interface{}{
				"event":      event.EventType(),
				"session_id": event.SessionId,
				"error":      err.Error(),
			})
		}
	}
	return nil
}
