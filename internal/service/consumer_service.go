package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"companion-bot-be/internal/entity"
	"companion-bot-be/internal/pkg/logger"
	"companion-bot-be/internal/repository/contract"
	"companion-bot-be/internal/repository/specification"
	"companion-bot-be/pkg/events"
	pktNats "companion-bot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const archiveDurableName = "conversation-archiver"

type IConsumerService interface {
	// Consume reads the in-process bus until ctx is done.
	Consume(ctx context.Context) error
	// ConsumeNats archives from a durable JetStream consumer instead of the in-process bus.
	ConsumeNats(ctx context.Context, sub *pktNats.Subscriber) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	archive    contract.ConversationArchiveRepository
	logger     logger.ILogger

	// false once a JetStream consumer owns archiving
	archiveLocally atomic.Bool
}

// NewConsumerService archives ended conversations. archive may be nil, in which case events are only logged.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	archive contract.ConversationArchiveRepository,
	log logger.ILogger,
) IConsumerService {
	cs := &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		archive:    archive,
		logger:     log,
	}
	cs.archiveLocally.Store(true)
	return cs
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) ConsumeNats(ctx context.Context, sub *pktNats.Subscriber) error {
	err := sub.Subscribe(ctx, events.ConversationEndedType, archiveDurableName, func(ctx context.Context, event events.Event) error {
		ended, err := events.DecodeConversationEnded(event.Payload())
		if err != nil {
			// Nothing to retry; log and drop
			cs.logger.Error("Consumer", "Dropping malformed event", map[string]interface{}{"error": err.Error()})
			return nil
		}
		return cs.store(ctx, ended)
	})
	if err != nil {
		return err
	}

	cs.archiveLocally.Store(false)
	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var ended events.ConversationEnded
	if err := json.Unmarshal(msg.Payload, &ended); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // invalid payloads never become valid
		return
	}

	cs.logger.Info("Consumer", "Conversation ended", map[string]interface{}{
		"session_id":  ended.SessionId,
		"mood":        ended.Mood,
		"intensity":   ended.Intensity,
		"trigger":     ended.Trigger,
		"suggestions": len(ended.Suggestions),
		"turns":       ended.Turns,
	})

	if !cs.archiveLocally.Load() {
		msg.Ack()
		return
	}

	if err := cs.store(ctx, ended); err != nil {
		cs.logger.Error("Consumer", "Failed to archive conversation", map[string]interface{}{
			"session_id": ended.SessionId,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}
	msg.Ack()
}

// store is idempotent per (session, end time) so redelivered events are not archived twice.
func (cs *consumerService) store(ctx context.Context, ended events.ConversationEnded) error {
	if cs.archive == nil {
		return nil
	}

	existing, err := cs.archive.FindAll(ctx,
		specification.BySessionId{SessionId: ended.SessionId},
		specification.LatestFirst{},
		specification.Pagination{Limit: 1},
	)
	if err != nil {
		return fmt.Errorf("check archive for %s: %w", ended.SessionId, err)
	}
	endedAt := ended.EndedAt.Truncate(events.TimePrecision)
	if len(existing) > 0 && existing[0].EndedAt.Truncate(events.TimePrecision).Equal(endedAt) {
		return nil
	}

	transcript := make([]entity.TranscriptLine, 0, len(ended.Transcript))
	for _, m := range ended.Transcript {
		transcript = append(transcript, entity.TranscriptLine{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
	}

	archive := &entity.ConversationArchive{
		Id:          uuid.New(),
		SessionId:   ended.SessionId,
		UserId:      ended.UserId,
		Mood:        ended.Mood,
		Intensity:   ended.Intensity,
		Trigger:     ended.Trigger,
		Suggestions: ended.Suggestions,
		Turns:       ended.Turns,
		Transcript:  transcript,
		StartedAt:   ended.StartedAt,
		EndedAt:     endedAt,
	}
	if err := cs.archive.Create(ctx, archive); err != nil {
		if errors.Is(err, contract.ErrArchiveExists) {
			return nil
		}
		return fmt.Errorf("archive %s: %w", ended.SessionId, err)
	}

	cs.logger.Info("Consumer", "Conversation archived", map[string]interface{}{
		"session_id": ended.SessionId,
		"archive_id": archive.Id.String(),
	})
	return nil
}
