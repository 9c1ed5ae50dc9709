package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"companion-bot-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher sends events to JetStream under "events.<type>".
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewPublisher(url string) (*Publisher, error) {
	nc, js, err := Connect(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{nc: nc, js: js}, nil
}

func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

// Publish uses the session id (when present) as the message id so retried publishes are deduplicated.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	msg := nats.NewMsg(Subject(event.EventType()))
	msg.Data = data
	msg.Header.Set(HeaderOccurredAt, event.Timestamp().UTC().Format(time.RFC3339Nano))

	var opts []jetstream.PublishOpt
	if id, ok := payload["session_id"].(string); ok && id != "" {
		opts = append(opts, jetstream.WithMsgID(event.EventType()+":"+id+":"+event.Timestamp().UTC().Format(time.RFC3339Nano)))
	}

	if _, err := p.js.PublishMsg(ctx, msg, opts...); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", msg.Subject, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
