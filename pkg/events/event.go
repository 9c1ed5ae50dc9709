package events

import "time"

// Event is anything published on the event bus.
type Event interface {
	// EventType is the dotted name used as the subject suffix (e.g. "conversation.ended").
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// BaseEvent is the shape events take after crossing the bus, when only the raw payload is known.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
