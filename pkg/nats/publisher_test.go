package nats

import (
	"testing"

	"companion-bot-be/pkg/events"

	"github.com/stretchr/testify/assert"
)

func TestSubjectFallsUnderStream(t *testing.T) {
	assert.Equal(t, "events.conversation.ended", Subject(events.ConversationEndedType))
}
