package events

import (
	"encoding/json"
	"fmt"
	"time"

	"companion-bot-be/pkg/store"
)

const ConversationEndedType = "conversation.ended"

// TimePrecision is the resolution of archived timestamps (postgres timestamptz).
const TimePrecision = time.Microsecond

// ConversationEnded is published once a conversation reaches its terminal stage.
type ConversationEnded struct {
	SessionId   string          `json:"session_id"`
	UserId      string          `json:"user_id"`
	Mood        string          `json:"mood"`
	Intensity   string          `json:"intensity"`
	Trigger     string          `json:"trigger"`
	Suggestions []string        `json:"suggestions"`
	Turns       int             `json:"turns"`
	Transcript  []store.Message `json:"transcript"`
	StartedAt   time.Time       `json:"started_at"`
	EndedAt     time.Time       `json:"ended_at"`
}

// NewConversationEnded snapshots a finished session.
func NewConversationEnded(s *store.Session) ConversationEnded {
	return ConversationEnded{
		SessionId:   s.ID,
		UserId:      s.UserID,
		Mood:        s.DetectedMood,
		Intensity:   string(s.Intensity),
		Trigger:     s.Trigger.Resolved,
		Suggestions: s.UsedSuggestions.List(),
		Turns:       s.UserTurns(),
		Transcript:  append([]store.Message(nil), s.Messages...),
		StartedAt:   s.CreatedAt.Truncate(TimePrecision),
		EndedAt:     s.UpdatedAt.Truncate(TimePrecision),
	}
}

func (e ConversationEnded) EventType() string {
	return ConversationEndedType
}

func (e ConversationEnded) Payload() map[string]interface{} {
	raw, err := json.Marshal(e)
	if err != nil {
		return map[string]interface{}{"session_id": e.SessionId}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]interface{}{"session_id": e.SessionId}
	}
	return out
}

func (e ConversationEnded) Timestamp() time.Time {
	return e.EndedAt
}

// DecodeConversationEnded rebuilds the event from a bus payload.
func DecodeConversationEnded(payload map[string]interface{}) (ConversationEnded, error) {
	var e ConversationEnded
	raw, err := json.Marshal(payload)
	if err != nil {
		return e, fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, fmt.Errorf("decode %s payload: %w", ConversationEndedType, err)
	}
	if e.SessionId == "" {
		return e, fmt.Errorf("decode %s payload: missing session_id", ConversationEndedType)
	}
	return e, nil
}
