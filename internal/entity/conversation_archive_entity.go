package entity

import (
	"time"

	"github.com/google/uuid"
)

type TranscriptLine struct {
	Role      string
	Content   string
	CreatedAt time.Time
}

// ConversationArchive is a finished conversation kept for later review.
// It is never read back into a live session.
type ConversationArchive struct {
	Id          uuid.UUID
	SessionId   string
	UserId      string
	Mood        string
	Intensity   string
	Trigger     string
	Suggestions []string
	Turns       int
	Transcript  []TranscriptLine
	StartedAt   time.Time
	EndedAt     time.Time
	CreatedAt   time.Time
}
