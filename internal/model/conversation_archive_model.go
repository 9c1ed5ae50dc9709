package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ConversationArchive struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId   string         `gorm:"type:text;not null;uniqueIndex:idx_archive_session_ended,priority:1"`
	UserId      string         `gorm:"type:text;not null;index"`
	Mood        string         `gorm:"type:text"`
	Intensity   string         `gorm:"type:text"`
	Trigger     string         `gorm:"type:text"`
	Suggestions datatypes.JSON `gorm:"type:jsonb"`
	Turns       int            `gorm:"not null;default:0"`
	Transcript  datatypes.JSON `gorm:"type:jsonb;not null"`
	StartedAt   time.Time      `gorm:"not null"`
	EndedAt     time.Time      `gorm:"not null;index;uniqueIndex:idx_archive_session_ended,priority:2"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
}

func (ConversationArchive) TableName() string {
	return "conversation_archives"
}
