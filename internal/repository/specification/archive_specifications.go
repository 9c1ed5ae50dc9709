package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByUserId restricts archives to one owner
type ByUserId struct {
	UserId string
}

func (s ByUserId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserId)
}

// BySessionId matches the live session an archive was taken from
type BySessionId struct {
	SessionId string
}

func (s BySessionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionId)
}

// ByMood filters on the confirmed mood
type ByMood struct {
	Mood string
}

func (s ByMood) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("mood = ?", s.Mood)
}

// LatestFirst orders by end time, newest first
type LatestFirst struct{}

func (s LatestFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("ended_at DESC")
}

type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}

type ByArchiveId struct {
	Id uuid.UUID
}

func (s ByArchiveId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.Id)
}
