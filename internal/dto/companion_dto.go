package dto

import "time"

type ChatMessageDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionResponse struct {
	Id           string           `json:"id"`
	Stage        string           `json:"stage"`
	InputEnabled bool             `json:"input_enabled"`
	Mood         string           `json:"mood,omitempty"`
	Intensity    string           `json:"intensity,omitempty"`
	Trigger      string           `json:"trigger,omitempty"`
	Candidates   []string         `json:"candidates,omitempty"`
	Messages     []ChatMessageDTO `json:"messages"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type SendMessageRequest struct {
	SessionId string `json:"-"`
	Message   string `json:"message" validate:"required,max=2000"`
}

type SendMessageResponse struct {
	SessionId    string `json:"session_id"`
	Reply        string `json:"reply"`
	Stage        string `json:"stage"`
	InputEnabled bool   `json:"input_enabled"`
}

type ExportTranscriptResponse struct {
	SessionId string `json:"session_id"`
	FileName  string `json:"file_name"`
	Content   string `json:"content"`
}

type TriggerScoreDTO struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
}

type ClassifyResponse struct {
	Text             string            `json:"text"`
	Mood             string            `json:"mood"`
	PrimaryTrigger   string            `json:"primary_trigger"`
	SecondaryTrigger string            `json:"secondary_trigger,omitempty"`
	Ambiguous        bool              `json:"ambiguous"`
	Scores           []TriggerScoreDTO `json:"scores"`
}

type ArchiveSummaryDTO struct {
	Id          string    `json:"id"`
	SessionId   string    `json:"session_id"`
	Mood        string    `json:"mood"`
	Intensity   string    `json:"intensity"`
	Trigger     string    `json:"trigger"`
	Suggestions []string  `json:"suggestions"`
	Turns       int       `json:"turns"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
}

type ArchiveDetailResponse struct {
	ArchiveSummaryDTO
	Transcript []ChatMessageDTO `json:"transcript"`
}

type ListArchivesRequest struct {
	Mood  string `query:"mood" validate:"max=64"`
	Page  int    `query:"page" validate:"min=0"`
	Limit int    `query:"limit" validate:"min=0,max=100"`
}

type ListArchivesResponse struct {
	Items []ArchiveSummaryDTO `json:"items"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}
