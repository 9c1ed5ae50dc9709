package mapper

import (
	"encoding/json"
	"time"

	"companion-bot-be/internal/entity"
	"companion-bot-be/internal/model"

	"gorm.io/datatypes"
)

type ConversationArchiveMapper struct{}

func NewConversationArchiveMapper() *ConversationArchiveMapper {
	return &ConversationArchiveMapper{}
}

// transcriptLine is the jsonb shape of one transcript entry
type transcriptLine struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *ConversationArchiveMapper) ToModel(a *entity.ConversationArchive) (*model.ConversationArchive, error) {
	if a == nil {
		return nil, nil
	}

	suggestions := a.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	suggestionsJSON, err := json.Marshal(suggestions)
	if err != nil {
		return nil, err
	}

	lines := make([]transcriptLine, 0, len(a.Transcript))
	for _, l := range a.Transcript {
		lines = append(lines, transcriptLine{Role: l.Role, Content: l.Content, CreatedAt: l.CreatedAt})
	}
	transcriptJSON, err := json.Marshal(lines)
	if err != nil {
		return nil, err
	}

	return &model.ConversationArchive{
		Id:          a.Id,
		SessionId:   a.SessionId,
		UserId:      a.UserId,
		Mood:        a.Mood,
		Intensity:   a.Intensity,
		Trigger:     a.Trigger,
		Suggestions: datatypes.JSON(suggestionsJSON),
		Turns:       a.Turns,
		Transcript:  datatypes.JSON(transcriptJSON),
		StartedAt:   a.StartedAt,
		EndedAt:     a.EndedAt,
		CreatedAt:   a.CreatedAt,
	}, nil
}

func (m *ConversationArchiveMapper) ToEntity(a *model.ConversationArchive) (*entity.ConversationArchive, error) {
	if a == nil {
		return nil, nil
	}

	var suggestions []string
	if len(a.Suggestions) > 0 {
		if err := json.Unmarshal(a.Suggestions, &suggestions); err != nil {
			return nil, err
		}
	}

	var lines []transcriptLine
	if len(a.Transcript) > 0 {
		if err := json.Unmarshal(a.Transcript, &lines); err != nil {
			return nil, err
		}
	}
	transcript := make([]entity.TranscriptLine, 0, len(lines))
	for _, l := range lines {
		transcript = append(transcript, entity.TranscriptLine{Role: l.Role, Content: l.Content, CreatedAt: l.CreatedAt})
	}

	return &entity.ConversationArchive{
		Id:          a.Id,
		SessionId:   a.SessionId,
		UserId:      a.UserId,
		Mood:        a.Mood,
		Intensity:   a.Intensity,
		Trigger:     a.Trigger,
		Suggestions: suggestions,
		Turns:       a.Turns,
		Transcript:  transcript,
		StartedAt:   a.StartedAt,
		EndedAt:     a.EndedAt,
		CreatedAt:   a.CreatedAt,
	}, nil
}
