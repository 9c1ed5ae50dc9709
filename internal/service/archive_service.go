package service

import (
	"context"
	"errors"
	"fmt"

	"companion-bot-be/internal/dto"
	"companion-bot-be/internal/entity"
	"companion-bot-be/internal/repository/contract"
	"companion-bot-be/internal/repository/specification"

	"github.com/google/uuid"
)

var ErrArchiveNotFound = errors.New("archived conversation not found")

const defaultArchivePageSize = 20

// IArchiveService lets a user look back at their own finished conversations.
type IArchiveService interface {
	List(ctx context.Context, userId string, req *dto.ListArchivesRequest) (*dto.ListArchivesResponse, error)
	Show(ctx context.Context, userId, archiveId string) (*dto.ArchiveDetailResponse, error)
}

type archiveService struct {
	archive contract.ConversationArchiveRepository
}

func NewArchiveService(archive contract.ConversationArchiveRepository) IArchiveService {
	return &archiveService{archive: archive}
}

func (s *archiveService) List(ctx context.Context, userId string, req *dto.ListArchivesRequest) (*dto.ListArchivesResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultArchivePageSize
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	filters := []specification.Specification{specification.ByUserId{UserId: userId}}
	if req.Mood != "" {
		filters = append(filters, specification.ByMood{Mood: req.Mood})
	}

	total, err := s.archive.Count(ctx, filters...)
	if err != nil {
		return nil, fmt.Errorf("count archives: %w", err)
	}

	specs := append(filters,
		specification.LatestFirst{},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	archives, err := s.archive.FindAll(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}

	items := make([]dto.ArchiveSummaryDTO, 0, len(archives))
	for _, a := range archives {
		items = append(items, toArchiveSummary(a))
	}

	return &dto.ListArchivesResponse{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *archiveService) Show(ctx context.Context, userId, archiveId string) (*dto.ArchiveDetailResponse, error) {
	id, err := uuid.Parse(archiveId)
	if err != nil {
		return nil, ErrArchiveNotFound
	}

	archive, err := s.archive.FindOne(ctx, specification.ByArchiveId{Id: id}, specification.ByUserId{UserId: userId})
	if err != nil {
		return nil, fmt.Errorf("find archive %s: %w", archiveId, err)
	}
	if archive == nil {
		return nil, ErrArchiveNotFound
	}

	transcript := make([]dto.ChatMessageDTO, 0, len(archive.Transcript))
	for _, line := range archive.Transcript {
		transcript = append(transcript, dto.ChatMessageDTO{Role: line.Role, Content: line.Content, CreatedAt: line.CreatedAt})
	}

	return &dto.ArchiveDetailResponse{ArchiveSummaryDTO: toArchiveSummary(archive), Transcript: transcript}, nil
}

func toArchiveSummary(a *entity.ConversationArchive) dto.ArchiveSummaryDTO {
	return dto.ArchiveSummaryDTO{
		Id:          a.Id.String(),
		SessionId:   a.SessionId,
		Mood:        a.Mood,
		Intensity:   a.Intensity,
		Trigger:     a.Trigger,
		Suggestions: a.Suggestions,
		Turns:       a.Turns,
		StartedAt:   a.StartedAt,
		EndedAt:     a.EndedAt,
	}
}
