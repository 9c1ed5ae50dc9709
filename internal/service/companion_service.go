package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"companion-bot-be/internal/dto"
	"companion-bot-be/internal/pkg/logger"
	"companion-bot-be/internal/repository/contract"
	"companion-bot-be/pkg/dialogue"
	"companion-bot-be/pkg/events"
	"companion-bot-be/pkg/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionForbidden = errors.New("session belongs to another user")
)

type ICompanionService interface {
	CreateSession(ctx context.Context, userId string) (*dto.SessionResponse, error)
	SendMessage(ctx context.Context, userId string, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	GetSession(ctx context.Context, userId, sessionId string) (*dto.SessionResponse, error)
	RestartSession(ctx context.Context, userId, sessionId string) (*dto.SendMessageResponse, error)
	ExportTranscript(ctx context.Context, userId, sessionId string) (*dto.ExportTranscriptResponse, error)
	Classify(ctx context.Context, text string) *dto.ClassifyResponse
	DeleteSession(ctx context.Context, userId, sessionId string) error
}

type companionService struct {
	controller *dialogue.Controller
	sessions   contract.SessionRepository
	publisher  IPublisherService
	logger     logger.ILogger
	tracer     trace.Tracer

	// One turn at a time per session; ids hash onto a fixed set of stripes
	locks [lockStripes]sync.Mutex
}

const lockStripes = 256

func NewCompanionService(
	controller *dialogue.Controller,
	sessions contract.SessionRepository,
	publisher IPublisherService,
	log logger.ILogger,
) ICompanionService {
	return &companionService{
		controller: controller,
		sessions:   sessions,
		publisher:  publisher,
		logger:     log,
		tracer:     otel.Tracer("companion-bot-be/internal/service"),
	}
}

func (s *companionService) stripe(sessionId string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionId))
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *companionService) lock(sessionId string) func() {
	m := s.stripe(sessionId)
	m.Lock()
	return m.Unlock
}

func (s *companionService) CreateSession(ctx context.Context, userId string) (*dto.SessionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CompanionService.CreateSession")
	defer span.End()

	session := s.controller.NewSession(uuid.NewString(), userId)
	if err := s.sessions.Save(ctx, session); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save session")
		return nil, fmt.Errorf("create session: %w", err)
	}

	span.SetAttributes(attribute.String("session.id", session.ID))
	s.logger.Info("Companion", "Session created", map[string]interface{}{
		"session_id": session.ID,
		"user_id":    userId,
	})
	return toSessionResponse(session), nil
}

func (s *companionService) SendMessage(ctx context.Context, userId string, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CompanionService.SendMessage", trace.WithAttributes(
		attribute.String("session.id", req.SessionId),
	))
	defer span.End()

	unlock := s.lock(req.SessionId)
	defer unlock()

	session, err := s.load(ctx, userId, req.SessionId)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	from := session.Stage
	reply, session := s.controller.Advance(session, req.Message)
	span.SetAttributes(
		attribute.String("dialogue.from", string(from)),
		attribute.String("dialogue.to", string(session.Stage)),
	)

	if err := s.sessions.Save(ctx, session); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save session")
		return nil, fmt.Errorf("save session %s: %w", session.ID, err)
	}

	if session.IsEnded() && from != store.StageConversationEnd {
		if err := s.publisher.PublishConversationEnded(ctx, events.NewConversationEnded(session)); err != nil {
			s.logger.Error("Companion", "Failed to publish conversation end", map[string]interface{}{
				"session_id": session.ID,
				"error":      err.Error(),
			})
		}
	}

	return toSendMessageResponse(session, reply), nil
}

func (s *companionService) GetSession(ctx context.Context, userId, sessionId string) (*dto.SessionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CompanionService.GetSession")
	defer span.End()

	session, err := s.load(ctx, userId, sessionId)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return toSessionResponse(session), nil
}

func (s *companionService) RestartSession(ctx context.Context, userId, sessionId string) (*dto.SendMessageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CompanionService.RestartSession")
	defer span.End()

	unlock := s.lock(sessionId)
	defer unlock()

	session, err := s.load(ctx, userId, sessionId)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	reply, session := s.controller.Restart(session)
	if err := s.sessions.Save(ctx, session); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("save session %s: %w", session.ID, err)
	}

	s.logger.Info("Companion", "Session restarted", map[string]interface{}{"session_id": session.ID})
	return toSendMessageResponse(session, reply), nil
}

func (s *companionService) ExportTranscript(ctx context.Context, userId, sessionId string) (*dto.ExportTranscriptResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CompanionService.ExportTranscript")
	defer span.End()

	session, err := s.load(ctx, userId, sessionId)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &dto.ExportTranscriptResponse{
		SessionId: session.ID,
		FileName:  dialogue.TranscriptFileName,
		Content:   dialogue.FormatTranscript(session.Messages),
	}, nil
}

func (s *companionService) Classify(ctx context.Context, text string) *dto.ClassifyResponse {
	_, span := s.tracer.Start(ctx, "CompanionService.Classify")
	defer span.End()

	match := s.controller.ClassifyTrigger(text)
	scores := make([]dto.TriggerScoreDTO, 0, len(match.Scores))
	for _, sc := range match.Scores {
		scores = append(scores, dto.TriggerScoreDTO{Category: sc.Category, Score: sc.Score})
	}

	return &dto.ClassifyResponse{
		Text:             text,
		Mood:             s.controller.ClassifyMood(text),
		PrimaryTrigger:   match.Primary,
		SecondaryTrigger: match.Secondary,
		Ambiguous:        match.Ambiguous(),
		Scores:           scores,
	}
}

func (s *companionService) DeleteSession(ctx context.Context, userId, sessionId string) error {
	ctx, span := s.tracer.Start(ctx, "CompanionService.DeleteSession")
	defer span.End()

	unlock := s.lock(sessionId)
	defer unlock()

	if _, err := s.load(ctx, userId, sessionId); err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.sessions.Delete(ctx, sessionId); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionId, err)
	}

	s.logger.Info("Companion", "Session deleted", map[string]interface{}{"session_id": sessionId})
	return nil
}

func (s *companionService) load(ctx context.Context, userId, sessionId string) (*store.Session, error) {
	session, err := s.sessions.Get(ctx, sessionId)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionId, err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.UserID != userId {
		return nil, ErrSessionForbidden
	}
	return session, nil
}

func toSendMessageResponse(session *store.Session, reply string) *dto.SendMessageResponse {
	return &dto.SendMessageResponse{
		SessionId:    session.ID,
		Reply:        reply,
		Stage:        string(session.Stage),
		InputEnabled: !session.IsEnded(),
	}
}

func toSessionResponse(session *store.Session) *dto.SessionResponse {
	messages := make([]dto.ChatMessageDTO, 0, len(session.Messages))
	for _, m := range session.Messages {
		messages = append(messages, dto.ChatMessageDTO{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
	}

	return &dto.SessionResponse{
		Id:           session.ID,
		Stage:        string(session.Stage),
		InputEnabled: !session.IsEnded(),
		Mood:         session.DetectedMood,
		Intensity:    string(session.Intensity),
		Trigger:      session.Trigger.Resolved,
		Candidates:   session.Trigger.Candidates,
		Messages:     messages,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
	}
}
