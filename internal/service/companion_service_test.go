package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion-bot-be/internal/dto"
	"companion-bot-be/internal/pkg/logger"
	"companion-bot-be/internal/repository/memory"
	"companion-bot-be/pkg/dialogue"
	"companion-bot-be/pkg/events"
	"companion-bot-be/pkg/knowledge"
	"companion-bot-be/pkg/random"
	"companion-bot-be/pkg/store"
)

type recordingPublisher struct {
	mu    sync.Mutex
	ended []events.ConversationEnded
}

func (p *recordingPublisher) PublishConversationEnded(ctx context.Context, event events.ConversationEnded) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ended = append(p.ended, event)
	return nil
}

func (p *recordingPublisher) published() []events.ConversationEnded {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.ConversationEnded(nil), p.ended...)
}

func newTestCompanionService(t *testing.T) (ICompanionService, *recordingPublisher) {
	t.Helper()
	kb, _, err := knowledge.Default()
	require.NoError(t, err)

	pub := &recordingPublisher{}
	controller := dialogue.NewController(kb, random.New(3), logger.NewNopLogger())
	svc := NewCompanionService(controller, memory.NewSessionRepository(time.Hour), pub, logger.NewNopLogger())
	return svc, pub
}

func send(t *testing.T, svc ICompanionService, userId, sessionId string, inputs ...string) *dto.SendMessageResponse {
	t.Helper()
	var res *dto.SendMessageResponse
	for _, in := range inputs {
		var err error
		res, err = svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{SessionId: sessionId, Message: in})
		require.NoError(t, err)
	}
	return res
}

func TestCompanionService_CreateSession(t *testing.T) {
	svc, _ := newTestCompanionService(t)

	res, err := svc.CreateSession(context.Background(), "user-1")
	require.NoError(t, err)

	assert.NotEmpty(t, res.Id)
	assert.Equal(t, string(store.StageAwaitingInitialInput), res.Stage)
	assert.True(t, res.InputEnabled)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, dialogue.OpeningMessage, res.Messages[0].Content)
	assert.Equal(t, store.RoleAssistant, res.Messages[0].Role)
}

func TestCompanionService_SendMessagePersistsProgress(t *testing.T) {
	svc, _ := newTestCompanionService(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	res := send(t, svc, "user-1", created.Id, "i am stressed")
	assert.Equal(t, string(store.StageAwaitingMoodConfirmation), res.Stage)
	assert.Contains(t, res.Reply, "**Stressed**")
	assert.True(t, res.InputEnabled)

	session, err := svc.GetSession(ctx, "user-1", created.Id)
	require.NoError(t, err)
	assert.Equal(t, "Stressed", session.Mood)
	assert.Len(t, session.Messages, 3)
}

func TestCompanionService_OwnershipAndMissing(t *testing.T) {
	svc, _ := newTestCompanionService(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "owner")
	require.NoError(t, err)

	_, err = svc.GetSession(ctx, "intruder", created.Id)
	assert.ErrorIs(t, err, ErrSessionForbidden)

	_, err = svc.SendMessage(ctx, "intruder", &dto.SendMessageRequest{SessionId: created.Id, Message: "hi"})
	assert.ErrorIs(t, err, ErrSessionForbidden)

	_, err = svc.GetSession(ctx, "owner", "does-not-exist")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.ExportTranscript(ctx, "owner", "does-not-exist")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCompanionService_EndPublishesOnce(t *testing.T) {
	svc, pub := newTestCompanionService(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	// Anxious/High only has three General suggestions
	res := send(t, svc, "user-1", created.Id, "I feel so anxious about my exams", "yes", "9", "nothing much", "no", "no", "no")
	assert.Equal(t, string(store.StageConversationEnd), res.Stage)
	assert.False(t, res.InputEnabled)

	ended := pub.published()
	require.Len(t, ended, 1)
	assert.Equal(t, created.Id, ended[0].SessionId)
	assert.Equal(t, "user-1", ended[0].UserId)
	assert.Equal(t, "Anxious", ended[0].Mood)
	assert.Equal(t, string(knowledge.IntensityHigh), ended[0].Intensity)
	assert.Equal(t, knowledge.GeneralTrigger, ended[0].Trigger)
	assert.Len(t, ended[0].Suggestions, 3)
	assert.Equal(t, 7, ended[0].Turns)

	res = send(t, svc, "user-1", created.Id, "hello?")
	assert.False(t, res.InputEnabled)
	assert.Len(t, pub.published(), 1)

	res = send(t, svc, "user-1", created.Id, "restart")
	assert.Equal(t, dialogue.RestartMessage, res.Reply)
	assert.True(t, res.InputEnabled)
	assert.Len(t, pub.published(), 1)
}

func TestCompanionService_RestartSession(t *testing.T) {
	svc, _ := newTestCompanionService(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	send(t, svc, "user-1", created.Id, "i am stressed", "yes")

	res, err := svc.RestartSession(ctx, "user-1", created.Id)
	require.NoError(t, err)
	assert.Equal(t, dialogue.RestartMessage, res.Reply)
	assert.Equal(t, string(store.StageAwaitingInitialInput), res.Stage)

	session, err := svc.GetSession(ctx, "user-1", created.Id)
	require.NoError(t, err)
	assert.Empty(t, session.Mood)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, dialogue.RestartMessage, session.Messages[0].Content)
}

func TestCompanionService_ExportTranscript(t *testing.T) {
	svc, _ := newTestCompanionService(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	send(t, svc, "user-1", created.Id, "i am stressed")

	res, err := svc.ExportTranscript(ctx, "user-1", created.Id)
	require.NoError(t, err)

	assert.Equal(t, dialogue.TranscriptFileName, res.FileName)
	assert.True(t, strings.HasPrefix(res.Content, "Your Conversation with Companion Bot\n"))
	assert.Contains(t, res.Content, "You: i am stressed")
	assert.Contains(t, res.Content, "Bot: I sense you might be feeling Stressed.")
	assert.NotContains(t, res.Content, dialogue.OpeningMessage)
	assert.NotContains(t, res.Content, "**")
}

func TestCompanionService_Classify(t *testing.T) {
	svc, _ := newTestCompanionService(t)

	res := svc.Classify(context.Background(), "my boss and my exams")
	assert.Equal(t, "Work", res.PrimaryTrigger)
	assert.Equal(t, "Study", res.SecondaryTrigger)
	assert.True(t, res.Ambiguous)
	require.NotEmpty(t, res.Scores)
	assert.Equal(t, 100, res.Scores[0].Score)

	res = svc.Classify(context.Background(), "im worried sick about money")
	assert.Equal(t, "Anxious", res.Mood)
}

func TestCompanionService_DeleteSession(t *testing.T) {
	svc, _ := newTestCompanionService(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteSession(ctx, "intruder", created.Id), ErrSessionForbidden)
	require.NoError(t, svc.DeleteSession(ctx, "user-1", created.Id))

	_, err = svc.GetSession(ctx, "user-1", created.Id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCompanionService_ConcurrentTurnsAreSerialised(t *testing.T) {
	svc, _ := newTestCompanionService(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SendMessage(ctx, "user-1", &dto.SendMessageRequest{SessionId: created.Id, Message: "asdfgh"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	session, err := svc.GetSession(ctx, "user-1", created.Id)
	require.NoError(t, err)
	// opening line plus ten user/bot pairs, none lost
	assert.Len(t, session.Messages, 21)
}

func TestCompanionService_LockStripesAreFixed(t *testing.T) {
	svc, _ := newTestCompanionService(t)
	cs := svc.(*companionService)
	ctx := context.Background()

	id := "0b6f1f7e-8a4e-4c55-9d0c-3f7d2a1b9e01"
	assert.Same(t, cs.stripe(id), cs.stripe(strings.Clone(id)))

	// Unknown ids leave their stripe free once the request is over
	for i := 0; i < 1000; i++ {
		bogus := strings.Repeat("x", i%40+1)
		_, err := svc.SendMessage(ctx, "user-1", &dto.SendMessageRequest{SessionId: bogus, Message: "hi"})
		assert.ErrorIs(t, err, ErrSessionNotFound)

		m := cs.stripe(bogus)
		require.True(t, m.TryLock(), bogus)
		m.Unlock()
	}
}
