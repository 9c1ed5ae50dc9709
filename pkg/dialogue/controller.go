package dialogue

import (
	"strings"
	"time"

	"companion-bot-be/internal/pkg/logger"
	"companion-bot-be/pkg/classifier"
	"companion-bot-be/pkg/knowledge"
	"companion-bot-be/pkg/random"
	"companion-bot-be/pkg/solution"
	"companion-bot-be/pkg/store"
)

const logModule = "Dialogue"

// RestartCommands start a new conversation once the current one has ended.
var RestartCommands = []string{"restart", "new chat", "start over", "start again"}

// Controller runs the conversation state machine. It keeps no per-conversation state:
// everything lives in the Session passed to Advance, so one Controller serves every session.
// A single Session must not be advanced concurrently.
type Controller struct {
	kb         *knowledge.KnowledgeBase
	classifier *classifier.Classifier
	selector   *solution.Selector
	rng        random.Source
	logger     logger.ILogger
	now        func() time.Time
}

type Option func(*Controller)

// WithClock replaces time.Now for transcript timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func NewController(kb *knowledge.KnowledgeBase, rng random.Source, log logger.ILogger, opts ...Option) *Controller {
	c := &Controller{
		kb:         kb,
		classifier: classifier.New(kb),
		selector:   solution.NewSelector(kb, rng),
		rng:        rng,
		logger:     log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewSession starts a conversation waiting for the user's first message.
func (c *Controller) NewSession(id, userID string) *store.Session {
	return store.NewSession(id, userID, OpeningMessage, c.now())
}

func (c *Controller) ClassifyMood(input string) string {
	return c.classifier.DetectMood(input)
}

func (c *Controller) ClassifyTrigger(input string) classifier.TriggerMatch {
	return c.classifier.DetectTrigger(input)
}

// Advance feeds one user utterance through the state machine. Both the utterance and the
// reply are appended to the transcript. The reply is never empty.
func (c *Controller) Advance(session *store.Session, input string) (string, *store.Session) {
	if session == nil {
		session = c.NewSession("", "")
	}

	from := session.Stage
	session.Append(store.RoleUser, input, c.now())

	var reply string
	switch session.Stage {
	case store.StageAwaitingInitialInput:
		reply = c.onInitialInput(session, input)
	case store.StageAwaitingMoodConfirmation:
		reply = c.onMoodConfirmation(session, input)
	case store.StageAwaitingIntensity:
		reply = c.onIntensity(session, input)
	case store.StageAwaitingTrigger:
		reply = c.onTrigger(session, input)
	case store.StageAwaitingTriggerClarification:
		reply = c.onTriggerClarification(session, input)
	case store.StageAwaitingSolutionFeedback:
		reply = c.onSolutionFeedback(session, input)
	case store.StageAwaitingNextStep:
		reply = c.onNextStep(session, input)
	case store.StageConversationEnd:
		if isRestartCommand(input) {
			return c.Restart(session)
		}
		reply = conversationEndedHint
	default:
		c.logger.Warn(logModule, "Unknown stage, starting over", map[string]interface{}{
			"session_id": session.ID,
			"stage":      session.Stage,
		})
		session.Reset(OpeningMessage, c.now())
		session.Append(store.RoleUser, input, c.now())
		reply = c.onInitialInput(session, input)
	}

	session.Append(store.RoleAssistant, reply, c.now())

	c.logger.Debug(logModule, "Advanced conversation", map[string]interface{}{
		"session_id": session.ID,
		"from":       from,
		"to":         session.Stage,
	})
	return reply, session
}

// Restart wipes the session, including used suggestions, as if a new chat had been opened.
func (c *Controller) Restart(session *store.Session) (string, *store.Session) {
	if session == nil {
		session = c.NewSession("", "")
	}
	session.Reset(RestartMessage, c.now())

	c.logger.Debug(logModule, "Restarted conversation", map[string]interface{}{
		"session_id": session.ID,
	})
	return RestartMessage, session
}

func isRestartCommand(input string) bool {
	text := strings.ToLower(strings.TrimSpace(input))
	for _, cmd := range RestartCommands {
		if text == cmd {
			return true
		}
	}
	return false
}
