package store

import (
	"encoding/json"
	"sort"
	"time"

	"companion-bot-be/pkg/knowledge"
)

// Stage is the position of a conversation in the dialogue state machine
type Stage string

const (
	StageAwaitingInitialInput         Stage = "AWAITING_INITIAL_INPUT"
	StageAwaitingMoodConfirmation     Stage = "AWAITING_MOOD_CONFIRMATION"
	StageAwaitingIntensity            Stage = "AWAITING_INTENSITY"
	StageAwaitingTrigger              Stage = "AWAITING_TRIGGER"
	StageAwaitingTriggerClarification Stage = "AWAITING_TRIGGER_CLARIFICATION"
	StageAwaitingSolutionFeedback     Stage = "AWAITING_SOLUTION_FEEDBACK"
	StageAwaitingNextStep             Stage = "AWAITING_NEXT_STEP"
	StageConversationEnd              Stage = "CONVERSATION_END"
)

// Message roles in the transcript
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one transcript entry
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TriggerState holds either a resolved trigger or, while clarifying, the two candidates
type TriggerState struct {
	Resolved   string   `json:"resolved,omitempty"`
	Candidates []string `json:"candidates,omitempty"`
}

// Pending reports whether the user still has to choose between candidates.
func (t TriggerState) Pending() bool {
	return t.Resolved == "" && len(t.Candidates) == 2
}

// SuggestionSet is the set of suggestions already shown in one conversation.
// It serialises as a sorted JSON array.
type SuggestionSet map[string]struct{}

func (s SuggestionSet) Contains(suggestion string) bool {
	_, ok := s[suggestion]
	return ok
}

func (s SuggestionSet) Add(suggestion string) {
	s[suggestion] = struct{}{}
}

// List returns the suggestions in a stable order.
func (s SuggestionSet) List() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s SuggestionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

func (s *SuggestionSet) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	set := make(SuggestionSet, len(items))
	for _, item := range items {
		set.Add(item)
	}
	*s = set
	return nil
}

// Session represents one conversation. The host owns its lifetime and persistence.
type Session struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Stage  Stage  `json:"stage"`

	// What the user has told us so far
	DetectedMood string              `json:"detected_mood,omitempty"`
	Intensity    knowledge.Intensity `json:"intensity,omitempty"`
	Trigger      TriggerState        `json:"trigger"`

	UsedSuggestions SuggestionSet `json:"used_suggestions"`
	Messages        []Message     `json:"messages"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession starts a conversation with the bot's opening line.
func NewSession(id, userID, opening string, now time.Time) *Session {
	s := &Session{ID: id, UserID: userID, CreatedAt: now}
	s.Reset(opening, now)
	return s
}

// Reset clears everything the conversation learned, including used suggestions,
// and starts a fresh transcript with the opening line.
func (s *Session) Reset(opening string, now time.Time) {
	s.Stage = StageAwaitingInitialInput
	s.DetectedMood = ""
	s.Intensity = ""
	s.Trigger = TriggerState{}
	s.UsedSuggestions = SuggestionSet{}
	s.Messages = []Message{{Role: RoleAssistant, Content: opening, CreatedAt: now}}
	s.UpdatedAt = now
}

// Append adds a transcript entry.
func (s *Session) Append(role, content string, now time.Time) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content, CreatedAt: now})
	s.UpdatedAt = now
}

func (s *Session) IsEnded() bool {
	return s.Stage == StageConversationEnd
}

// UserTurns counts the utterances the user has sent.
func (s *Session) UserTurns() int {
	n := 0
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so stored sessions never alias a live one.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Trigger.Candidates = append([]string(nil), s.Trigger.Candidates...)
	out.UsedSuggestions = make(SuggestionSet, len(s.UsedSuggestions))
	for k := range s.UsedSuggestions {
		out.UsedSuggestions.Add(k)
	}
	out.Messages = append([]Message(nil), s.Messages...)
	return &out
}
