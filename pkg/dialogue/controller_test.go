package dialogue

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion-bot-be/internal/pkg/logger"
	"companion-bot-be/pkg/knowledge"
	"companion-bot-be/pkg/random"
	"companion-bot-be/pkg/store"
)

func newTestController(t *testing.T, seed uint64) (*Controller, *knowledge.KnowledgeBase) {
	t.Helper()
	kb, _, err := knowledge.Default()
	require.NoError(t, err)
	return NewController(kb, random.New(seed), logger.NewNopLogger()), kb
}

// walk advances through inputs and returns the last reply.
func walk(c *Controller, s *store.Session, inputs ...string) string {
	var reply string
	for _, in := range inputs {
		reply, _ = c.Advance(s, in)
	}
	return reply
}

func TestAdvance_InitialInput(t *testing.T) {
	c, kb := newTestController(t, 1)

	t.Run("mood detected", func(t *testing.T) {
		s := c.NewSession("s", "u")
		reply, s := c.Advance(s, "I feel so anxious about my exams")

		assert.Equal(t, "I sense you might be feeling **Anxious**. Is that right? (yes/no)", reply)
		assert.Equal(t, store.StageAwaitingMoodConfirmation, s.Stage)
		assert.Equal(t, "Anxious", s.DetectedMood)
	})

	t.Run("greeting", func(t *testing.T) {
		s := c.NewSession("s", "u")
		reply, s := c.Advance(s, "HEY there")

		assert.Contains(t, greetingReplies, reply)
		assert.Equal(t, store.StageAwaitingInitialInput, s.Stage)
	})

	t.Run("unknown", func(t *testing.T) {
		s := c.NewSession("s", "u")
		reply, s := c.Advance(s, "asdfgh")

		assert.Contains(t, kb.UnknownResponses(), reply)
		assert.Equal(t, store.StageAwaitingInitialInput, s.Stage)
		assert.Empty(t, s.DetectedMood)
	})

	t.Run("empty input", func(t *testing.T) {
		s := c.NewSession("s", "u")
		reply, s := c.Advance(s, "")

		assert.NotEmpty(t, reply)
		assert.Equal(t, store.StageAwaitingInitialInput, s.Stage)
	})
}

func TestAdvance_MoodConfirmation(t *testing.T) {
	c, _ := newTestController(t, 1)

	s := c.NewSession("s", "u")
	reply := walk(c, s, "i am stressed", "YES, exactly")
	assert.Equal(t, "On a scale of 1–10, how **Stressed** do you feel right now?", reply)
	assert.Equal(t, store.StageAwaitingIntensity, s.Stage)

	s = c.NewSession("s", "u")
	reply = walk(c, s, "i am stressed", "not really")
	assert.Equal(t, declinedMoodReply, reply)
	assert.Equal(t, store.StageAwaitingInitialInput, s.Stage)
}

func TestAdvance_Intensity(t *testing.T) {
	c, _ := newTestController(t, 1)

	tests := []struct {
		input     string
		stage     store.Stage
		intensity knowledge.Intensity
	}{
		{"11", store.StageAwaitingIntensity, ""},
		{"0", store.StageAwaitingIntensity, ""},
		{"seven", store.StageAwaitingIntensity, ""},
		{"7.5", store.StageAwaitingIntensity, ""},
		{"2", store.StageAwaitingTrigger, knowledge.IntensityLow},
		{" 5 ", store.StageAwaitingTrigger, knowledge.IntensityMedium},
		{"10", store.StageAwaitingTrigger, knowledge.IntensityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := c.NewSession("s", "u")
			walk(c, s, "I feel so anxious about my exams", "yes")
			require.Equal(t, store.StageAwaitingIntensity, s.Stage)

			reply, s := c.Advance(s, tt.input)

			assert.Equal(t, tt.stage, s.Stage)
			assert.Equal(t, tt.intensity, s.Intensity)
			if tt.stage == store.StageAwaitingIntensity {
				assert.Equal(t, "Please provide a number between 1 and 10.", reply)
			} else {
				assert.Equal(t, triggerQuestion, reply)
			}
		})
	}
}

func TestAdvance_TriggerClarification(t *testing.T) {
	c, _ := newTestController(t, 3)

	tests := []struct {
		answer  string
		trigger string
	}{
		{"mostly work honestly", "Work"},
		{"I'd say STUDY", "Study"},
		{"neither really", knowledge.GeneralTrigger},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			s := c.NewSession("s", "u")
			reply := walk(c, s, "I feel so anxious about my exams", "yes", "5", "my boss and my exams")

			require.Equal(t, "It sounds like this could be about **Work** or **Study**. Which one fits better?", reply)
			require.Equal(t, store.StageAwaitingTriggerClarification, s.Stage)
			assert.Equal(t, []string{"Work", "Study"}, s.Trigger.Candidates)

			reply, s = c.Advance(s, tt.answer)

			assert.Equal(t, tt.trigger, s.Trigger.Resolved)
			assert.True(t, strings.HasPrefix(reply, "Got it. You're feeling **Anxious** at a **Medium** intensity, and it seems to be triggered by **"+strings.ToLower(tt.trigger)+"**."))
			assert.Contains(t, reply, "Here is a suggestion for you:")
			assert.Equal(t, store.StageAwaitingSolutionFeedback, s.Stage)
			assert.Len(t, s.UsedSuggestions, 1)
		})
	}
}

func TestAdvance_SingleTriggerGoesStraightToSuggestion(t *testing.T) {
	c, kb := newTestController(t, 5)

	s := c.NewSession("s", "u")
	reply := walk(c, s, "I feel so anxious about my exams", "yes", "2", "my boss is awful")

	assert.Equal(t, "Work", s.Trigger.Resolved)
	assert.Equal(t, store.StageAwaitingSolutionFeedback, s.Stage)

	bucket, _ := kb.Bucket("Anxious", knowledge.IntensityLow)
	shown := s.UsedSuggestions.List()
	require.Len(t, shown, 1)
	assert.Contains(t, bucket["Work"], shown[0])
	assert.Contains(t, reply, "> "+shown[0]+"\n\nDoes this help at all? (yes/no)")
}

func TestAdvance_FeedbackLoopUntilExhausted(t *testing.T) {
	c, _ := newTestController(t, 9)

	// Anxious/High only has a General bucket with three suggestions
	s := c.NewSession("s", "u")
	walk(c, s, "I feel so anxious about my exams", "yes", "9", "nothing much")
	require.Equal(t, knowledge.GeneralTrigger, s.Trigger.Resolved)
	require.Equal(t, store.StageAwaitingSolutionFeedback, s.Stage)

	for i := 0; i < 2; i++ {
		reply, _ := c.Advance(s, "no")
		assert.True(t, strings.HasPrefix(reply, "Okay, let's try something else.\n\n> "))
		assert.Equal(t, store.StageAwaitingSolutionFeedback, s.Stage)
	}
	assert.Len(t, s.UsedSuggestions, 3)

	reply, _ := c.Advance(s, "no")
	assert.Equal(t, feedbackExhaustedEnd, reply)
	assert.Equal(t, store.StageConversationEnd, s.Stage)
	assert.True(t, s.IsEnded())
}

func TestAdvance_NextStep(t *testing.T) {
	c, _ := newTestController(t, 11)

	s := c.NewSession("s", "u")
	walk(c, s, "I feel so anxious about my exams", "yes", "9", "nothing much")

	reply, _ := c.Advance(s, "yes it helps")
	assert.Equal(t, nextStepQuestion, reply)
	assert.Equal(t, store.StageAwaitingNextStep, s.Stage)

	reply, _ = c.Advance(s, "ANOTHER please")
	assert.True(t, strings.HasPrefix(reply, "Here you go:\n\n> "))
	assert.Equal(t, store.StageAwaitingSolutionFeedback, s.Stage)

	walk(c, s, "yes", "another")
	assert.Len(t, s.UsedSuggestions, 3)

	reply = walk(c, s, "yes", "another")
	assert.Equal(t, nextStepExhaustedEnd, reply)
	assert.Equal(t, store.StageConversationEnd, s.Stage)

	s = c.NewSession("s", "u")
	reply = walk(c, s, "I feel so anxious about my exams", "yes", "9", "nothing much", "yes", "end")
	assert.Equal(t, farewellReply, reply)
	assert.Equal(t, store.StageConversationEnd, s.Stage)
}

func TestAdvance_NoSuggestionEndsConversation(t *testing.T) {
	kb := &knowledge.KnowledgeBase{
		Moods:     []knowledge.Category{{Name: "Bored", Keywords: []string{"bored"}}},
		Triggers:  []knowledge.Category{{Name: "Work", Keywords: []string{"boss"}}},
		Responses: map[string][]string{},
	}
	c := NewController(kb, random.New(1), logger.NewNopLogger())

	s := c.NewSession("s", "u")
	reply := walk(c, s, "so bored", "yes", "4", "my boss")

	assert.Equal(t, "Got it. You're feeling **Bored** at a **Medium** intensity, and it seems to be triggered by **work**.\n\n"+noSuggestionClosing, reply)
	assert.Equal(t, store.StageConversationEnd, s.Stage)

	s = c.NewSession("s", "u")
	reply, _ = c.Advance(s, "qwerty")
	assert.Equal(t, unknownFallback, reply)
}

func TestAdvance_ConversationEnd(t *testing.T) {
	c, _ := newTestController(t, 13)

	s := c.NewSession("s", "u")
	walk(c, s, "I feel so anxious about my exams", "yes", "9", "nothing much", "no", "no", "no")
	require.True(t, s.IsEnded())

	reply, _ := c.Advance(s, "hello?")
	assert.Equal(t, conversationEndedHint, reply)
	assert.True(t, s.IsEnded())

	reply, _ = c.Advance(s, "  Start Over ")
	assert.Equal(t, RestartMessage, reply)
	assert.Equal(t, store.StageAwaitingInitialInput, s.Stage)
	assert.Empty(t, s.UsedSuggestions)
	assert.Len(t, s.Messages, 1)
}

func TestRestart_MakesExhaustedBucketAvailableAgain(t *testing.T) {
	c, _ := newTestController(t, 17)

	s := c.NewSession("s", "u")
	walk(c, s, "I feel so anxious about my exams", "yes", "9", "nothing much", "no", "no", "no")
	require.Equal(t, store.StageConversationEnd, s.Stage)
	require.Len(t, s.UsedSuggestions, 3)

	reply, s := c.Restart(s)
	assert.Equal(t, RestartMessage, reply)
	assert.Equal(t, store.StageAwaitingInitialInput, s.Stage)
	assert.Empty(t, s.UsedSuggestions)
	assert.Empty(t, s.DetectedMood)
	assert.Empty(t, s.Intensity)
	assert.Equal(t, store.TriggerState{}, s.Trigger)

	reply = walk(c, s, "I feel so anxious about my exams", "yes", "9", "nothing much")
	assert.Contains(t, reply, "Here is a suggestion for you:")
	assert.Equal(t, store.StageAwaitingSolutionFeedback, s.Stage)
	assert.Len(t, s.UsedSuggestions, 1)
}

func TestAdvance_Transcript(t *testing.T) {
	kb, _, err := knowledge.Default()
	require.NoError(t, err)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewController(kb, random.New(1), logger.NewNopLogger(), WithClock(func() time.Time { return fixed }))

	s := c.NewSession("s-1", "u-1")
	require.Len(t, s.Messages, 1)
	assert.Equal(t, OpeningMessage, s.Messages[0].Content)

	reply, _ := c.Advance(s, "i am stressed")

	require.Len(t, s.Messages, 3)
	assert.Equal(t, store.Message{Role: store.RoleUser, Content: "i am stressed", CreatedAt: fixed}, s.Messages[1])
	assert.Equal(t, store.Message{Role: store.RoleAssistant, Content: reply, CreatedAt: fixed}, s.Messages[2])
	assert.Equal(t, 1, s.UserTurns())
	assert.Equal(t, fixed, s.UpdatedAt)
}

func TestSameSeedSameConversation(t *testing.T) {
	run := func() []string {
		c, _ := newTestController(t, 21)
		s := c.NewSession("s", "u")
		walk(c, s, "I feel so anxious about my exams", "yes", "9", "nothing much", "no", "no")
		var out []string
		for _, m := range s.Messages {
			out = append(out, m.Content)
		}
		return out
	}

	assert.Equal(t, run(), run())
}

func TestClassifyEntryPoints(t *testing.T) {
	c, _ := newTestController(t, 1)

	assert.Equal(t, "Anxious", c.ClassifyMood("I feel so anxious about my exams"))
	match := c.ClassifyTrigger("my boss and my exams")
	assert.Equal(t, "Work", match.Primary)
	assert.Equal(t, "Study", match.Secondary)
}
