package dialogue

import (
	"strconv"
	"strings"

	"companion-bot-be/pkg/classifier"
	"companion-bot-be/pkg/knowledge"
	"companion-bot-be/pkg/random"
	"companion-bot-be/pkg/store"
)

func (c *Controller) onInitialInput(session *store.Session, input string) string {
	switch mood := c.classifier.DetectMood(input); mood {
	case classifier.MoodGreeting:
		return random.Choice(c.rng, greetingReplies)
	case classifier.MoodUnknown:
		if reply := random.Choice(c.rng, c.kb.UnknownResponses()); reply != "" {
			return reply
		}
		return unknownFallback
	default:
		session.DetectedMood = mood
		session.Stage = store.StageAwaitingMoodConfirmation
		return moodConfirmation(mood)
	}
}

func (c *Controller) onMoodConfirmation(session *store.Session, input string) string {
	if saysYes(input) {
		session.Stage = store.StageAwaitingIntensity
		return intensityQuestion(session.DetectedMood)
	}
	session.Stage = store.StageAwaitingInitialInput
	return declinedMoodReply
}

func (c *Controller) onIntensity(session *store.Session, input string) string {
	score, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return intensityReprompt
	}
	intensity, ok := knowledge.IntensityFromScore(score)
	if !ok {
		return intensityReprompt
	}

	session.Intensity = intensity
	session.Stage = store.StageAwaitingTrigger
	return triggerQuestion
}

func (c *Controller) onTrigger(session *store.Session, input string) string {
	match := c.classifier.DetectTrigger(input)
	if match.Ambiguous() {
		session.Trigger = store.TriggerState{Candidates: []string{match.Primary, match.Secondary}}
		session.Stage = store.StageAwaitingTriggerClarification
		return clarificationQuestion(match.Primary, match.Secondary)
	}

	session.Trigger = store.TriggerState{Resolved: match.Primary}
	return c.summarizeAndSuggest(session)
}

func (c *Controller) onTriggerClarification(session *store.Session, input string) string {
	text := strings.ToLower(input)

	resolved := knowledge.GeneralTrigger
	if session.Trigger.Pending() {
		first, second := session.Trigger.Candidates[0], session.Trigger.Candidates[1]
		switch {
		case strings.Contains(text, strings.ToLower(first)):
			resolved = first
		case strings.Contains(text, strings.ToLower(second)):
			resolved = second
		}
	}

	session.Trigger = store.TriggerState{Resolved: resolved}
	return c.summarizeAndSuggest(session)
}

func (c *Controller) onSolutionFeedback(session *store.Session, input string) string {
	if saysYes(input) {
		session.Stage = store.StageAwaitingNextStep
		return nextStepQuestion
	}

	suggestion, found := c.nextSuggestion(session)
	if !found {
		session.Stage = store.StageConversationEnd
		return feedbackExhaustedEnd
	}
	session.Stage = store.StageAwaitingSolutionFeedback
	return retrySuggestion(suggestion)
}

func (c *Controller) onNextStep(session *store.Session, input string) string {
	if !strings.Contains(strings.ToLower(input), "another") {
		session.Stage = store.StageConversationEnd
		return farewellReply
	}

	suggestion, found := c.nextSuggestion(session)
	if !found {
		session.Stage = store.StageConversationEnd
		return nextStepExhaustedEnd
	}
	session.Stage = store.StageAwaitingSolutionFeedback
	return anotherSuggestion(suggestion)
}

// summarizeAndSuggest names what we learned and offers the first suggestion.
// Without one the conversation closes.
func (c *Controller) summarizeAndSuggest(session *store.Session) string {
	text := summary(session.DetectedMood, string(session.Intensity), strings.ToLower(session.Trigger.Resolved))

	suggestion, found := c.nextSuggestion(session)
	if !found {
		session.Stage = store.StageConversationEnd
		return noSuggestion(text)
	}
	session.Stage = store.StageAwaitingSolutionFeedback
	return firstSuggestion(text, suggestion)
}

func (c *Controller) nextSuggestion(session *store.Session) (string, bool) {
	if session.UsedSuggestions == nil {
		session.UsedSuggestions = store.SuggestionSet{}
	}
	suggestion, found := c.selector.Select(session.DetectedMood, session.Intensity, session.Trigger.Resolved, session.UsedSuggestions)
	if !found {
		c.logger.Info(logModule, "No suggestion available", map[string]interface{}{
			"session_id": session.ID,
			"mood":       session.DetectedMood,
			"intensity":  session.Intensity,
			"trigger":    session.Trigger.Resolved,
			"reason":     suggestion,
		})
	}
	return suggestion, found
}

func saysYes(input string) bool {
	return strings.Contains(strings.ToLower(input), "yes")
}
