package classifier

import (
	"sort"
	"strings"

	"companion-bot-be/pkg/fuzzy"
	"companion-bot-be/pkg/knowledge"
)

// Mood categories produced outside the knowledge base.
const (
	MoodGreeting  = "Greeting"
	MoodUnknown   = "Unknown"
	MoodSadLonely = "Sad / Lonely"
)

// TriggerGeneral is returned when no trigger category is confident enough.
const TriggerGeneral = knowledge.GeneralTrigger

// Matching thresholds on the 0-100 partial ratio scale.
const (
	// MoodThreshold must be exceeded by a single mood keyword.
	MoodThreshold = 85
	// TriggerKeywordThreshold must be exceeded for a keyword to count towards its category.
	TriggerKeywordThreshold = 75
	// TriggerConfidence is the minimum aggregate score for a trigger to be accepted.
	TriggerConfidence = 70
	// AmbiguityMargin is the widest gap between the top two triggers that still needs clarification.
	AmbiguityMargin = 5
)

var greetingWords = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "heyy": {}, "hola": {}, "yo": {}, "sup": {},
}

var negationMarkers = []string{"not", "no", "never", "n't", "dont", "don't", "isn't", "bad", "worse"}

var positiveWords = []string{"good", "happy", "great", "fine", "okay", "alright"}

// CategoryScore is the best keyword score of one trigger category.
type CategoryScore struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
}

// TriggerMatch is the outcome of trigger detection. Secondary is set only when the match is ambiguous.
type TriggerMatch struct {
	Primary   string          `json:"primary"`
	Secondary string          `json:"secondary,omitempty"`
	Scores    []CategoryScore `json:"scores,omitempty"`
}

// Ambiguous reports whether the caller has to ask the user to choose between two triggers.
func (m TriggerMatch) Ambiguous() bool {
	return m.Secondary != ""
}

// Classifier maps free text onto the mood and trigger taxonomies of a knowledge base.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	kb *knowledge.KnowledgeBase
}

func New(kb *knowledge.KnowledgeBase) *Classifier {
	return &Classifier{kb: kb}
}

// DetectMood returns the first mood whose keyword clears MoodThreshold, after the greeting
// and negated-positive checks. Unrecognised or empty input yields MoodUnknown.
func (c *Classifier) DetectMood(input string) string {
	text := strings.ToLower(input)

	for _, token := range strings.Fields(text) {
		if _, ok := greetingWords[token]; ok {
			return MoodGreeting
		}
	}

	if containsAny(text, negationMarkers) && containsAny(text, positiveWords) {
		return MoodSadLonely
	}

	for _, mood := range c.kb.Moods {
		for _, keyword := range mood.Keywords {
			if fuzzy.PartialRatio(text, strings.ToLower(keyword)) > MoodThreshold {
				return mood.Name
			}
		}
	}

	return MoodUnknown
}

// DetectTrigger ranks trigger categories by their best keyword score.
// Ties keep knowledge base order.
func (c *Classifier) DetectTrigger(input string) TriggerMatch {
	text := strings.ToLower(input)

	scores := make([]CategoryScore, 0, len(c.kb.Triggers))
	for _, trigger := range c.kb.Triggers {
		best := 0
		for _, keyword := range trigger.Keywords {
			score := fuzzy.PartialRatio(text, strings.ToLower(keyword))
			if score > TriggerKeywordThreshold && score > best {
				best = score
			}
		}
		scores = append(scores, CategoryScore{Category: trigger.Name, Score: best})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	if len(scores) == 0 || scores[0].Score < TriggerConfidence {
		return TriggerMatch{Primary: TriggerGeneral, Scores: scores}
	}

	match := TriggerMatch{Primary: scores[0].Category, Scores: scores}
	if len(scores) > 1 {
		second := scores[1]
		if scores[0].Score-second.Score <= AmbiguityMargin && second.Score >= TriggerConfidence {
			match.Secondary = second.Category
		}
	}
	return match
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
