package solution

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"companion-bot-be/pkg/knowledge"
	"companion-bot-be/pkg/random"
)

const (
	// NoAdviceMessage is returned when the knowledge base has nothing for the mood, intensity or trigger.
	NoAdviceMessage = "I don’t have specific advice for this, but I’m here to listen 💙"
	// ExhaustedMessage is returned once every suggestion in the active bucket has been shown.
	ExhaustedMessage = "I’ve shared everything I had for this. Maybe we can just talk more 💙"
)

// UsedSet records suggestions already shown in one conversation.
type UsedSet interface {
	Contains(suggestion string) bool
	Add(suggestion string)
}

// Selector picks unused suggestions from the solutions table.
type Selector struct {
	kb  *knowledge.KnowledgeBase
	src random.Source
}

func NewSelector(kb *knowledge.KnowledgeBase, src random.Source) *Selector {
	return &Selector{kb: kb, src: src}
}

// Select returns an unused suggestion for the triple and marks it used.
// found is false when the text is one of the fallback messages.
func (s *Selector) Select(mood string, intensity knowledge.Intensity, trigger string, used UsedSet) (string, bool) {
	bucket, ok := s.kb.Bucket(mood, intensity)
	if !ok {
		return NoAdviceMessage, false
	}

	suggestions, ok := bucket[Capitalize(trigger)]
	if !ok {
		suggestions, ok = bucket[knowledge.GeneralTrigger]
		if !ok {
			return NoAdviceMessage, false
		}
	}

	candidates := make([]string, 0, len(suggestions))
	for _, suggestion := range suggestions {
		if !used.Contains(suggestion) {
			candidates = append(candidates, suggestion)
		}
	}
	if len(candidates) == 0 {
		return ExhaustedMessage, false
	}

	pick := random.Choice(s.src, candidates)
	used.Add(pick)
	return pick, true
}

// Capitalize upper-cases the first rune and lower-cases the rest.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
