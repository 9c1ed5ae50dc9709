package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion-bot-be/pkg/knowledge"
)

func defaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	kb, _, err := knowledge.Default()
	require.NoError(t, err)
	return New(kb)
}

func TestDetectMood(t *testing.T) {
	c := defaultClassifier(t)

	tests := []struct {
		input string
		want  string
	}{
		{"HEY there", MoodGreeting},
		{"hello", MoodGreeting},
		{"sup", MoodGreeting},
		{"not good", MoodSadLonely},
		{"I don't feel fine today", MoodSadLonely},
		{"I am not happy at all", MoodSadLonely},
		{"I feel so anxious about my exams", "Anxious"},
		{"i am stressed", "Stressed"},
		{"I feel lonely", MoodSadLonely},
		{"im so tired", "Tired"},
		{"i am happy", "Happy"},
		{"yoga", MoodUnknown},
		{"hey!", MoodUnknown},
		{"asdfgh", MoodUnknown},
		{"", MoodUnknown},
		{"   ", MoodUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, c.DetectMood(tt.input))
		})
	}
}

func TestDetectMood_FirstMatchWins(t *testing.T) {
	kb := &knowledge.KnowledgeBase{
		Moods: []knowledge.Category{
			{Name: "Tired", Keywords: []string{"exhausted"}},
			{Name: "Stressed", Keywords: []string{"exhausted", "stressed"}},
		},
	}
	c := New(kb)

	assert.Equal(t, "Tired", c.DetectMood("stressed and exhausted"))
}

func TestDetectTrigger(t *testing.T) {
	c := defaultClassifier(t)

	tests := []struct {
		input     string
		primary   string
		secondary string
	}{
		{"my boss is awful", "Work", ""},
		{"I had a fight with my partner", "Relationships", ""},
		{"my health", "Health", ""},
		{"my boss and my exams", "Work", "Study"},
		{"my boss and my girlfriend", "Work", "Relationships"},
		{"im worried sick about money", "Health", "Money"},
		{"nothing much", TriggerGeneral, ""},
		{"", TriggerGeneral, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := c.DetectTrigger(tt.input)
			assert.Equal(t, tt.primary, got.Primary)
			assert.Equal(t, tt.secondary, got.Secondary)
			assert.Equal(t, tt.secondary != "", got.Ambiguous())
		})
	}
}

func TestDetectTrigger_AmbiguityMargin(t *testing.T) {
	near := New(&knowledge.KnowledgeBase{Triggers: []knowledge.Category{
		{Name: "Work", Keywords: []string{"quarterly review meeting"}},
		{Name: "Study", Keywords: []string{"quarterly review meetinx"}},
	}})
	far := New(&knowledge.KnowledgeBase{Triggers: []knowledge.Category{
		{Name: "Work", Keywords: []string{"quarterly review meeting"}},
		{Name: "Study", Keywords: []string{"quarterly revxew meetinx"}},
	}})

	got := near.DetectTrigger("My quarterly review meeting")
	require.True(t, got.Ambiguous())
	assert.Equal(t, "Work", got.Primary)
	assert.Equal(t, "Study", got.Secondary)
	assert.Equal(t, []CategoryScore{{"Work", 100}, {"Study", 96}}, got.Scores)

	got = far.DetectTrigger("My quarterly review meeting")
	assert.False(t, got.Ambiguous())
	assert.Equal(t, "Work", got.Primary)
	assert.Equal(t, []CategoryScore{{"Work", 100}, {"Study", 92}}, got.Scores)
}

func TestDetectTrigger_TieKeepsKnowledgeBaseOrder(t *testing.T) {
	c := New(&knowledge.KnowledgeBase{Triggers: []knowledge.Category{
		{Name: "Money", Keywords: []string{"rent"}},
		{Name: "Health", Keywords: []string{"sleep"}},
		{Name: "Work", Keywords: []string{"boss"}},
	}})

	got := c.DetectTrigger("my boss cares about sleep")
	assert.Equal(t, "Health", got.Primary)
	assert.Equal(t, "Work", got.Secondary)
	assert.Equal(t, "Money", got.Scores[2].Category)
}

func TestDetectTrigger_KeywordOrderInvariant(t *testing.T) {
	kb, _, err := knowledge.Default()
	require.NoError(t, err)

	reversed := &knowledge.KnowledgeBase{}
	for _, cat := range kb.Triggers {
		keywords := make([]string, len(cat.Keywords))
		for i, k := range cat.Keywords {
			keywords[len(keywords)-1-i] = k
		}
		reversed.Triggers = append(reversed.Triggers, knowledge.Category{Name: cat.Name, Keywords: keywords})
	}

	original, permuted := New(kb), New(reversed)
	inputs := []string{
		"my boss and my exams",
		"I had a fight with my partner",
		"im worried sick about money",
		"the rent is due and my job is awful",
		"nothing much",
	}
	for _, input := range inputs {
		assert.Equal(t, original.DetectTrigger(input), permuted.DetectTrigger(input), input)
	}
}
