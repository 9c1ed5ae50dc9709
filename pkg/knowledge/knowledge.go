package knowledge

// Intensity is the three-level bucket derived from a 1-10 self rating.
type Intensity string

const (
	IntensityLow    Intensity = "Low"
	IntensityMedium Intensity = "Medium"
	IntensityHigh   Intensity = "High"
)

// GeneralTrigger is the catch-all bucket used when no trigger category fits.
const GeneralTrigger = "General"

// UnknownResponsesKey names the fallback utterances in the responses table.
const UnknownResponsesKey = "Unknown"

// IntensityFromScore buckets a 1-10 rating. Out of range scores report false.
func IntensityFromScore(score int) (Intensity, bool) {
	switch {
	case score < 1 || score > 10:
		return "", false
	case score <= 3:
		return IntensityLow, true
	case score <= 7:
		return IntensityMedium, true
	default:
		return IntensityHigh, true
	}
}

// ParseIntensity accepts the exact bucket names used as keys in the solutions table.
func ParseIntensity(s string) (Intensity, bool) {
	switch Intensity(s) {
	case IntensityLow, IntensityMedium, IntensityHigh:
		return Intensity(s), true
	}
	return "", false
}

// Category is a named keyword list. Order of categories and keywords follows the source file.
type Category struct {
	Name     string   `json:"name" validate:"required"`
	Keywords []string `json:"keywords" validate:"dive,required"`
}

// Solutions maps mood -> intensity -> trigger (or General) -> suggestions.
type Solutions map[string]map[Intensity]map[string][]string

// KnowledgeBase is loaded once and never mutated afterwards.
type KnowledgeBase struct {
	Moods     []Category          `validate:"required,min=1,dive"`
	Responses map[string][]string `validate:"-"`
	Triggers  []Category          `validate:"required,min=1,dive"`
	Solutions Solutions           `validate:"-"`
}

// Mood returns the mood category with the given name.
func (kb *KnowledgeBase) Mood(name string) (Category, bool) {
	for _, c := range kb.Moods {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// MoodNames lists mood categories in knowledge base order.
func (kb *KnowledgeBase) MoodNames() []string {
	names := make([]string, 0, len(kb.Moods))
	for _, c := range kb.Moods {
		names = append(names, c.Name)
	}
	return names
}

// TriggerNames lists trigger categories in knowledge base order.
func (kb *KnowledgeBase) TriggerNames() []string {
	names := make([]string, 0, len(kb.Triggers))
	for _, c := range kb.Triggers {
		names = append(names, c.Name)
	}
	return names
}

// UnknownResponses are the fallback utterances for unrecognised input.
func (kb *KnowledgeBase) UnknownResponses() []string {
	return kb.Responses[UnknownResponsesKey]
}

// Bucket returns the trigger table for a mood and intensity.
func (kb *KnowledgeBase) Bucket(mood string, intensity Intensity) (map[string][]string, bool) {
	byIntensity, ok := kb.Solutions[mood]
	if !ok {
		return nil, false
	}
	bucket, ok := byIntensity[intensity]
	return bucket, ok
}
