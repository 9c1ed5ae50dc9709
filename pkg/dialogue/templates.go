package dialogue

import "fmt"

const (
	OpeningMessage = "I'm here to listen and help you navigate your feelings. What's on your mind?"
	RestartMessage = "Of course. Let's talk. How are you feeling?"

	declinedMoodReply     = "Thanks for clarifying 💙 Tell me more about how you’re feeling."
	intensityReprompt     = "Please provide a number between 1 and 10."
	triggerQuestion       = "What do you think is triggering this? (e.g., work, study, relationships, health)"
	nextStepQuestion      = "I'm glad to hear that! Would you like to try another suggestion or end our chat for now? (type 'another' or 'end')"
	feedbackExhaustedEnd  = "I’ve shared everything I had for this. We can end here, or just talk more if you like. 💙"
	nextStepExhaustedEnd  = "I’m out of new suggestions for this topic. I hope what we’ve discussed was helpful. Take care. 💙"
	farewellReply         = "Take care! I’ll be here whenever you need me 🌸"
	noSuggestionClosing   = "Unfortunately, I don't have a specific suggestion for this right now, but I'm here to listen. 💙"
	conversationEndedHint = "Our chat has ended for now. Type 'restart' whenever you'd like to start a new conversation. 💙"

	// Used only when the knowledge base ships no Unknown responses.
	unknownFallback = "I'm not sure I understood. Could you tell me a little more about how you're feeling?"
)

var greetingReplies = []string{
	"Hey there! 😊 What’s on your mind?",
	"Hello friend 💙 How’s your day going?",
	"Hi! I’m here to listen — what’s up?",
}

func moodConfirmation(mood string) string {
	return fmt.Sprintf("I sense you might be feeling **%s**. Is that right? (yes/no)", mood)
}

func intensityQuestion(mood string) string {
	return fmt.Sprintf("On a scale of 1–10, how **%s** do you feel right now?", mood)
}

func clarificationQuestion(first, second string) string {
	return fmt.Sprintf("It sounds like this could be about **%s** or **%s**. Which one fits better?", first, second)
}

func summary(mood, intensity, trigger string) string {
	return fmt.Sprintf("Got it. You're feeling **%s** at a **%s** intensity, and it seems to be triggered by **%s**.", mood, intensity, trigger)
}

func firstSuggestion(summary, suggestion string) string {
	return fmt.Sprintf("%s\n\nHere is a suggestion for you:\n\n> %s\n\nDoes this help at all? (yes/no)", summary, suggestion)
}

func noSuggestion(summary string) string {
	return summary + "\n\n" + noSuggestionClosing
}

func retrySuggestion(suggestion string) string {
	return fmt.Sprintf("Okay, let's try something else.\n\n> %s\n\nHow about this one? Does this help? (yes/no)", suggestion)
}

func anotherSuggestion(suggestion string) string {
	return fmt.Sprintf("Here you go:\n\n> %s\n\nDoes this help at all? (yes/no)", suggestion)
}
