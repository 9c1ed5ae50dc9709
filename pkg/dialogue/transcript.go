package dialogue

import (
	"strings"

	"companion-bot-be/pkg/store"
)

const (
	TranscriptFileName = "companion_bot_chat.txt"
	transcriptTitle    = "Your Conversation with Companion Bot"
)

// FormatTranscript renders the "Save Chat" text export. The opening line is skipped
// and markdown bold markers are stripped.
func FormatTranscript(messages []store.Message) string {
	var b strings.Builder
	b.WriteString(transcriptTitle + "\n")
	b.WriteString(strings.Repeat("=", 40) + "\n\n")

	for i, m := range messages {
		if i == 0 {
			continue
		}
		role := "Bot"
		if m.Role == store.RoleUser {
			role = "You"
		}
		b.WriteString(role + ": " + strings.ReplaceAll(m.Content, "**", "") + "\n\n")
	}
	return b.String()
}
