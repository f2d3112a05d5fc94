package chat

import "strings"

// Role identifies who produced a turn.
type Role string

const (
	RoleTherapist Role = "Therapist"
	RoleClient    Role = "Client"
)

// Turn is a single utterance in a session. Turns are values and are never
// edited once appended.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// StripSpeaker removes a leading "<name>:" prefix from an utterance.
func StripSpeaker(text, name string) string {
	trimmed := strings.TrimSpace(text)
	if name == "" {
		return trimmed
	}
	prefix := name + ":"
	if len(trimmed) >= len(prefix) && strings.EqualFold(trimmed[:len(prefix)], prefix) {
		return strings.TrimSpace(trimmed[len(prefix):])
	}
	return trimmed
}

// FormatLines renders turns as "Role: content" lines, used when a prompt needs
// the conversation as plain text.
func FormatLines(turns []Turn) string {
	var builder strings.Builder
	for i, turn := range turns {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(string(turn.Role))
		builder.WriteString(": ")
		builder.WriteString(strings.TrimSpace(turn.Content))
	}
	return builder.String()
}
