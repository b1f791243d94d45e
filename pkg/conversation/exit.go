package conversation

import "strings"

// DefaultExitPhrases are the spoken commands that end a session.
// Matching is case-insensitive substring, so "stop it" or "Goodbye!"
// both end the conversation.
var DefaultExitPhrases = []string{
	"goodbye",
	"exit",
	"quit",
	"stop",
	"bye",
	"see you later",
}

// IsExitPhrase reports whether the transcript contains any of the
// given exit phrases.
func IsExitPhrase(transcript string, phrases []string) bool {
	lower := strings.ToLower(transcript)
	for _, p := range phrases {
		if p == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
