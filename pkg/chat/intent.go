package chat

import "strings"

// Intent classifies what kind of turn the user spoke.
type Intent string

const (
	// IntentGreeting is a salutation.
	IntentGreeting Intent = "greeting"

	// IntentQuestion asks for information.
	IntentQuestion Intent = "question"

	// IntentCommand asks the assistant to do something.
	IntentCommand Intent = "command"

	// IntentGeneral is anything else.
	IntentGeneral Intent = "general"
)

// Keyword tables for intent detection. Matching is plain substring on
// the lowercased utterance, greetings checked first.
var (
	greetingWords = []string{"hello", "hi", "hey", "good morning", "good afternoon"}
	questionWords = []string{"what", "how", "why", "when", "where", "who"}
	commandWords  = []string{"please", "can you", "could you", "help me"}
)

// Classify detects the intent of a user utterance with keyword rules.
func Classify(text string) Intent {
	lower := strings.ToLower(text)

	for _, w := range greetingWords {
		if strings.Contains(lower, w) {
			return IntentGreeting
		}
	}
	for _, w := range questionWords {
		if strings.Contains(lower, w) {
			return IntentQuestion
		}
	}
	for _, w := range commandWords {
		if strings.Contains(lower, w) {
			return IntentCommand
		}
	}
	return IntentGeneral
}

// Prefix annotates user content with the detected intent before it is
// sent for completion. General turns pass through unchanged.
func (i Intent) Prefix(text string) string {
	switch i {
	case IntentGreeting:
		return "User greeted me with: " + text
	case IntentQuestion:
		return "User asked a question: " + text
	case IntentCommand:
		return "User made a request: " + text
	default:
		return text
	}
}
