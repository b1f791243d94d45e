// Package chat generates assistant replies for voice conversation turns.
//
// The package abstracts chat completions behind a single Provider
// interface with OpenAI and Google Gemini implementations, a Chain for
// falling back between providers, and a Mock for testing.
//
// Example usage:
//
//	provider, _ := chat.NewOpenAI(
//	    chat.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    chat.WithModel(chat.ModelGPT4oMini),
//	)
//	defer provider.Close()
//
//	reply, _ := provider.Complete(ctx, []chat.Message{
//	    chat.NewSystemMessage("You are a friendly companion."),
//	    chat.NewUserMessage("Hello!"),
//	})
package chat

import "context"

// Role identifies the sender of a conversation turn.
type Role string

const (
	// RoleSystem is for system instructions.
	RoleSystem Role = "system"

	// RoleUser is for user turns.
	RoleUser Role = "user"

	// RoleAssistant is for assistant turns.
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	// Role identifies the message sender.
	Role Role

	// Content is the text content of the turn.
	Content string
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Provider generates assistant replies from a sequence of turns.
// All implementations must satisfy this interface.
type Provider interface {
	// Complete generates the assistant reply for the given turns.
	// The reply is trimmed of surrounding whitespace and is never
	// empty when the error is nil.
	Complete(ctx context.Context, turns []Message) (string, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Name returns a short provider identifier for logging.
	Name() string

	// Close releases any resources held by the provider.
	Close() error
}

// withSystemPrompt prepends the configured system prompt when the turn
// list does not already start with a system turn.
func withSystemPrompt(turns []Message, prompt string) []Message {
	if prompt == "" || (len(turns) > 0 && turns[0].Role == RoleSystem) {
		return turns
	}
	out := make([]Message, 0, len(turns)+1)
	out = append(out, NewSystemMessage(prompt))
	return append(out, turns...)
}
