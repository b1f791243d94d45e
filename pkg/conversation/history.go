package conversation

import (
	"sync"

	"github.com/teslashibe/go-banter/pkg/chat"
)

// Turn is a single conversation history entry. It aliases chat.Message
// so a history can be handed to a completion provider without
// conversion.
type Turn = chat.Message

// History holds the bounded conversation transcript: an optional system
// turn plus the most recent user/assistant exchanges. It is safe for
// concurrent reads from the status endpoints while the loop appends.
type History struct {
	mu           sync.Mutex
	system       string
	turns        []Turn
	maxExchanges int
}

// NewHistory creates a history bounded to maxExchanges user/assistant
// pairs. An empty systemPrompt produces a history without a system
// turn.
func NewHistory(systemPrompt string, maxExchanges int) *History {
	return &History{
		system:       systemPrompt,
		maxExchanges: maxExchanges,
	}
}

// AddExchange appends a completed user/assistant pair and trims the
// oldest turns beyond the bound.
func (h *History) AddExchange(userInput, reply string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, chat.NewUserMessage(userInput), chat.NewAssistantMessage(reply))
	h.turns = trimTail(h.turns, 2*h.maxExchanges)
}

// AddUser appends a user turn without a reply. Used when the completion
// call fails after the user has already spoken.
func (h *History) AddUser(content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, chat.NewUserMessage(content))
	h.turns = trimTail(h.turns, 2*h.maxExchanges)
}

// Turns returns a copy of the transcript, system turn first.
func (h *History) Turns() []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked(h.turns)
}

// RequestTurns returns the turns for a completion request with pending
// user content appended, trimmed to the history bound. The history
// itself is not modified; commit the turn with AddExchange or AddUser
// once the request outcome is known.
func (h *History) RequestTurns(userContent string) []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	turns := make([]Turn, 0, len(h.turns)+1)
	turns = append(turns, h.turns...)
	turns = append(turns, chat.NewUserMessage(userContent))
	return h.snapshotLocked(trimTail(turns, 2*h.maxExchanges))
}

// Len returns the number of turns including the system turn.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.turns)
	if h.system != "" {
		n++
	}
	return n
}

// Exchanges returns the number of user turns currently retained.
func (h *History) Exchanges() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, t := range h.turns {
		if t.Role == chat.RoleUser {
			n++
		}
	}
	return n
}

// Reset clears all turns except the system turn.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
}

func (h *History) snapshotLocked(turns []Turn) []Turn {
	out := make([]Turn, 0, len(turns)+1)
	if h.system != "" {
		out = append(out, chat.NewSystemMessage(h.system))
	}
	return append(out, turns...)
}

// trimTail keeps the most recent limit turns. The window always starts
// on a user turn so role alternation survives the trim.
func trimTail(turns []Turn, limit int) []Turn {
	if limit <= 0 || len(turns) <= limit {
		return turns
	}
	turns = turns[len(turns)-limit:]
	if len(turns) > 0 && turns[0].Role == chat.RoleAssistant {
		turns = turns[1:]
	}
	return turns
}
