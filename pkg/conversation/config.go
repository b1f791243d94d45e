package conversation

import (
	"fmt"
	"log/slog"
	"time"
)

// Default spoken lines. These are voice-first strings played through
// the synthesizer; an empty string disables the corresponding line.
const (
	// DefaultWelcomeLine is spoken once when the session starts.
	DefaultWelcomeLine = "Hello! I'm ready to chat. What would you like to talk about?"

	// DefaultFarewellLine is spoken when an exit phrase ends the session.
	DefaultFarewellLine = "Goodbye! It was great talking with you!"

	// DefaultIdleLine is spoken after a long stretch without speech.
	DefaultIdleLine = "It seems quiet. I'll be here when you're ready to chat!"

	// DefaultApologyLine is spoken when the completion call fails.
	DefaultApologyLine = "I apologize, but I encountered an error processing your request."
)

// DefaultSystemPrompt is the stock persona: a playful, kid-friendly
// character tuned for short spoken replies.
const DefaultSystemPrompt = `You are Bluey, a 6-year-old blue heeler (Australian Cattle Dog) from the beloved children's show. You're having a real-time voice conversation with someone.

Your personality and characteristics:
- Age: 6 years old, full of childlike wonder and energy
- Breed: Blue heeler (Australian Cattle Dog) - you're a smart, energetic dog
- Naturally curious and always exploring the world around you
- Highly imaginative - you love pretend play, superheroes, animals, and creative characters
- Energetic and playful - you love to run around and have fun
- Kind and empathetic - you show kindness to others and care about feelings
- Creative problem-solver - you come up with imaginative solutions
- Family-oriented - you love your little sister Bingo and parents Bandit and Chilli
- Sociable - you enjoy talking to kids and adults
- Adventurous - you love exploring, whether in the backyard or at the park

How to respond as Bluey:
- Speak like a 6-year-old - use simple, enthusiastic language
- Be excited and curious about everything
- Use your imagination - suggest games, pretend scenarios, or creative ideas
- Show empathy and kindness
- Be playful and energetic in your responses
- Keep responses short (2-3 sentences) since this is voice conversation
- Use expressions like "Oh wow!", "That's so cool!", "Let's play!", "I love that!"
- Ask questions about their family, friends, or what they like to do
- Suggest fun activities or games you could play together

Remember: You're Bluey - be curious, imaginative, kind, and full of playful energy!`

// Config holds conversation loop settings.
type Config struct {
	// SystemPrompt is the persona prepended to every completion
	// request. Empty runs without a system turn.
	SystemPrompt string

	// WelcomeLine is spoken once at session start.
	WelcomeLine string

	// FarewellLine is spoken when an exit phrase is detected.
	FarewellLine string

	// ApologyLine is spoken when the completion call fails.
	ApologyLine string

	// IdleLine is spoken after IdleTimeout without speech.
	IdleLine string

	// ExitPhrases end the session when heard in a transcript.
	ExitPhrases []string

	// MaxExchanges bounds the history to this many user/assistant
	// pairs.
	MaxExchanges int

	// MaxRecordTime bounds a single utterance capture.
	MaxRecordTime time.Duration

	// MaxConsecutiveFailures terminates the session when one pipeline
	// stage fails this many turns in a row without an intervening
	// successful turn.
	MaxConsecutiveFailures int

	// IdleTimeout is how long the room stays quiet before the idle
	// line is spoken. Zero or negative disables the idle prompt.
	IdleTimeout time.Duration

	// FarewellTimeout bounds the farewell speech during shutdown.
	FarewellTimeout time.Duration

	// FailureBackoff is the pause after a failed turn before listening
	// again.
	FailureBackoff time.Duration

	// VoiceID annotates synthesis events. Playback uses whatever voice
	// the synthesizer was built with.
	VoiceID string

	// Intent enables keyword intent classification. The classified
	// intent prefixes the user content in the completion request and
	// is recorded on response events.
	Intent bool

	// Logger is the structured logger for loop operations.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SystemPrompt:           DefaultSystemPrompt,
		WelcomeLine:            DefaultWelcomeLine,
		FarewellLine:           DefaultFarewellLine,
		ApologyLine:            DefaultApologyLine,
		IdleLine:               DefaultIdleLine,
		ExitPhrases:            DefaultExitPhrases,
		MaxExchanges:           10,
		MaxRecordTime:          5 * time.Second,
		MaxConsecutiveFailures: 5,
		IdleTimeout:            30 * time.Second,
		FarewellTimeout:        5 * time.Second,
		FailureBackoff:         time.Second,
		Intent:                 true,
		Logger:                 slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.MaxExchanges <= 0 {
		return fmt.Errorf("%w: max exchanges must be positive", ErrInvalidConfig)
	}
	if c.MaxRecordTime <= 0 {
		return fmt.Errorf("%w: max record time must be positive", ErrInvalidConfig)
	}
	if c.MaxConsecutiveFailures <= 0 {
		return fmt.Errorf("%w: max consecutive failures must be positive", ErrInvalidConfig)
	}
	if c.FarewellTimeout <= 0 {
		return fmt.Errorf("%w: farewell timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Option is a functional option for configuring the loop.
type Option func(*Config)

// WithSystemPrompt sets the persona system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *Config) {
		c.SystemPrompt = prompt
	}
}

// WithWelcomeLine sets the line spoken at session start.
func WithWelcomeLine(line string) Option {
	return func(c *Config) {
		c.WelcomeLine = line
	}
}

// WithFarewellLine sets the line spoken when an exit phrase ends the
// session.
func WithFarewellLine(line string) Option {
	return func(c *Config) {
		c.FarewellLine = line
	}
}

// WithApologyLine sets the line spoken after a completion failure.
func WithApologyLine(line string) Option {
	return func(c *Config) {
		c.ApologyLine = line
	}
}

// WithIdleLine sets the line spoken after a quiet spell.
func WithIdleLine(line string) Option {
	return func(c *Config) {
		c.IdleLine = line
	}
}

// WithExitPhrases replaces the spoken exit commands.
func WithExitPhrases(phrases ...string) Option {
	return func(c *Config) {
		c.ExitPhrases = phrases
	}
}

// WithMaxExchanges bounds the history size in user/assistant pairs.
func WithMaxExchanges(n int) Option {
	return func(c *Config) {
		c.MaxExchanges = n
	}
}

// WithMaxRecordTime bounds a single utterance capture.
func WithMaxRecordTime(d time.Duration) Option {
	return func(c *Config) {
		c.MaxRecordTime = d
	}
}

// WithMaxConsecutiveFailures sets the failure cap that terminates the
// session.
func WithMaxConsecutiveFailures(n int) Option {
	return func(c *Config) {
		c.MaxConsecutiveFailures = n
	}
}

// WithIdleTimeout sets how long the room stays quiet before the idle
// line is spoken.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.IdleTimeout = d
	}
}

// WithFarewellTimeout bounds the farewell speech during shutdown.
func WithFarewellTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.FarewellTimeout = d
	}
}

// WithFailureBackoff sets the pause after a failed turn.
func WithFailureBackoff(d time.Duration) Option {
	return func(c *Config) {
		c.FailureBackoff = d
	}
}

// WithVoiceID sets the voice identifier recorded on synthesis events.
func WithVoiceID(id string) Option {
	return func(c *Config) {
		c.VoiceID = id
	}
}

// WithIntent enables or disables keyword intent classification.
func WithIntent(enabled bool) Option {
	return func(c *Config) {
		c.Intent = enabled
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
